package models

import (
	"strings"
	"time"
)

// Positions is the canonical order of the nine outfield positions the scoring
// model rates. Ties on equal fit scores resolve to the earlier entry.
var Positions = []string{"ST", "LW", "RW", "CM", "CDM", "CAM", "LB", "RB", "CB"}

// PositionCompatibility is the scoring model's output for one player.
// Invariant: at most one record per player_id, and writes always replace the
// full record - partial patches do not exist.
type PositionCompatibility struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	PlayerID     int       `gorm:"column:player_id;uniqueIndex;not null" json:"player_id"`
	NaturalPos   *string   `gorm:"column:natural_pos" json:"natural_pos"`
	StFit        *float64  `gorm:"column:st_fit" json:"st_fit"`
	LwFit        *float64  `gorm:"column:lw_fit" json:"lw_fit"`
	RwFit        *float64  `gorm:"column:rw_fit" json:"rw_fit"`
	CmFit        *float64  `gorm:"column:cm_fit" json:"cm_fit"`
	CdmFit       *float64  `gorm:"column:cdm_fit" json:"cdm_fit"`
	CamFit       *float64  `gorm:"column:cam_fit" json:"cam_fit"`
	LbFit        *float64  `gorm:"column:lb_fit" json:"lb_fit"`
	RbFit        *float64  `gorm:"column:rb_fit" json:"rb_fit"`
	CbFit        *float64  `gorm:"column:cb_fit" json:"cb_fit"`
	BestPos      *string   `gorm:"column:best_pos" json:"best_pos"`
	BestFitScore *float64  `gorm:"column:best_fit_score" json:"best_fit_score"`
	BestFitPct   *float64  `gorm:"column:best_fit_pct" json:"best_fit_pct"`
	Ovr          *int      `gorm:"column:ovr" json:"ovr"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for GORM
func (PositionCompatibility) TableName() string {
	return "position_compatibility"
}

// Fit returns the fit score for one specific position, nil when absent.
// Unknown labels fall through to CB, matching the search column mapping.
func (c *PositionCompatibility) Fit(position string) *float64 {
	switch strings.ToUpper(position) {
	case "ST":
		return c.StFit
	case "LW":
		return c.LwFit
	case "RW":
		return c.RwFit
	case "CM":
		return c.CmFit
	case "CDM":
		return c.CdmFit
	case "CAM":
		return c.CamFit
	case "LB":
		return c.LbFit
	case "RB":
		return c.RbFit
	default:
		return c.CbFit
	}
}

// BestFit derives the position and value of the maximum present fit score.
// Both returns are nil iff all nine fits are absent. The first position in
// canonical order wins a tie.
func (c *PositionCompatibility) BestFit() (*string, *float64) {
	var bestPos *string
	var bestScore *float64
	for _, pos := range Positions {
		fit := c.Fit(pos)
		if fit == nil {
			continue
		}
		if bestScore == nil || *fit > *bestScore {
			p, v := pos, *fit
			bestPos, bestScore = &p, &v
		}
	}
	return bestPos, bestScore
}

// CompatibilitySummary is the compatibility block of one upload result row,
// mirroring the scoring oracle's output columns.
type CompatibilitySummary struct {
	BestPos      *string  `json:"best_pos"`
	BestFitScore *float64 `json:"best_fit_score"`
	StFit        *float64 `json:"st_fit"`
	LwFit        *float64 `json:"lw_fit"`
	RwFit        *float64 `json:"rw_fit"`
	CmFit        *float64 `json:"cm_fit"`
	CdmFit       *float64 `json:"cdm_fit"`
	CamFit       *float64 `json:"cam_fit"`
	LbFit        *float64 `json:"lb_fit"`
	RbFit        *float64 `json:"rb_fit"`
	CbFit        *float64 `json:"cb_fit"`
}

// Row result statuses for the upload response.
const (
	RowStatusOK      = "ok"
	RowStatusMissing = "missing"
)

// RowResult is one reconciled row of an upload response.
type RowResult struct {
	PlayerID      int                   `json:"player_id"`
	Name          *string               `json:"name"`
	NaturalPos    *string               `json:"natural_pos"`
	Status        string                `json:"status"`
	Compatibility *CompatibilitySummary `json:"compatibility"`
}

// UploadResponse is the full result of one CSV scoring upload.
type UploadResponse struct {
	Count   int         `json:"count"`
	Results []RowResult `json:"results"`
}
