package repository

import (
	"context"
	"errors"
	"fmt"

	"reposition/internal/apperrors"
	"reposition/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompatibilityRepository is the store for scoring-model output. Records are
// 1:1 with players and every write replaces the full record.
type CompatibilityRepository struct {
	db *gorm.DB
}

// NewCompatibilityRepository creates a compatibility repository over the shared handle.
func NewCompatibilityRepository(d *DB) *CompatibilityRepository {
	return &CompatibilityRepository{db: d.Gorm()}
}

// Get retrieves the compatibility record for one player.
func (r *CompatibilityRepository) Get(ctx context.Context, playerID int) (*models.PositionCompatibility, error) {
	var rec models.PositionCompatibility
	err := r.db.WithContext(ctx).Where("player_id = ?", playerID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.NotFound, "no compatibility record for player %d", playerID)
		}
		return nil, fmt.Errorf("get compatibility for player %d: %w", playerID, err)
	}
	return &rec, nil
}

// GetBatch fetches compatibility records for a whole set of player ids in one
// query and returns them keyed by player_id. One query for N ids, never N
// queries - per-player fetches exhaust the pool under concurrent team calls.
func (r *CompatibilityRepository) GetBatch(ctx context.Context, playerIDs []int) (map[int]models.PositionCompatibility, error) {
	result := make(map[int]models.PositionCompatibility, len(playerIDs))
	if len(playerIDs) == 0 {
		return result, nil
	}

	var records []models.PositionCompatibility
	err := r.db.WithContext(ctx).Where("player_id IN ?", playerIDs).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("batch get compatibility: %w", err)
	}
	for _, rec := range records {
		result[rec.PlayerID] = rec
	}
	return result, nil
}

// Upsert writes one record, replacing every column of any existing record for
// the same player. Partial patches are deliberately not offered.
func (r *CompatibilityRepository) Upsert(ctx context.Context, rec models.PositionCompatibility) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"natural_pos", "st_fit", "lw_fit", "rw_fit", "cm_fit", "cdm_fit",
			"cam_fit", "lb_fit", "rb_fit", "cb_fit", "best_pos",
			"best_fit_score", "best_fit_pct", "ovr", "created_at",
		}),
	}).Create(&rec).Error
}

// BulkUpsert writes a batch of full-record replacements in one statement.
func (r *CompatibilityRepository) BulkUpsert(ctx context.Context, records []models.PositionCompatibility) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"natural_pos", "st_fit", "lw_fit", "rw_fit", "cm_fit", "cdm_fit",
			"cam_fit", "lb_fit", "rb_fit", "cb_fit", "best_pos",
			"best_fit_score", "best_fit_pct", "ovr", "created_at",
		}),
	}).CreateInBatches(records, 100).Error
}

// Count returns the number of players holding a compatibility record.
func (r *CompatibilityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PositionCompatibility{}).Count(&count).Error
	return count, err
}
