package models

// Sort keys accepted by the search endpoint.
const (
	SortCompatibility = "compatibility"
	SortOverall       = "overall"
	SortAge           = "age"
	SortMarketValue   = "market_value"
)

// SearchFilters is the typed filter value object for player search. Every
// field is optional and every present field narrows the result set.
type SearchFilters struct {
	Name             string   `json:"name,omitempty"`
	Position         string   `json:"position,omitempty"`
	Team             string   `json:"team,omitempty"`
	Country          string   `json:"country,omitempty"`
	AgeMin           *int     `json:"ageMin,omitempty" validate:"omitempty,gte=0,lte=100"`
	AgeMax           *int     `json:"ageMax,omitempty" validate:"omitempty,gte=0,lte=100"`
	MinCompatibility *float64 `json:"minCompatibility,omitempty" validate:"omitempty,gte=0,lte=100"`
	SortBy           string   `json:"sortBy,omitempty" validate:"omitempty,oneof=compatibility overall age market_value"`
}

// TeamAnalytics aggregates compatibility scores over one club's squad.
type TeamAnalytics struct {
	PlayerCount       int            `json:"playerCount"`
	AvgCompatibility  float64        `json:"avgCompatibility"`
	BestPosition      string         `json:"bestPosition"`
	PositionBreakdown map[string]int `json:"positionBreakdown"`
}

// TeamAnalysisResponse is the team-analysis endpoint payload.
type TeamAnalysisResponse struct {
	ClubName  string                    `json:"clubName"`
	Analytics TeamAnalytics             `json:"analytics"`
	Players   []PlayerWithCompatibility `json:"players"`
}

// GlobalStats holds the catalog-wide counts.
type GlobalStats struct {
	TotalPlayers      int64 `json:"totalPlayers"`
	TotalTeams        int64 `json:"totalTeams"`
	TotalCompetitions int64 `json:"totalCompetitions"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
