package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reposition/internal/apperrors"
	"reposition/internal/models"

	"gorm.io/gorm"
)

// PlayerRepository is the player store plus the search query composer.
type PlayerRepository struct {
	db *gorm.DB
}

// NewPlayerRepository creates a player repository over the shared handle.
func NewPlayerRepository(d *DB) *PlayerRepository {
	return &PlayerRepository{db: d.Gorm()}
}

// fitColumn maps a position label to its fit column. Unknown labels fall
// through to cb_fit.
func fitColumn(position string) string {
	switch strings.ToUpper(position) {
	case "ST":
		return "st_fit"
	case "LW":
		return "lw_fit"
	case "RW":
		return "rw_fit"
	case "CM":
		return "cm_fit"
	case "CDM":
		return "cdm_fit"
	case "CAM":
		return "cam_fit"
	case "LB":
		return "lb_fit"
	case "RB":
		return "rb_fit"
	default:
		return "cb_fit"
	}
}

// Search runs the composed query: one typed clause per present filter field,
// all ANDed. Ordering always ends on player_id so that repeated calls and
// page walks see one stable sequence even across equal sort keys.
//
// pageSize > 0 returns the slice [(page-1)*pageSize, page*pageSize) of the
// ordered result; pageSize == 0 returns the entire ordered result.
func (r *PlayerRepository) Search(ctx context.Context, filters models.SearchFilters, page, pageSize int) ([]models.Player, error) {
	q := r.db.WithContext(ctx).Model(&models.Player{})

	// minCompatibility and the compatibility sort read position_compatibility
	// columns, so both force the join.
	needCompat := filters.MinCompatibility != nil || filters.SortBy == models.SortCompatibility
	if needCompat {
		q = q.Select("players.*").
			Joins("LEFT JOIN position_compatibility ON position_compatibility.player_id = players.player_id")
	}

	if filters.Name != "" {
		q = q.Where("LOWER(players.name) LIKE LOWER(?)", "%"+filters.Name+"%")
	}
	if filters.Position != "" {
		q = q.Where("(players.sub_position = ? OR players.position = ?)", filters.Position, filters.Position)
	}
	if filters.Team != "" {
		q = q.Where("LOWER(players.current_club_name) LIKE LOWER(?)", "%"+filters.Team+"%")
	}
	if filters.Country != "" {
		// Country spans three entities: competitions in the country, clubs
		// under those competitions, players at those clubs.
		clubsInCountry := r.db.Model(&models.Club{}).
			Select("clubs.name").
			Joins("INNER JOIN competitions ON clubs.domestic_competition_id = competitions.competition_id").
			Where("competitions.country_name = ?", filters.Country)
		q = q.Where("players.current_club_name IN (?)", clubsInCountry)
	}
	if filters.AgeMin != nil {
		q = q.Where("players.age >= ?", *filters.AgeMin)
	}
	if filters.AgeMax != nil {
		q = q.Where("players.age <= ?", *filters.AgeMax)
	}
	if filters.MinCompatibility != nil {
		col := fitColumn(filters.Position)
		q = q.Where(fmt.Sprintf("position_compatibility.%s >= ?", col), *filters.MinCompatibility)
	}

	switch filters.SortBy {
	case models.SortOverall:
		q = q.Order("players.ovr DESC")
	case models.SortAge:
		q = q.Order("players.age ASC")
	case models.SortMarketValue:
		q = q.Order("players.market_value_in_eur DESC")
	case models.SortCompatibility:
		q = q.Order(fmt.Sprintf("position_compatibility.%s DESC", fitColumn(filters.Position)))
	}
	q = q.Order("players.player_id ASC")

	if pageSize > 0 {
		q = q.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	var players []models.Player
	if err := q.Find(&players).Error; err != nil {
		return nil, fmt.Errorf("search players: %w", err)
	}
	return players, nil
}

// GetByPlayerID retrieves a player by external player id.
func (r *PlayerRepository) GetByPlayerID(ctx context.Context, playerID int) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).Where("player_id = ?", playerID).First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.NotFound, "player %d not found", playerID)
		}
		return nil, fmt.Errorf("get player %d: %w", playerID, err)
	}
	return &player, nil
}

// GetByClub returns the squad for a club name using a two-pass match: exact
// case-insensitive first, then a substring match over the diacritic-folded
// name when the exact pass finds nothing.
func (r *PlayerRepository) GetByClub(ctx context.Context, clubName string) ([]models.Player, error) {
	if clubName == "" {
		return nil, nil
	}
	folded := FoldName(clubName)

	var players []models.Player
	err := r.db.WithContext(ctx).
		Where("LOWER(current_club_name) = ?", folded).
		Order("player_id ASC").
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("get players for club %q: %w", clubName, err)
	}
	if len(players) > 0 {
		return players, nil
	}

	err = r.db.WithContext(ctx).
		Where("LOWER(current_club_name) LIKE ?", "%"+folded+"%").
		Order("player_id ASC").
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("get players for club %q: %w", clubName, err)
	}
	return players, nil
}

// ListWithoutCompatibility returns up to limit players that have no
// compatibility record yet, for the bulk analysis job.
func (r *PlayerRepository) ListWithoutCompatibility(ctx context.Context, limit int) ([]models.Player, error) {
	var players []models.Player
	err := r.db.WithContext(ctx).
		Select("players.*").
		Joins("LEFT JOIN position_compatibility ON position_compatibility.player_id = players.player_id").
		Where("position_compatibility.player_id IS NULL").
		Order("players.player_id ASC").
		Limit(limit).
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("list unscored players: %w", err)
	}
	return players, nil
}

// BulkCreate efficiently inserts players in batches.
func (r *PlayerRepository) BulkCreate(ctx context.Context, players []models.Player, batchSize int) error {
	if len(players) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(players, batchSize).Error
}

// Count returns the total number of players.
func (r *PlayerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Player{}).Count(&count).Error
	return count, err
}
