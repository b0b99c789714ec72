// Package service holds the business logic between the HTTP handlers and the
// stores: filter validation, compatibility attachment, squad aggregation and
// favorite resolution.
package service

import (
	"context"

	"reposition/internal/apperrors"
	"reposition/internal/models"

	"github.com/go-playground/validator/v10"
)

// PlayerStore is the slice of the player repository the services consume.
type PlayerStore interface {
	Search(ctx context.Context, filters models.SearchFilters, page, pageSize int) ([]models.Player, error)
	GetByPlayerID(ctx context.Context, playerID int) (*models.Player, error)
	GetByClub(ctx context.Context, clubName string) ([]models.Player, error)
	Count(ctx context.Context) (int64, error)
}

// CompatibilityStore reads scoring-model output records.
type CompatibilityStore interface {
	Get(ctx context.Context, playerID int) (*models.PositionCompatibility, error)
	GetBatch(ctx context.Context, playerIDs []int) (map[int]models.PositionCompatibility, error)
}

// PlayerService serves search and player detail reads.
type PlayerService struct {
	players  PlayerStore
	compat   CompatibilityStore
	validate *validator.Validate
}

// NewPlayerService creates the player service.
func NewPlayerService(players PlayerStore, compat CompatibilityStore) *PlayerService {
	return &PlayerService{
		players:  players,
		compat:   compat,
		validate: validator.New(),
	}
}

// Search validates the filters, runs the composed query and attaches each
// player's compatibility record. Compatibility-dependent filters need a
// position to know which fit column to read, so they are rejected without one.
func (s *PlayerService) Search(ctx context.Context, filters models.SearchFilters, page, pageSize int) ([]models.PlayerWithCompatibility, error) {
	if err := s.validate.Struct(filters); err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidArgument, "invalid search filters", err)
	}
	if filters.Position == "" {
		if filters.SortBy == models.SortCompatibility {
			return nil, apperrors.New(apperrors.InvalidArgument,
				"sorting by compatibility requires a position filter")
		}
		if filters.MinCompatibility != nil {
			return nil, apperrors.New(apperrors.InvalidArgument,
				"minCompatibility requires a position filter")
		}
	}
	if filters.AgeMin != nil && filters.AgeMax != nil && *filters.AgeMin > *filters.AgeMax {
		return nil, apperrors.New(apperrors.InvalidArgument, "ageMin exceeds ageMax")
	}
	if page < 1 {
		page = 1
	}

	players, err := s.players.Search(ctx, filters, page, pageSize)
	if err != nil {
		return nil, err
	}
	return attachCompatibility(ctx, s.compat, players)
}

// Get returns one player with their compatibility record attached.
func (s *PlayerService) Get(ctx context.Context, playerID int) (*models.PlayerWithCompatibility, error) {
	player, err := s.players.GetByPlayerID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	enriched, err := attachCompatibility(ctx, s.compat, []models.Player{*player})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// Compatibility returns the raw compatibility record for one player.
func (s *PlayerService) Compatibility(ctx context.Context, playerID int) (*models.PositionCompatibility, error) {
	if _, err := s.players.GetByPlayerID(ctx, playerID); err != nil {
		return nil, err
	}
	return s.compat.Get(ctx, playerID)
}

// attachCompatibility pairs each player with their compatibility record using
// one batched fetch for the whole slice. Unscored players get a nil record.
func attachCompatibility(ctx context.Context, compat CompatibilityStore, players []models.Player) ([]models.PlayerWithCompatibility, error) {
	ids := make([]int, len(players))
	for i, p := range players {
		ids[i] = p.PlayerID
	}
	records, err := compat.GetBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]models.PlayerWithCompatibility, len(players))
	for i, p := range players {
		result[i] = models.PlayerWithCompatibility{Player: p}
		if rec, ok := records[p.PlayerID]; ok {
			r := rec
			result[i].Compatibility = &r
		}
	}
	return result, nil
}
