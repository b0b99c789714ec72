package service

import (
	"context"

	"reposition/internal/models"
)

// FavoriteStore persists the user→player favorite relation keyed by the
// internal player row id.
type FavoriteStore interface {
	Add(ctx context.Context, userID, playerID int) error
	Remove(ctx context.Context, userID, playerID int) error
	ListPlayers(ctx context.Context, userID int) ([]models.Player, error)
	IsFavorited(ctx context.Context, userID, playerID int) (bool, error)
}

// FavoriteService resolves external player ids and manages favorites.
type FavoriteService struct {
	players   PlayerStore
	compat    CompatibilityStore
	favorites FavoriteStore
}

// NewFavoriteService creates the favorite service.
func NewFavoriteService(players PlayerStore, compat CompatibilityStore, favorites FavoriteStore) *FavoriteService {
	return &FavoriteService{players: players, compat: compat, favorites: favorites}
}

// Add favorites a player for a user. playerID is the external player id; a
// player nobody imported is a not-found error, and re-favoriting is a no-op.
func (s *FavoriteService) Add(ctx context.Context, userID, playerID int) error {
	player, err := s.players.GetByPlayerID(ctx, playerID)
	if err != nil {
		return err
	}
	return s.favorites.Add(ctx, userID, int(player.ID))
}

// Remove unfavorites a player for a user.
func (s *FavoriteService) Remove(ctx context.Context, userID, playerID int) error {
	player, err := s.players.GetByPlayerID(ctx, playerID)
	if err != nil {
		return err
	}
	return s.favorites.Remove(ctx, userID, int(player.ID))
}

// List returns a user's favorite players with compatibility attached, most
// recently favorited first.
func (s *FavoriteService) List(ctx context.Context, userID int) ([]models.PlayerWithCompatibility, error) {
	players, err := s.favorites.ListPlayers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return attachCompatibility(ctx, s.compat, players)
}

// IsFavorited reports whether the user has favorited the player.
func (s *FavoriteService) IsFavorited(ctx context.Context, userID, playerID int) (bool, error) {
	player, err := s.players.GetByPlayerID(ctx, playerID)
	if err != nil {
		return false, err
	}
	return s.favorites.IsFavorited(ctx, userID, int(player.ID))
}
