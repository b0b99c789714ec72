package repository

import (
	"context"
	"fmt"

	"reposition/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository stores the user→player favorite relation. playerID here
// is always the internal players.id; resolution from the external player_id
// happens in the service.
type FavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a favorite repository over the shared handle.
func NewFavoriteRepository(d *DB) *FavoriteRepository {
	return &FavoriteRepository{db: d.Gorm()}
}

// Add records a favorite. The conflict clause keeps the (user, player) pair
// unique: favoriting twice is a no-op, not an error.
func (r *FavoriteRepository) Add(ctx context.Context, userID, playerID int) error {
	fav := models.PlayerFavorite{UserID: userID, PlayerID: playerID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "player_id"}},
		DoNothing: true,
	}).Create(&fav).Error
}

// Remove deletes a favorite if present.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, playerID int) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND player_id = ?", userID, playerID).
		Delete(&models.PlayerFavorite{}).Error
}

// ListPlayers returns a user's favorite players, most recently favorited first.
func (r *FavoriteRepository) ListPlayers(ctx context.Context, userID int) ([]models.Player, error) {
	var players []models.Player
	err := r.db.WithContext(ctx).Model(&models.Player{}).
		Select("players.*").
		Joins("INNER JOIN player_favorites ON players.id = player_favorites.player_id").
		Where("player_favorites.user_id = ?", userID).
		Order("player_favorites.created_at DESC").
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("list favorites for user %d: %w", userID, err)
	}
	return players, nil
}

// IsFavorited reports whether the pair exists.
func (r *FavoriteRepository) IsFavorited(ctx context.Context, userID, playerID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PlayerFavorite{}).
		Where("user_id = ? AND player_id = ?", userID, playerID).
		Count(&count).Error
	return count > 0, err
}
