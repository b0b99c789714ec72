package repository

import (
	"context"

	"reposition/internal/models"

	"gorm.io/gorm"
)

// DB wraps the shared GORM handle with lifecycle helpers. The connection pool
// is sized once at startup and every store shares it; nothing here is held in
// package-level state.
type DB struct {
	db *gorm.DB
}

// NewDB wraps an opened GORM connection.
func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Gorm exposes the underlying handle to the stores.
func (d *DB) Gorm() *gorm.DB {
	return d.db
}

// AutoMigrate runs database migrations
func (d *DB) AutoMigrate() error {
	return d.db.AutoMigrate(
		&models.Player{},
		&models.Club{},
		&models.Competition{},
		&models.PositionCompatibility{},
		&models.PlayerFavorite{},
	)
}

// Ping checks if database is reachable
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
