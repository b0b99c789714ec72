package repository

import (
	"context"
	"fmt"

	"reposition/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository serves the club/competition reference data the ranking
// and aggregation logic joins through.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a catalog repository over the shared handle.
func NewCatalogRepository(d *DB) *CatalogRepository {
	return &CatalogRepository{db: d.Gorm()}
}

// AllClubs returns every club.
func (r *CatalogRepository) AllClubs(ctx context.Context) ([]models.Club, error) {
	var clubs []models.Club
	err := r.db.WithContext(ctx).Order("name ASC").Find(&clubs).Error
	return clubs, err
}

// ClubsByCountry returns clubs under competitions held in the given country.
func (r *CatalogRepository) ClubsByCountry(ctx context.Context, country string) ([]models.Club, error) {
	var clubs []models.Club
	err := r.db.WithContext(ctx).
		Joins("INNER JOIN competitions ON clubs.domestic_competition_id = competitions.competition_id").
		Where("competitions.country_name = ?", country).
		Order("clubs.name ASC").
		Find(&clubs).Error
	if err != nil {
		return nil, fmt.Errorf("clubs by country %q: %w", country, err)
	}
	return clubs, nil
}

// AllCompetitions returns every competition.
func (r *CatalogRepository) AllCompetitions(ctx context.Context) ([]models.Competition, error) {
	var competitions []models.Competition
	err := r.db.WithContext(ctx).Find(&competitions).Error
	return competitions, err
}

// Countries returns the distinct competition country names, sorted.
func (r *CatalogRepository) Countries(ctx context.Context) ([]string, error) {
	var countries []string
	err := r.db.WithContext(ctx).Model(&models.Competition{}).
		Distinct("country_name").
		Where("country_name IS NOT NULL AND country_name != ''").
		Order("country_name ASC").
		Pluck("country_name", &countries).Error
	return countries, err
}

// Leagues returns the distinct league names present on players.
func (r *CatalogRepository) Leagues(ctx context.Context) ([]string, error) {
	var leagues []string
	err := r.db.WithContext(ctx).Model(&models.Player{}).
		Distinct("league").
		Where("league IS NOT NULL AND league != ''").
		Order("league ASC").
		Pluck("league", &leagues).Error
	return leagues, err
}

// LeaguesByCountry returns the competition names held in the given country.
func (r *CatalogRepository) LeaguesByCountry(ctx context.Context, country string) ([]string, error) {
	var leagues []string
	err := r.db.WithContext(ctx).Model(&models.Competition{}).
		Where("country_name = ? AND name != ''", country).
		Order("name ASC").
		Pluck("name", &leagues).Error
	return leagues, err
}

// BulkCreateClubs inserts clubs in batches.
func (r *CatalogRepository) BulkCreateClubs(ctx context.Context, clubs []models.Club, batchSize int) error {
	if len(clubs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(clubs, batchSize).Error
}

// BulkCreateCompetitions inserts competitions in batches.
func (r *CatalogRepository) BulkCreateCompetitions(ctx context.Context, competitions []models.Competition, batchSize int) error {
	if len(competitions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(competitions, batchSize).Error
}

// CountClubs returns the total number of clubs.
func (r *CatalogRepository) CountClubs(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Club{}).Count(&count).Error
	return count, err
}

// CountCompetitions returns the total number of competitions.
func (r *CatalogRepository) CountCompetitions(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Competition{}).Count(&count).Error
	return count, err
}
