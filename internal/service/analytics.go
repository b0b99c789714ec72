package service

import (
	"context"
	"time"

	"reposition/internal/models"
	"reposition/internal/repository"

	"github.com/sirupsen/logrus"
)

// CatalogCounter exposes the catalog counts global stats aggregates over.
type CatalogCounter interface {
	CountClubs(ctx context.Context) (int64, error)
	CountCompetitions(ctx context.Context) (int64, error)
}

// AnalyticsCache is the read-through cache for team-analysis payloads.
// Satisfied by repository.Cache; a nil cache disables caching.
type AnalyticsCache interface {
	GetTeamAnalytics(ctx context.Context, foldedClub string) (*models.TeamAnalysisResponse, bool)
	SetTeamAnalytics(ctx context.Context, foldedClub string, resp *models.TeamAnalysisResponse, ttl time.Duration) error
}

// AnalyticsService aggregates compatibility scores per club and catalog-wide.
type AnalyticsService struct {
	players PlayerStore
	compat  CompatibilityStore
	catalog CatalogCounter
	cache   AnalyticsCache
	ttl     time.Duration
	logger  *logrus.Logger
}

// NewAnalyticsService creates the analytics service. cache may be nil.
func NewAnalyticsService(players PlayerStore, compat CompatibilityStore, catalog CatalogCounter, cache AnalyticsCache, ttl time.Duration, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{
		players: players,
		compat:  compat,
		catalog: catalog,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// TeamAnalysis aggregates one club's squad: average best-fit score, most
// common best position, and the per-position breakdown. An unknown club is
// not an error, it is an empty squad with zeroed analytics.
func (s *AnalyticsService) TeamAnalysis(ctx context.Context, clubName string) (*models.TeamAnalysisResponse, error) {
	folded := repository.FoldName(clubName)
	if s.cache != nil {
		if cached, ok := s.cache.GetTeamAnalytics(ctx, folded); ok {
			return cached, nil
		}
	}

	players, err := s.players.GetByClub(ctx, clubName)
	if err != nil {
		return nil, err
	}
	enriched, err := attachCompatibility(ctx, s.compat, players)
	if err != nil {
		return nil, err
	}

	resp := &models.TeamAnalysisResponse{
		ClubName:  clubName,
		Analytics: aggregate(enriched),
		Players:   enriched,
	}

	if s.cache != nil {
		if err := s.cache.SetTeamAnalytics(ctx, folded, resp, s.ttl); err != nil && s.logger != nil {
			s.logger.WithError(err).WithField("club", clubName).Warn("failed to cache team analytics")
		}
	}
	return resp, nil
}

// aggregate folds a squad's compatibility records into team analytics. The
// average runs over scored players only; an all-unscored or empty squad
// reports zero with best position "N/A". The breakdown counts best positions,
// and the team's best position is the most frequent one, ties going to the
// lexicographically smaller label.
func aggregate(players []models.PlayerWithCompatibility) models.TeamAnalytics {
	analytics := models.TeamAnalytics{
		PlayerCount:       len(players),
		BestPosition:      "N/A",
		PositionBreakdown: map[string]int{},
	}

	var sum float64
	var scored int
	for _, p := range players {
		if p.Compatibility == nil {
			continue
		}
		if p.Compatibility.BestFitScore != nil {
			sum += *p.Compatibility.BestFitScore
			scored++
		}
		if p.Compatibility.BestPos != nil {
			analytics.PositionBreakdown[*p.Compatibility.BestPos]++
		}
	}
	if scored > 0 {
		analytics.AvgCompatibility = sum / float64(scored)
	}

	best, bestCount := "N/A", 0
	for pos, count := range analytics.PositionBreakdown {
		if count > bestCount || (count == bestCount && pos < best) {
			best, bestCount = pos, count
		}
	}
	if bestCount > 0 {
		analytics.BestPosition = best
	}
	return analytics
}

// GlobalStats returns the catalog-wide counts.
func (s *AnalyticsService) GlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	players, err := s.players.Count(ctx)
	if err != nil {
		return nil, err
	}
	clubs, err := s.catalog.CountClubs(ctx)
	if err != nil {
		return nil, err
	}
	competitions, err := s.catalog.CountCompetitions(ctx)
	if err != nil {
		return nil, err
	}
	return &models.GlobalStats{
		TotalPlayers:      players,
		TotalTeams:        clubs,
		TotalCompetitions: competitions,
	}, nil
}
