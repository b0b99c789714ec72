// Package jobs holds the background bulk-analysis job that walks the catalog
// and scores every player still missing a compatibility record.
package jobs

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"reposition/internal/models"

	"github.com/sirupsen/logrus"
)

// UnscoredLister returns players without a compatibility record, oldest id
// first. Satisfied by repository.PlayerRepository.
type UnscoredLister interface {
	ListWithoutCompatibility(ctx context.Context, limit int) ([]models.Player, error)
}

// ScoringPipeline runs one CSV through the scoring oracle and persists the
// results. Satisfied by pipeline.Pipeline.
type ScoringPipeline interface {
	Score(ctx context.Context, csvData []byte) (*models.UploadResponse, error)
}

// Analyzer scores the backlog of unscored players in chunks. Only one run may
// be in flight at a time; a second trigger while one is running is rejected.
type Analyzer struct {
	players   UnscoredLister
	pipeline  ScoringPipeline
	chunkSize int
	logger    *logrus.Logger
	running   atomic.Bool
}

// NewAnalyzer creates a bulk analyzer.
func NewAnalyzer(players UnscoredLister, pipeline ScoringPipeline, chunkSize int, logger *logrus.Logger) *Analyzer {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	return &Analyzer{
		players:   players,
		pipeline:  pipeline,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// Running reports whether a bulk run is in flight.
func (a *Analyzer) Running() bool {
	return a.running.Load()
}

// Run scores unscored players chunk by chunk until the backlog is empty or a
// chunk makes no progress. A zero-progress chunk means the oracle cannot score
// the remaining players; looping on them forever would be a livelock.
func (a *Analyzer) Run(ctx context.Context) (int, error) {
	if !a.running.CompareAndSwap(false, true) {
		return 0, fmt.Errorf("bulk analysis already running")
	}
	defer a.running.Store(false)

	start := time.Now()
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		players, err := a.players.ListWithoutCompatibility(ctx, a.chunkSize)
		if err != nil {
			return total, err
		}
		if len(players) == 0 {
			break
		}

		doc, err := marshalChunk(players)
		if err != nil {
			return total, err
		}
		resp, err := a.pipeline.Score(ctx, doc)
		if err != nil {
			return total, err
		}

		scored := 0
		for _, res := range resp.Results {
			if res.Status == models.RowStatusOK {
				scored++
			}
		}
		total += scored
		if a.logger != nil {
			a.logger.WithFields(logrus.Fields{
				"chunk":  len(players),
				"scored": scored,
			}).Info("bulk analysis chunk completed")
		}
		if scored == 0 {
			break
		}
	}

	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{
			"scored":   total,
			"duration": time.Since(start).String(),
		}).Info("bulk analysis finished")
	}
	return total, nil
}

// chunkHeader is the column set the scoring model's batch mode expects.
var chunkHeader = []string{
	"player_id", "name", "country_of_citizenship", "date_of_birth",
	"sub_position", "position", "foot", "height_in_cm", "current_club_name",
	"market_value_in_eur", "highest_market_value_in_eur", "club_id",
	"OVR", "PAC", "SHO", "PAS", "DRI", "DEF", "PHY", "age", "Weight",
}

// marshalChunk renders one chunk of players as the scoring model's input CSV.
// Absent values render as empty cells, which the model reads as nulls.
func marshalChunk(players []models.Player) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(chunkHeader); err != nil {
		return nil, fmt.Errorf("write chunk header: %w", err)
	}
	for _, p := range players {
		row := []string{
			strconv.Itoa(p.PlayerID),
			p.Name,
			strOrEmpty(p.CountryOfCitizenship),
			strOrEmpty(p.DateOfBirth),
			strOrEmpty(p.SubPosition),
			strOrEmpty(p.Position),
			strOrEmpty(p.Foot),
			intOrEmpty(p.HeightInCm),
			strOrEmpty(p.CurrentClubName),
			intOrEmpty(p.MarketValueInEur),
			intOrEmpty(p.HighestMarketValueInEur),
			intOrEmpty(p.ClubID),
			intOrEmpty(p.Ovr),
			intOrEmpty(p.Pac),
			intOrEmpty(p.Sho),
			intOrEmpty(p.Pas),
			intOrEmpty(p.Dri),
			intOrEmpty(p.Def),
			intOrEmpty(p.Phy),
			intOrEmpty(p.Age),
			floatOrEmpty(p.WeightInKg),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write chunk row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush chunk: %w", err)
	}
	return buf.Bytes(), nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
