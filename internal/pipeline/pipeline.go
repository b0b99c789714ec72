// Package pipeline runs one CSV upload end to end: stage the bytes in a
// private temp directory, invoke the scoring oracle over them, reconcile the
// oracle's output against the uploaded rows, and persist the scored records.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"reposition/internal/apperrors"
	"reposition/internal/csvtable"
	"reposition/internal/models"
	"reposition/internal/oracle"

	"github.com/sirupsen/logrus"
)

// CompatibilityWriter persists scored records. Satisfied by
// repository.CompatibilityRepository.
type CompatibilityWriter interface {
	BulkUpsert(ctx context.Context, records []models.PositionCompatibility) error
}

// VersionBumper advances the catalog version after a successful persist.
// Satisfied by repository.Cache.
type VersionBumper interface {
	BumpCatalogVersion(ctx context.Context) error
}

// Pipeline orchestrates scoring runs. Concurrent runs are safe: each gets its
// own temp directory and the scorer serializes capacity internally.
type Pipeline struct {
	scorer  oracle.Scorer
	writer  CompatibilityWriter
	version VersionBumper
	logger  *logrus.Logger
}

// New builds a pipeline. writer and version may be nil for score-only runs
// that must not touch the database.
func New(scorer oracle.Scorer, writer CompatibilityWriter, version VersionBumper, logger *logrus.Logger) *Pipeline {
	return &Pipeline{scorer: scorer, writer: writer, version: version, logger: logger}
}

// fallbackRow carries the identity columns lifted from the uploaded CSV before
// the oracle runs. When the oracle's output omits a field, or a whole player,
// the response row is built from this instead.
type fallbackRow struct {
	name   *string
	subPos *string
}

// Score runs the full ingestion: stage csvData, invoke the oracle, reconcile
// its output against the upload by player id, persist every scored record, and
// return the per-row results. Nothing is persisted when any stage fails.
func (p *Pipeline) Score(ctx context.Context, csvData []byte) (*models.UploadResponse, error) {
	input, err := csvtable.Parse(bytes.NewReader(csvData))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidArgument, "invalid csv upload", err)
	}
	if input.Len() == 0 {
		return nil, apperrors.New(apperrors.InvalidArgument, "csv upload has no data rows")
	}

	// Index the upload by player id. The oracle is free to reorder or drop
	// rows, so identity must come from each output row's own player_id, never
	// from row position.
	fallback := make(map[int]fallbackRow, input.Len())
	var order []int
	var unidentified []models.RowResult
	for i := 0; i < input.Len(); i++ {
		row := input.Row(i)
		fb := fallbackRow{
			name:   row.StringPtr("name"),
			subPos: row.StringPtr("sub_position"),
		}
		playerID := row.Int("player_id")
		if playerID == nil {
			unidentified = append(unidentified, models.RowResult{
				Name:       fb.name,
				NaturalPos: fb.subPos,
				Status:     models.RowStatusMissing,
			})
			continue
		}
		if _, ok := fallback[*playerID]; !ok {
			fallback[*playerID] = fb
			order = append(order, *playerID)
		}
	}

	dir, err := os.MkdirTemp("", "upload-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, "input.csv")
	outputPath := filepath.Join(dir, "output.csv")
	if err := os.WriteFile(inputPath, csvData, 0o644); err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	start := time.Now()
	if err := p.scorer.Score(ctx, inputPath, outputPath); err != nil {
		return nil, err
	}

	outputData, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.PipelineFailure,
			"scoring oracle produced no output file", err)
	}
	output, err := csvtable.Parse(bytes.NewReader(outputData))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.PipelineFailure,
			"scoring oracle produced malformed output", err)
	}

	resp, records := reconcile(fallback, order, unidentified, output)

	if len(records) > 0 && p.writer != nil {
		if err := p.writer.BulkUpsert(ctx, records); err != nil {
			return nil, fmt.Errorf("persist compatibility records: %w", err)
		}
		if p.version != nil {
			if err := p.version.BumpCatalogVersion(ctx); err != nil && p.logger != nil {
				p.logger.WithError(err).Warn("failed to bump catalog version")
			}
		}
	}

	if p.logger != nil {
		p.logger.WithFields(logrus.Fields{
			"rows":     resp.Count,
			"scored":   len(records),
			"duration": time.Since(start).String(),
		}).Info("scoring run completed")
	}
	return resp, nil
}

// reconcile matches each oracle output row back to the upload by its own
// player_id column. Scored rows are "ok"; uploaded players the oracle emitted
// no identifiable row for are reported "missing" from the fallback table, so
// the response always covers the upload. Output rows without a parseable
// player_id carry no identity and are skipped.
func reconcile(fallback map[int]fallbackRow, order []int, unidentified []models.RowResult, output *csvtable.Table) (*models.UploadResponse, []models.PositionCompatibility) {
	results := make([]models.RowResult, 0, len(order)+len(unidentified))
	records := make([]models.PositionCompatibility, 0, output.Len())
	seen := make(map[int]bool, len(order))

	for i := 0; i < output.Len(); i++ {
		row := output.Row(i)
		playerID := row.Int("player_id")
		if playerID == nil {
			continue
		}
		seen[*playerID] = true
		fb := fallback[*playerID]

		rec := models.PositionCompatibility{
			PlayerID:     *playerID,
			NaturalPos:   row.StringPtr("natural_pos"),
			StFit:        row.Float("st_fit"),
			LwFit:        row.Float("lw_fit"),
			RwFit:        row.Float("rw_fit"),
			CmFit:        row.Float("cm_fit"),
			CdmFit:       row.Float("cdm_fit"),
			CamFit:       row.Float("cam_fit"),
			LbFit:        row.Float("lb_fit"),
			RbFit:        row.Float("rb_fit"),
			CbFit:        row.Float("cb_fit"),
			BestPos:      row.StringPtr("best_pos"),
			BestFitScore: row.Float("best_fit_score"),
			BestFitPct:   row.Float("best_fit_pct"),
			Ovr:          row.Int("OVR"),
			CreatedAt:    time.Now(),
		}
		// Older model builds omit the best-fit columns; derive them from
		// whatever fits are present.
		if rec.BestPos == nil || rec.BestFitScore == nil {
			pos, score := rec.BestFit()
			if rec.BestPos == nil {
				rec.BestPos = pos
			}
			if rec.BestFitScore == nil {
				rec.BestFitScore = score
			}
		}
		if rec.NaturalPos == nil {
			rec.NaturalPos = fb.subPos
		}

		name := row.StringPtr("name")
		if name == nil {
			name = fb.name
		}

		records = append(records, rec)
		results = append(results, models.RowResult{
			PlayerID:   *playerID,
			Name:       name,
			NaturalPos: rec.NaturalPos,
			Status:     models.RowStatusOK,
			Compatibility: &models.CompatibilitySummary{
				BestPos:      rec.BestPos,
				BestFitScore: rec.BestFitScore,
				StFit:        rec.StFit,
				LwFit:        rec.LwFit,
				RwFit:        rec.RwFit,
				CmFit:        rec.CmFit,
				CdmFit:       rec.CdmFit,
				CamFit:       rec.CamFit,
				LbFit:        rec.LbFit,
				RbFit:        rec.RbFit,
				CbFit:        rec.CbFit,
			},
		})
	}

	for _, playerID := range order {
		if seen[playerID] {
			continue
		}
		fb := fallback[playerID]
		results = append(results, models.RowResult{
			PlayerID:   playerID,
			Name:       fb.name,
			NaturalPos: fb.subPos,
			Status:     models.RowStatusMissing,
		})
	}
	results = append(results, unidentified...)

	return &models.UploadResponse{Count: len(results), Results: results}, records
}
