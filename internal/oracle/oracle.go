// Package oracle wraps the external scoring model behind a file-contract
// port: feed it an input CSV path, get an output CSV back. Everything else
// about the model is opaque to this service.
package oracle

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"reposition/internal/apperrors"

	"github.com/sirupsen/logrus"
)

// Scorer runs the scoring model over inputPath and writes its results to
// outputPath. Implementations must return only after the output file is
// complete or the run has failed.
type Scorer interface {
	Score(ctx context.Context, inputPath, outputPath string) error
}

// CLIScorer invokes the scoring model as a child process and waits for exit.
// A non-zero exit, a failure to start, or hitting the timeout all fail the
// whole run; there are no retries - the invocation is too expensive to repeat
// blindly.
type CLIScorer struct {
	Command string
	Script  string
	Timeout time.Duration
	Logger  *logrus.Logger
}

// Score runs the oracle process: <command> <script> --input <in> --out <out>.
func (s *CLIScorer) Score(ctx context.Context, inputPath, outputPath string) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	args := []string{}
	if s.Script != "" {
		args = append(args, s.Script)
	}
	args = append(args, "--input", inputPath, "--out", outputPath)

	start := time.Now()
	cmd := exec.CommandContext(ctx, s.Command, args...)
	output, err := cmd.CombinedOutput()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.PipelineFailure,
			"scoring oracle timed out", ctx.Err())
	}
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("output", string(output)).Error("scoring oracle failed")
		}
		return apperrors.Wrap(apperrors.PipelineFailure, "scoring oracle failed", err)
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"input":    inputPath,
			"duration": time.Since(start).String(),
		}).Info("scoring oracle completed")
	}
	return nil
}
