// Package report delivers the times of completed games to external sinks.
// Delivery is fire-and-forget: callers log failures and move on.
package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Reporter is implemented by every sink in this package.
type Reporter interface {
	Report(ctx context.Context, sessionID uuid.UUID, times []float64) error
}

// MultiReporter sends results to every wrapped reporter.
type MultiReporter []Reporter

func (m MultiReporter) Report(ctx context.Context, sessionID uuid.UUID, times []float64) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(ctx, sessionID, times); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogReporter only logs results. Used when no endpoint is configured.
type LogReporter struct{}

func (LogReporter) Report(_ context.Context, sessionID uuid.UUID, times []float64) error {
	log.Info().
		Str("session_id", sessionID.String()).
		Floats64("elapsed_times", times).
		Msg("game results")
	return nil
}
