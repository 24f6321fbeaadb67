package service

import (
	"context"
	"errors"
	"time"

	"github.com/Rijass/Spotify-Stats/internal/config"
	"github.com/Rijass/Spotify-Stats/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Ingestion runs shortly after midnight UTC so the playlist reflects the new
// chart day.
const ingestionOffset = 15 * time.Minute

// ChartIngestionJob drives ChartService.IngestDailyTop50 on a daily schedule.
// Failures are logged and retried at the next tick, never propagated.
type ChartIngestionJob struct {
	charts *ChartService
	logger zerolog.Logger

	ingestOnStartup bool
}

func NewChartIngestionJob(charts *ChartService, cfg *config.Config, logger zerolog.Logger) *ChartIngestionJob {
	return &ChartIngestionJob{
		charts:          charts,
		logger:          logger.With().Str("component", "chart_ingestion").Logger(),
		ingestOnStartup: cfg.IngestOnStartup,
	}
}

// Bootstrap performs the startup ingestion so a fresh deployment has chart
// data before the first scheduled tick.
func (j *ChartIngestionJob) Bootstrap(ctx context.Context) {
	if !j.ingestOnStartup {
		return
	}
	j.runOnce(ctx, "startup")
}

// Run blocks until ctx is cancelled, ingesting once per day at 00:15 UTC.
func (j *ChartIngestionJob) Run(ctx context.Context) {
	timer := time.NewTimer(timeUntilNextRun(time.Now().UTC()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			j.runOnce(ctx, "scheduled")
			timer.Reset(timeUntilNextRun(time.Now().UTC()))
		}
	}
}

func (j *ChartIngestionJob) runOnce(ctx context.Context, trigger string) {
	logger := j.logger.With().
		Str("run_id", uuid.NewString()).
		Str("trigger", trigger).
		Logger()

	logger.Info().Msg("ingesting daily chart")

	err := j.charts.IngestDailyTop50(ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrPlaylistNotFound):
		// Not transient: the configured playlist id is wrong.
		logger.Warn().Err(err).Msg("chart playlist not found, check SPOTIFY_TOP50_PLAYLIST_ID")
	default:
		logger.Error().Err(err).Msg("chart ingestion failed")
	}
}

func timeUntilNextRun(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(ingestionOffset)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
