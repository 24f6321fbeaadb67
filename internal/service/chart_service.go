package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rijass/Spotify-Stats/internal/config"
	"github.com/Rijass/Spotify-Stats/internal/domain"
	"github.com/Rijass/Spotify-Stats/internal/repository"
	"github.com/Rijass/Spotify-Stats/internal/spotify"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const chartSize = 50

// ChartService ingests the daily Global Top 50 snapshot and serves it back.
// Ingestion is idempotent per (chart, day): a full snapshot is left alone, a
// partial one is wiped and refetched.
type ChartService struct {
	charts repository.ChartRepository
	songs  repository.SongRepository
	auth   *spotify.AuthClient
	api    *spotify.APIClient
	logger zerolog.Logger

	playlistID string

	// Collapses concurrent ingestion attempts for the same chart day.
	ingestGroup singleflight.Group
}

func NewChartService(charts repository.ChartRepository, songs repository.SongRepository, auth *spotify.AuthClient, api *spotify.APIClient, cfg *config.Config, logger zerolog.Logger) *ChartService {
	return &ChartService{
		charts:     charts,
		songs:      songs,
		auth:       auth,
		api:        api,
		logger:     logger.With().Str("component", "chart_service").Logger(),
		playlistID: cfg.Top50PlaylistID,
	}
}

// IngestDailyTop50 records today's Global Top 50 snapshot. Safe to call more
// than once per day and from concurrent goroutines.
func (s *ChartService) IngestDailyTop50(ctx context.Context) error {
	date := todayUTC()
	key := fmt.Sprintf("%s:%s", domain.GlobalTop50Key, time.Time(date).Format("2006-01-02"))

	_, err, _ := s.ingestGroup.Do(key, func() (interface{}, error) {
		return nil, s.ingest(ctx, date)
	})
	return err
}

func (s *ChartService) ingest(ctx context.Context, date datatypes.Date) error {
	snapshot, err := s.snapshotFor(ctx, domain.GlobalTop50Key, date)
	if err != nil {
		return err
	}

	count, err := s.charts.CountEntries(ctx, snapshot.ID)
	if err != nil {
		return err
	}
	if count >= chartSize {
		return nil
	}
	if count > 0 {
		// A partial snapshot means an earlier run died mid-write.
		s.logger.Warn().
			Int64("entries", count).
			Time("chart_date", time.Time(date)).
			Msg("discarding partial chart snapshot")
		if err := s.charts.DeleteEntries(ctx, snapshot.ID); err != nil {
			return err
		}
	}

	token, err := s.auth.ClientCredentialsToken(ctx)
	if err != nil {
		return err
	}

	tracks, err := s.api.PlaylistTracks(ctx, token.AccessToken, s.playlistID, chartSize)
	if err != nil {
		return err
	}

	for position, track := range tracks {
		song, err := s.upsertSong(ctx, track)
		if err != nil {
			return err
		}
		entry := &domain.ChartEntry{
			SnapshotID: snapshot.ID,
			Position:   position + 1,
			SongID:     song.ID,
		}
		if err := s.charts.AddEntry(ctx, entry); err != nil {
			return err
		}
	}

	s.logger.Info().
		Int("entries", len(tracks)).
		Time("chart_date", time.Time(date)).
		Msg("chart snapshot ingested")
	return nil
}

func (s *ChartService) snapshotFor(ctx context.Context, chartKey string, date datatypes.Date) (*domain.ChartSnapshot, error) {
	snapshot, err := s.charts.GetSnapshot(ctx, chartKey, date)
	if err == nil {
		return snapshot, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	snapshot = &domain.ChartSnapshot{ChartKey: chartKey, ChartDate: date}
	if err := s.charts.CreateSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// upsertSong writes the song and re-reads it by provider track id. On a
// conflicting insert gorm does not reliably populate the existing row's id.
func (s *ChartService) upsertSong(ctx context.Context, track spotify.TrackItem) (*domain.Song, error) {
	song := &domain.Song{
		ProviderTrackID: track.ProviderTrackID,
		Artist:          track.Artist,
		Title:           track.Title,
	}
	if err := s.songs.Upsert(ctx, song); err != nil {
		return nil, err
	}
	return s.songs.GetByProviderTrackID(ctx, track.ProviderTrackID)
}

// ChartEntryView is one row of the chart as served over HTTP.
type ChartEntryView struct {
	Position int    `json:"position"`
	Artist   string `json:"artist"`
	Title    string `json:"title"`
}

// LatestEntries returns up to limit entries of the most recent snapshot, or
// nil when no snapshot has been ingested yet.
func (s *ChartService) LatestEntries(ctx context.Context, limit int) ([]ChartEntryView, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > chartSize {
		limit = chartSize
	}

	snapshot, err := s.charts.GetLatestSnapshot(ctx, domain.GlobalTop50Key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	entries, err := s.charts.FindEntries(ctx, snapshot.ID, limit)
	if err != nil {
		return nil, err
	}

	views := make([]ChartEntryView, 0, len(entries))
	for _, entry := range entries {
		view := ChartEntryView{Position: entry.Position}
		if entry.Song != nil {
			view.Artist = entry.Song.Artist
			view.Title = entry.Song.Title
		}
		views = append(views, view)
	}
	return views, nil
}

func todayUTC() datatypes.Date {
	now := time.Now().UTC()
	return datatypes.Date(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
}
