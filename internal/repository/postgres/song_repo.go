package postgres

import (
	"context"

	"github.com/Rijass/Spotify-Stats/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type songRepository struct {
	db *gorm.DB
}

func NewSongRepository(db *gorm.DB) *songRepository {
	return &songRepository{db: db}
}

// Upsert keys on provider_track_id and overwrites artist/title, since catalog
// metadata may change between ingestions. Callers that need the row ID after a
// conflicting insert should re-fetch by provider track id.
func (r *songRepository) Upsert(ctx context.Context, song *domain.Song) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_track_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"artist", "title", "updated_at"}),
	}).Create(song).Error
}

func (r *songRepository) GetByProviderTrackID(ctx context.Context, providerTrackID string) (*domain.Song, error) {
	var song domain.Song
	err := r.db.WithContext(ctx).First(&song, "provider_track_id = ?", providerTrackID).Error
	if err != nil {
		return nil, err
	}
	return &song, nil
}
