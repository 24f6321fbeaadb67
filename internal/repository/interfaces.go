package repository

import (
	"context"
	"time"

	"github.com/Rijass/Spotify-Stats/internal/domain"
	"gorm.io/datatypes"
)

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uint64) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

type SessionRepository interface {
	Create(ctx context.Context, credential *domain.SessionCredential) error
	FindActive(ctx context.Context, purpose domain.CredentialPurpose, now time.Time) ([]*domain.SessionCredential, error)
	Delete(ctx context.Context, id uint64) error
	DeleteByAccountID(ctx context.Context, accountID uint64, purpose domain.CredentialPurpose) error
}

type ProviderTokenRepository interface {
	GetByAccountID(ctx context.Context, accountID uint64) (*domain.ProviderTokenSet, error)
	Upsert(ctx context.Context, tokens *domain.ProviderTokenSet) error
	DeleteByAccountID(ctx context.Context, accountID uint64) error
}

type ChartRepository interface {
	CreateSnapshot(ctx context.Context, snapshot *domain.ChartSnapshot) error
	GetSnapshot(ctx context.Context, chartKey string, date datatypes.Date) (*domain.ChartSnapshot, error)
	GetLatestSnapshot(ctx context.Context, chartKey string) (*domain.ChartSnapshot, error)
	AddEntry(ctx context.Context, entry *domain.ChartEntry) error
	FindEntries(ctx context.Context, snapshotID uint64, limit int) ([]*domain.ChartEntry, error)
	CountEntries(ctx context.Context, snapshotID uint64) (int64, error)
	DeleteEntries(ctx context.Context, snapshotID uint64) error
}

type SongRepository interface {
	Upsert(ctx context.Context, song *domain.Song) error
	GetByProviderTrackID(ctx context.Context, providerTrackID string) (*domain.Song, error)
}

type Repositories struct {
	Account       AccountRepository
	Session       SessionRepository
	ProviderToken ProviderTokenRepository
	Chart         ChartRepository
	Song          SongRepository
}
