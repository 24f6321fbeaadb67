package postgres

import (
	"github.com/Rijass/Spotify-Stats/internal/domain"
	"github.com/Rijass/Spotify-Stats/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.Account{},
		&domain.SessionCredential{},
		&domain.ProviderTokenSet{},
		&domain.Song{},
		&domain.ChartSnapshot{},
		&domain.ChartEntry{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Account:       NewAccountRepository(db),
		Session:       NewSessionRepository(db),
		ProviderToken: NewProviderTokenRepository(db),
		Chart:         NewChartRepository(db),
		Song:          NewSongRepository(db),
	}
}
