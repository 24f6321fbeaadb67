package postgres

import (
	"context"
	"time"

	"github.com/Rijass/Spotify-Stats/internal/domain"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, credential *domain.SessionCredential) error {
	return r.db.WithContext(ctx).Create(credential).Error
}

func (r *sessionRepository) FindActive(ctx context.Context, purpose domain.CredentialPurpose, now time.Time) ([]*domain.SessionCredential, error) {
	var credentials []*domain.SessionCredential
	err := r.db.WithContext(ctx).
		Where("purpose = ? AND expires_at > ?", purpose, now).
		Find(&credentials).Error
	if err != nil {
		return nil, err
	}
	return credentials, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.SessionCredential{}, "id = ?", id).Error
}

func (r *sessionRepository) DeleteByAccountID(ctx context.Context, accountID uint64, purpose domain.CredentialPurpose) error {
	return r.db.WithContext(ctx).
		Delete(&domain.SessionCredential{}, "account_id = ? AND purpose = ?", accountID, purpose).Error
}
