package postgres

import (
	"context"

	"github.com/Rijass/Spotify-Stats/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type providerTokenRepository struct {
	db *gorm.DB
}

func NewProviderTokenRepository(db *gorm.DB) *providerTokenRepository {
	return &providerTokenRepository{db: db}
}

func (r *providerTokenRepository) GetByAccountID(ctx context.Context, accountID uint64) (*domain.ProviderTokenSet, error) {
	var tokens domain.ProviderTokenSet
	err := r.db.WithContext(ctx).First(&tokens, "account_id = ?", accountID).Error
	if err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Upsert writes the full token set atomically. An empty RefreshTokenEnc keeps
// the previously stored refresh token (providers may omit it on refresh).
func (r *providerTokenRepository) Upsert(ctx context.Context, tokens *domain.ProviderTokenSet) error {
	assignments := map[string]interface{}{
		"access_token_enc":        tokens.AccessTokenEnc,
		"access_token_expires_at": tokens.AccessTokenExpiresAt,
		"updated_at":              gorm.Expr("NOW()"),
	}
	if tokens.RefreshTokenEnc != "" {
		assignments["refresh_token_enc"] = tokens.RefreshTokenEnc
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(tokens).Error
}

func (r *providerTokenRepository) DeleteByAccountID(ctx context.Context, accountID uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.ProviderTokenSet{}, "account_id = ?", accountID).Error
}
