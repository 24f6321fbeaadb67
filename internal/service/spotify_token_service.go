package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Rijass/Spotify-Stats/internal/config"
	"github.com/Rijass/Spotify-Stats/internal/domain"
	"github.com/Rijass/Spotify-Stats/internal/repository"
	"github.com/Rijass/Spotify-Stats/internal/secrets"
	"github.com/Rijass/Spotify-Stats/internal/spotify"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// SpotifyTokenService owns the encrypted token set per account and the
// transparent refresh of expired access tokens.
type SpotifyTokenService struct {
	tokens repository.ProviderTokenRepository
	codec  *secrets.Codec
	auth   *spotify.AuthClient

	// Access tokens are never trusted beyond this lifetime, regardless of
	// what expires_in the provider reports.
	maxLifetime time.Duration

	// Spotify refresh tokens can be single-use; concurrent refreshes for the
	// same account are collapsed into one upstream call.
	refreshGroup singleflight.Group
}

// A token expiring within this window counts as expired, so a call made with
// it cannot die mid-flight.
const expirySkew = 60 * time.Second

func usable(t *decryptedTokenSet) bool {
	return t.accessToken != "" && t.expiresAt != nil && t.expiresAt.After(time.Now().Add(expirySkew))
}

func NewSpotifyTokenService(tokens repository.ProviderTokenRepository, codec *secrets.Codec, auth *spotify.AuthClient, cfg *config.Config) *SpotifyTokenService {
	return &SpotifyTokenService{
		tokens:      tokens,
		codec:       codec,
		auth:        auth,
		maxLifetime: cfg.AccessTokenLifetime,
	}
}

// GetValidAccessToken returns the stored access token when its expiry is
// strictly in the future, otherwise refreshes it via the stored refresh token
// and persists the result.
func (s *SpotifyTokenService) GetValidAccessToken(ctx context.Context, accountID uint64) (string, error) {
	stored, err := s.decryptedTokens(ctx, accountID)
	if err != nil {
		return "", err
	}

	if usable(stored) {
		return stored.accessToken, nil
	}

	token, err, _ := s.refreshGroup.Do(strconv.FormatUint(accountID, 10), func() (interface{}, error) {
		return s.refresh(ctx, accountID)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (s *SpotifyTokenService) refresh(ctx context.Context, accountID uint64) (string, error) {
	// Re-read under the flight: a concurrent caller may have refreshed
	// between our expiry check and now.
	stored, err := s.decryptedTokens(ctx, accountID)
	if err != nil {
		return "", err
	}
	if usable(stored) {
		return stored.accessToken, nil
	}
	if stored.refreshToken == "" {
		return "", domain.ErrNoRefreshToken
	}

	response, err := s.auth.RefreshAccessToken(ctx, stored.refreshToken)
	if err != nil {
		return "", err
	}

	expiresAt := s.CalculateExpiry(response.ExpiresIn)
	if err := s.UpdateTokens(ctx, accountID, response.RefreshToken, response.AccessToken, &expiresAt); err != nil {
		return "", err
	}
	return response.AccessToken, nil
}

// UpdateTokens encrypts and upserts the token set. A missing access token or
// expiry makes this a no-op; a missing refresh token leaves the stored one
// untouched (providers may omit it on refresh responses).
func (s *SpotifyTokenService) UpdateTokens(ctx context.Context, accountID uint64, refreshToken, accessToken string, expiresAt *time.Time) error {
	if accessToken == "" || expiresAt == nil {
		return nil
	}

	accessEnc, err := s.codec.Encrypt(accessToken)
	if err != nil {
		return err
	}
	refreshEnc := ""
	if refreshToken != "" {
		refreshEnc, err = s.codec.Encrypt(refreshToken)
		if err != nil {
			return err
		}
	}

	return s.tokens.Upsert(ctx, &domain.ProviderTokenSet{
		AccountID:            accountID,
		RefreshTokenEnc:      refreshEnc,
		AccessTokenEnc:       accessEnc,
		AccessTokenExpiresAt: expiresAt,
	})
}

// HasRefreshToken answers "is this account linked" without decrypting.
func (s *SpotifyTokenService) HasRefreshToken(ctx context.Context, accountID uint64) (bool, error) {
	tokens, err := s.tokens.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return tokens.RefreshTokenEnc != "", nil
}

func (s *SpotifyTokenService) Unlink(ctx context.Context, accountID uint64) error {
	return s.tokens.DeleteByAccountID(ctx, accountID)
}

// CalculateExpiry bounds the provider's expires_in at the configured ceiling.
func (s *SpotifyTokenService) CalculateExpiry(expiresIn int) time.Time {
	lifetime := s.maxLifetime
	if expiresIn > 0 {
		reported := time.Duration(expiresIn) * time.Second
		if reported < lifetime {
			lifetime = reported
		}
	}
	return time.Now().Add(lifetime)
}

type decryptedTokenSet struct {
	refreshToken string
	accessToken  string
	expiresAt    *time.Time
}

func (s *SpotifyTokenService) decryptedTokens(ctx context.Context, accountID uint64) (*decryptedTokenSet, error) {
	tokens, err := s.tokens.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotLinked
		}
		return nil, err
	}

	refreshToken, err := s.codec.Decrypt(tokens.RefreshTokenEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt refresh token: %w", err)
	}
	accessToken, err := s.codec.Decrypt(tokens.AccessTokenEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}

	return &decryptedTokenSet{
		refreshToken: refreshToken,
		accessToken:  accessToken,
		expiresAt:    tokens.AccessTokenExpiresAt,
	}, nil
}
