package service

import (
	"context"
	"time"

	"github.com/Rijass/Spotify-Stats/internal/config"
	"github.com/Rijass/Spotify-Stats/internal/domain"
	"github.com/Rijass/Spotify-Stats/internal/repository"
	"github.com/Rijass/Spotify-Stats/internal/secrets"
)

type storedTokenScheme struct {
	sessions   repository.SessionRepository
	codec      *secrets.Codec
	sessionTTL time.Duration
	stateTTL   time.Duration
}

func newStoredTokenScheme(cfg *config.Config, codec *secrets.Codec, sessions repository.SessionRepository) *storedTokenScheme {
	return &storedTokenScheme{
		sessions:   sessions,
		codec:      codec,
		sessionTTL: cfg.SessionTTL,
		stateTTL:   cfg.StateTTL,
	}
}

func (s *storedTokenScheme) IssueSession(ctx context.Context, accountID uint64) (string, error) {
	return s.issue(ctx, accountID, domain.PurposeSession, s.sessionTTL)
}

func (s *storedTokenScheme) IssueState(ctx context.Context, accountID uint64) (string, error) {
	return s.issue(ctx, accountID, domain.PurposeSpotifyState, s.stateTTL)
}

func (s *storedTokenScheme) issue(ctx context.Context, accountID uint64, purpose domain.CredentialPurpose, ttl time.Duration) (string, error) {
	raw, err := s.codec.NewOpaqueToken()
	if err != nil {
		return "", err
	}
	hash, err := s.codec.HashToken(raw)
	if err != nil {
		return "", err
	}

	// One credential per account and purpose; issuing replaces the old one.
	if err := s.sessions.DeleteByAccountID(ctx, accountID, purpose); err != nil {
		return "", err
	}

	credential := &domain.SessionCredential{
		AccountID: accountID,
		TokenHash: hash,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Create(ctx, credential); err != nil {
		return "", err
	}

	return raw, nil
}

// AccountIDForSession verifies the raw token against every non-expired
// credential. Acceptable while active-session sets are small; a keyed lookup
// would need an unhashed index column whose confidentiality is protected
// separately.
func (s *storedTokenScheme) AccountIDForSession(ctx context.Context, rawToken string) (uint64, error) {
	credential, err := s.find(ctx, rawToken, domain.PurposeSession)
	if err != nil {
		return 0, err
	}
	return credential.AccountID, nil
}

func (s *storedTokenScheme) RevokeSession(ctx context.Context, accountID uint64) error {
	return s.sessions.DeleteByAccountID(ctx, accountID, domain.PurposeSession)
}

// ConsumeState is single-use: the matching credential is deleted on success.
func (s *storedTokenScheme) ConsumeState(ctx context.Context, rawToken string) (uint64, error) {
	credential, err := s.find(ctx, rawToken, domain.PurposeSpotifyState)
	if err != nil {
		return 0, domain.ErrInvalidState
	}
	if err := s.sessions.Delete(ctx, credential.ID); err != nil {
		return 0, err
	}
	return credential.AccountID, nil
}

func (s *storedTokenScheme) find(ctx context.Context, rawToken string, purpose domain.CredentialPurpose) (*domain.SessionCredential, error) {
	if rawToken == "" {
		return nil, domain.ErrInvalidCredentials
	}

	candidates, err := s.sessions.FindActive(ctx, purpose, time.Now())
	if err != nil {
		return nil, err
	}
	for _, credential := range candidates {
		if s.codec.TokenMatches(rawToken, credential.TokenHash) {
			return credential, nil
		}
	}
	return nil, domain.ErrInvalidCredentials
}
