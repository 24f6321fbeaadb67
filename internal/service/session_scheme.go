package service

import (
	"context"
	"fmt"

	"github.com/Rijass/Spotify-Stats/internal/config"
	"github.com/Rijass/Spotify-Stats/internal/repository"
	"github.com/Rijass/Spotify-Stats/internal/secrets"
)

// SessionScheme issues and validates the credentials that identify a logged-in
// account, plus the short-lived state tokens protecting the OAuth callback.
// Exactly one implementation is active per process, chosen at startup:
//
//   - "stored": opaque random tokens whose bcrypt hash lives in the database;
//     revocable server-side, validation costs a lookup.
//   - "signed": self-contained HMAC-signed tokens; no lookup and no
//     server-side revocation before expiry.
type SessionScheme interface {
	// IssueSession returns the raw credential exactly once; it is not
	// recoverable afterwards.
	IssueSession(ctx context.Context, accountID uint64) (string, error)

	// AccountIDForSession resolves a raw credential to the account it was
	// issued for. Returns domain.ErrInvalidCredentials for unknown, expired
	// or malformed tokens.
	AccountIDForSession(ctx context.Context, rawToken string) (uint64, error)

	// RevokeSession invalidates the account's current session credential.
	RevokeSession(ctx context.Context, accountID uint64) error

	// IssueState creates a short-lived token scoped to validating the OAuth
	// callback for this account.
	IssueState(ctx context.Context, accountID uint64) (string, error)

	// ConsumeState validates a state token and invalidates it where the
	// scheme supports single use. Returns domain.ErrInvalidState otherwise.
	ConsumeState(ctx context.Context, rawToken string) (uint64, error)
}

func NewSessionScheme(cfg *config.Config, codec *secrets.Codec, sessions repository.SessionRepository) (SessionScheme, error) {
	switch cfg.SessionScheme {
	case config.SchemeStored:
		return newStoredTokenScheme(cfg, codec, sessions), nil
	case config.SchemeSigned:
		return newSignedTokenScheme(cfg), nil
	default:
		return nil, fmt.Errorf("unknown session scheme %q", cfg.SessionScheme)
	}
}
