package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Rijass/Spotify-Stats/internal/config"
	"github.com/Rijass/Spotify-Stats/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const (
	claimPurpose        = "purpose"
	purposeSpotifyState = "spotify_state"
)

// signedTokenScheme issues self-contained HS256 tokens. There is no stored
// credential, so logout cannot revoke a token before its expiry; clients
// discard the token instead.
type signedTokenScheme struct {
	secret     []byte
	sessionTTL time.Duration
	stateTTL   time.Duration
}

func newSignedTokenScheme(cfg *config.Config) *signedTokenScheme {
	return &signedTokenScheme{
		secret:     []byte(cfg.JWTSecret),
		sessionTTL: time.Duration(cfg.JWTExpirationHours) * time.Hour,
		stateTTL:   cfg.StateTTL,
	}
}

func (s *signedTokenScheme) IssueSession(ctx context.Context, accountID uint64) (string, error) {
	return s.sign(accountID, s.sessionTTL, "")
}

func (s *signedTokenScheme) IssueState(ctx context.Context, accountID uint64) (string, error) {
	return s.sign(accountID, s.stateTTL, purposeSpotifyState)
}

func (s *signedTokenScheme) sign(accountID uint64, ttl time.Duration, purpose string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(accountID, 10),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if purpose != "" {
		claims[claimPurpose] = purpose
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *signedTokenScheme) AccountIDForSession(ctx context.Context, rawToken string) (uint64, error) {
	claims, err := s.parse(rawToken)
	if err != nil {
		return 0, err
	}

	// State tokens are scoped to the OAuth callback and must not act as
	// login sessions.
	if _, scoped := claims[claimPurpose]; scoped {
		return 0, domain.ErrInvalidCredentials
	}

	return subjectID(claims)
}

func (s *signedTokenScheme) RevokeSession(ctx context.Context, accountID uint64) error {
	// Stateless tokens cannot be revoked server-side before expiry.
	return nil
}

func (s *signedTokenScheme) ConsumeState(ctx context.Context, rawToken string) (uint64, error) {
	claims, err := s.parse(rawToken)
	if err != nil {
		return 0, domain.ErrInvalidState
	}
	if claims[claimPurpose] != purposeSpotifyState {
		return 0, domain.ErrInvalidState
	}

	id, err := subjectID(claims)
	if err != nil {
		return 0, domain.ErrInvalidState
	}
	return id, nil
}

func (s *signedTokenScheme) parse(rawToken string) (jwt.MapClaims, error) {
	if rawToken == "" {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}

func subjectID(claims jwt.MapClaims) (uint64, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, domain.ErrInvalidCredentials
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidCredentials
	}
	return id, nil
}
