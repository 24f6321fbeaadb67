package service

import (
	"context"

	"github.com/Rijass/Spotify-Stats/internal/config"
	"github.com/Rijass/Spotify-Stats/internal/spotify"
)

// SpotifyService orchestrates the OAuth link flow and the per-account API
// calls that ride on the linked tokens.
type SpotifyService struct {
	auth   *spotify.AuthClient
	api    *spotify.APIClient
	tokens *SpotifyTokenService
	scheme SessionScheme

	successRedirectURL string
}

// LinkStatus is the shape of GET /api/spotify/status.
type LinkStatus struct {
	Linked bool `json:"linked"`
}

func NewSpotifyService(auth *spotify.AuthClient, api *spotify.APIClient, tokens *SpotifyTokenService, scheme SessionScheme, cfg *config.Config) *SpotifyService {
	return &SpotifyService{
		auth:               auth,
		api:                api,
		tokens:             tokens,
		scheme:             scheme,
		successRedirectURL: cfg.SuccessRedirectURL,
	}
}

// AuthorizationURL mints a state bound to the account and returns the Spotify
// consent URL carrying it.
func (s *SpotifyService) AuthorizationURL(ctx context.Context, accountID uint64) (string, error) {
	state, err := s.scheme.IssueState(ctx, accountID)
	if err != nil {
		return "", err
	}
	return s.auth.BuildAuthorizationURL(state), nil
}

// HandleCallback validates the state, exchanges the authorization code and
// stores the resulting token set. Returns the URL the browser should land on.
func (s *SpotifyService) HandleCallback(ctx context.Context, state, code string) (string, error) {
	accountID, err := s.scheme.ConsumeState(ctx, state)
	if err != nil {
		return "", err
	}

	response, err := s.auth.ExchangeCode(ctx, code)
	if err != nil {
		return "", err
	}

	expiresAt := s.tokens.CalculateExpiry(response.ExpiresIn)
	if err := s.tokens.UpdateTokens(ctx, accountID, response.RefreshToken, response.AccessToken, &expiresAt); err != nil {
		return "", err
	}
	return s.successRedirectURL, nil
}

func (s *SpotifyService) Status(ctx context.Context, accountID uint64) (*LinkStatus, error) {
	linked, err := s.tokens.HasRefreshToken(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &LinkStatus{Linked: linked}, nil
}

func (s *SpotifyService) Unlink(ctx context.Context, accountID uint64) error {
	return s.tokens.Unlink(ctx, accountID)
}

func (s *SpotifyService) Profile(ctx context.Context, accountID uint64) (*spotify.Profile, error) {
	accessToken, err := s.tokens.GetValidAccessToken(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.api.Me(ctx, accessToken)
}

func (s *SpotifyService) TopTracks(ctx context.Context, accountID uint64, limit int) ([]spotify.TopTrack, error) {
	if limit <= 0 {
		limit = 10
	}
	accessToken, err := s.tokens.GetValidAccessToken(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.api.TopTracks(ctx, accessToken, limit)
}
