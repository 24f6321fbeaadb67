// Package spotify talks to the Spotify accounts service and Web API.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package spotify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Rijass/Spotify-Stats/internal/config"
	"github.com/Rijass/Spotify-Stats/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenResponse mirrors the token endpoint payload. RefreshToken is empty
// when the provider did not issue a new one.
type TokenResponse struct {
	AccessToken  string
	TokenType    string
	Scope        string
	ExpiresIn    int
	RefreshToken string
}

// AuthClient performs the OAuth handshakes: authorization-code exchange and
// refresh for user tokens, client-credentials for server-to-server calls.
type AuthClient struct {
	oauth       *oauth2.Config
	credentials *clientcredentials.Config
}

func NewAuthClient(cfg *config.Config) *AuthClient {
	return &AuthClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			RedirectURL:  cfg.SpotifyRedirectURI,
			Scopes:       strings.Fields(cfg.SpotifyScope),
			Endpoint: oauth2.Endpoint{
				AuthURL: cfg.SpotifyAuthURL,
				// Spotify wants base64(clientId:clientSecret) Basic auth.
				TokenURL:  cfg.SpotifyTokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		credentials: &clientcredentials.Config{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			TokenURL:     cfg.SpotifyTokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
	}
}

// BuildAuthorizationURL returns the authorize endpoint URL carrying client id,
// response type, redirect URI, scopes and the caller-supplied anti-CSRF state.
func (c *AuthClient) BuildAuthorizationURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for a token set.
func (c *AuthClient) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", domain.ErrUpstream, err)
	}
	return fromToken(token, ""), nil
}

// RefreshAccessToken requests a fresh access token using the stored refresh
// token. The returned RefreshToken is empty unless the provider rotated it.
func (c *AuthClient) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, domain.ErrNoRefreshToken
	}

	source := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: token refresh: %v", domain.ErrUpstream, err)
	}
	return fromToken(token, refreshToken), nil
}

// ClientCredentialsToken acquires an app-only token with no user context,
// used solely for public-playlist ingestion.
func (c *AuthClient) ClientCredentialsToken(ctx context.Context) (*TokenResponse, error) {
	token, err := c.credentials.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: client credentials: %v", domain.ErrUpstream, err)
	}
	return fromToken(token, ""), nil
}

// fromToken flattens an oauth2 token. oauth2 echoes the previous refresh
// token back when the response omitted one; that case is reported as empty so
// callers never mistake it for a rotation.
func fromToken(token *oauth2.Token, previousRefresh string) *TokenResponse {
	resp := &TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	}

	if token.RefreshToken != "" && token.RefreshToken != previousRefresh {
		resp.RefreshToken = token.RefreshToken
	}

	if scope, ok := token.Extra("scope").(string); ok {
		resp.Scope = scope
	}

	switch v := token.Extra("expires_in").(type) {
	case float64:
		resp.ExpiresIn = int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			resp.ExpiresIn = n
		}
	default:
		if !token.Expiry.IsZero() {
			resp.ExpiresIn = int(time.Until(token.Expiry).Seconds())
		}
	}

	return resp
}
