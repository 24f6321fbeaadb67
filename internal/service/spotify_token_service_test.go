package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Rijass/Spotify-Stats/internal/config"
	"github.com/Rijass/Spotify-Stats/internal/domain"
	"github.com/Rijass/Spotify-Stats/internal/repository"
	"github.com/Rijass/Spotify-Stats/internal/repository/postgres"
	"github.com/Rijass/Spotify-Stats/internal/secrets"
	"github.com/Rijass/Spotify-Stats/internal/service"
	"github.com/Rijass/Spotify-Stats/internal/spotify"
	"github.com/Rijass/Spotify-Stats/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenServiceHarness struct {
	service *service.SpotifyTokenService
	tokens  repository.ProviderTokenRepository
	cfg     *config.Config

	refreshCalls  *int64
	lastRefreshMu *sync.Mutex
	lastRefresh   *string
}

// newTokenServiceHarness wires the token service against a real database and
// a fake token endpoint that answers refresh grants with respond's body.
func newTokenServiceHarness(t *testing.T, respond func() map[string]interface{}) *tokenServiceHarness {
	t.Helper()

	var calls int64
	var mu sync.Mutex
	var lastRefresh string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		atomic.AddInt64(&calls, 1)
		mu.Lock()
		lastRefresh = r.PostForm.Get("refresh_token")
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(respond())
	}))
	t.Cleanup(server.Close)

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	cfg.SpotifyTokenURL = server.URL

	codec, err := secrets.NewCodec(cfg.CryptoPassword, cfg.CryptoSalt)
	require.NoError(t, err)

	auth := spotify.NewAuthClient(cfg)
	return &tokenServiceHarness{
		service:       service.NewSpotifyTokenService(repos.ProviderToken, codec, auth, cfg),
		tokens:        repos.ProviderToken,
		cfg:           cfg,
		refreshCalls:  &calls,
		lastRefreshMu: &mu,
		lastRefresh:   &lastRefresh,
	}
}

func (h *tokenServiceHarness) refreshedWith() string {
	h.lastRefreshMu.Lock()
	defer h.lastRefreshMu.Unlock()
	return *h.lastRefresh
}

func staticTokenBody(accessToken string, expiresIn int) func() map[string]interface{} {
	return func() map[string]interface{} {
		return map[string]interface{}{
			"access_token": accessToken,
			"token_type":   "Bearer",
			"expires_in":   expiresIn,
		}
	}
}

func TestSpotifyTokenService_NotLinked(t *testing.T) {
	h := newTokenServiceHarness(t, staticTokenBody("unused", 3600))

	_, err := h.service.GetValidAccessToken(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotLinked)
	assert.EqualValues(t, 0, atomic.LoadInt64(h.refreshCalls))
}

func TestSpotifyTokenService_CachedTokenSkipsRefresh(t *testing.T) {
	h := newTokenServiceHarness(t, staticTokenBody("unused", 3600))
	ctx := context.Background()

	expiresAt := time.Now().Add(30 * time.Minute)
	require.NoError(t, h.service.UpdateTokens(ctx, 1, "refresh-1", "access-1", &expiresAt))

	token, err := h.service.GetValidAccessToken(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "access-1", token)
	assert.EqualValues(t, 0, atomic.LoadInt64(h.refreshCalls))
}

func TestSpotifyTokenService_NearExpiryCountsAsExpired(t *testing.T) {
	h := newTokenServiceHarness(t, staticTokenBody("access-2", 3600))
	ctx := context.Background()

	// Still technically valid, but within the safety window.
	expiresAt := time.Now().Add(30 * time.Second)
	require.NoError(t, h.service.UpdateTokens(ctx, 1, "refresh-1", "access-1", &expiresAt))

	token, err := h.service.GetValidAccessToken(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "access-2", token)
	assert.EqualValues(t, 1, atomic.LoadInt64(h.refreshCalls))
}

func TestSpotifyTokenService_ExpiredTokenRefreshes(t *testing.T) {
	h := newTokenServiceHarness(t, staticTokenBody("access-2", 120))
	ctx := context.Background()

	expiresAt := time.Now().Add(-time.Minute)
	require.NoError(t, h.service.UpdateTokens(ctx, 1, "refresh-1", "access-1", &expiresAt))

	token, err := h.service.GetValidAccessToken(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "access-2", token)
	assert.EqualValues(t, 1, atomic.LoadInt64(h.refreshCalls))
	assert.Equal(t, "refresh-1", h.refreshedWith())

	// The new expiry honors the reported 120s, not the ceiling.
	stored, err := h.tokens.GetByAccountID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, stored.AccessTokenExpiresAt)
	assert.WithinDuration(t, time.Now().Add(120*time.Second), *stored.AccessTokenExpiresAt, 10*time.Second)

	// The provider omitted refresh_token; the stored one survives.
	linked, err := h.service.HasRefreshToken(ctx, 1)
	require.NoError(t, err)
	assert.True(t, linked)
}

func TestSpotifyTokenService_RotatedRefreshTokenPersisted(t *testing.T) {
	h := newTokenServiceHarness(t, func() map[string]interface{} {
		return map[string]interface{}{
			"access_token":  "access-2",
			"token_type":    "Bearer",
			"expires_in":    3600,
			"refresh_token": "refresh-2",
		}
	})
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	require.NoError(t, h.service.UpdateTokens(ctx, 1, "refresh-1", "access-1", &past))

	_, err := h.service.GetValidAccessToken(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", h.refreshedWith())

	// Expire the access token again without touching the refresh token.
	require.NoError(t, h.service.UpdateTokens(ctx, 1, "", "access-2", &past))

	_, err = h.service.GetValidAccessToken(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", h.refreshedWith())
}

func TestSpotifyTokenService_MissingRefreshToken(t *testing.T) {
	h := newTokenServiceHarness(t, staticTokenBody("unused", 3600))
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	require.NoError(t, h.service.UpdateTokens(ctx, 1, "", "access-1", &past))

	_, err := h.service.GetValidAccessToken(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNoRefreshToken)
	assert.EqualValues(t, 0, atomic.LoadInt64(h.refreshCalls))
}

func TestSpotifyTokenService_ConcurrentRefreshHitsUpstreamOnce(t *testing.T) {
	h := newTokenServiceHarness(t, staticTokenBody("access-2", 3600))
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	require.NoError(t, h.service.UpdateTokens(ctx, 1, "refresh-1", "access-1", &past))

	const workers = 8
	var wg sync.WaitGroup
	results := make([]string, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.service.GetValidAccessToken(ctx, 1)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "access-2", results[i])
	}
	assert.EqualValues(t, 1, atomic.LoadInt64(h.refreshCalls))
}

func TestSpotifyTokenService_CalculateExpiry(t *testing.T) {
	h := newTokenServiceHarness(t, staticTokenBody("unused", 3600))

	tests := []struct {
		name      string
		expiresIn int
		want      time.Duration
	}{
		{name: "shorter than ceiling", expiresIn: 120, want: 120 * time.Second},
		{name: "longer than ceiling", expiresIn: 7200, want: h.cfg.AccessTokenLifetime},
		{name: "missing", expiresIn: 0, want: h.cfg.AccessTokenLifetime},
		{name: "negative", expiresIn: -5, want: h.cfg.AccessTokenLifetime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.service.CalculateExpiry(tt.expiresIn)
			assert.WithinDuration(t, time.Now().Add(tt.want), got, 5*time.Second)
		})
	}
}

func TestSpotifyTokenService_Unlink(t *testing.T) {
	h := newTokenServiceHarness(t, staticTokenBody("unused", 3600))
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	require.NoError(t, h.service.UpdateTokens(ctx, 1, "refresh-1", "access-1", &future))
	require.NoError(t, h.service.Unlink(ctx, 1))

	linked, err := h.service.HasRefreshToken(ctx, 1)
	require.NoError(t, err)
	assert.False(t, linked)

	_, err = h.service.GetValidAccessToken(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotLinked)
}
