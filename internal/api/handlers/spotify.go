package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Rijass/Spotify-Stats/internal/api/middleware"
	"github.com/Rijass/Spotify-Stats/internal/domain"
	"github.com/Rijass/Spotify-Stats/internal/service"
)

type SpotifyHandler struct {
	spotifyService *service.SpotifyService
}

func NewSpotifyHandler(spotifyService *service.SpotifyService) *SpotifyHandler {
	return &SpotifyHandler{spotifyService: spotifyService}
}

type ProfileResponse struct {
	DisplayName string `json:"displayName"`
	Followers   int    `json:"followers"`
	ImageURL    string `json:"imageUrl"`
}

type TopTrackResponse struct {
	Title         string   `json:"title"`
	Artists       []string `json:"artists"`
	AlbumImageURL string   `json:"albumImageUrl"`
}

// Login returns the Spotify consent URL for the authenticated account.
func (h *SpotifyHandler) Login(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	url, err := h.spotifyService.AuthorizationURL(r.Context(), accountID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}

// Callback is hit by Spotify's redirect, so it carries no session header; the
// state parameter is what ties it back to an account.
func (h *SpotifyHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		http.Error(w, "state and code are required", http.StatusBadRequest)
		return
	}

	redirectURL, err := h.spotifyService.HandleCallback(r.Context(), state, code)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			http.Error(w, "Invalid state", http.StatusUnauthorized)
			return
		}
		if errors.Is(err, domain.ErrUpstream) {
			http.Error(w, "Spotify request failed", http.StatusBadGateway)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func (h *SpotifyHandler) Status(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status, err := h.spotifyService.Status(r.Context(), accountID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (h *SpotifyHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.spotifyService.Unlink(r.Context(), accountID); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (h *SpotifyHandler) Profile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.spotifyService.Profile(r.Context(), accountID)
	if err != nil {
		writeSpotifyError(w, err)
		return
	}

	resp := ProfileResponse{
		DisplayName: profile.DisplayName,
		Followers:   profile.Followers,
		ImageURL:    profile.ImageURL,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *SpotifyHandler) TopTracks(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "limit must be a number", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	tracks, err := h.spotifyService.TopTracks(r.Context(), accountID, limit)
	if err != nil {
		writeSpotifyError(w, err)
		return
	}

	resp := make([]TopTrackResponse, 0, len(tracks))
	for _, track := range tracks {
		resp = append(resp, TopTrackResponse{
			Title:         track.Title,
			Artists:       track.Artists,
			AlbumImageURL: track.AlbumImageURL,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeSpotifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotLinked), errors.Is(err, domain.ErrNoRefreshToken):
		http.Error(w, "Spotify account not linked", http.StatusConflict)
	case errors.Is(err, domain.ErrUpstream):
		http.Error(w, "Spotify request failed", http.StatusBadGateway)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
