package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rijass/Spotify-Stats/internal/domain"
)

var errNotFound = errors.New("resource not found")

// APIClient performs authenticated calls against the Spotify Web API. Callers
// supply a valid access token per request; token lifecycle lives elsewhere.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type artist struct {
	Name string `json:"name"`
}

type image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []artist `json:"artists"`
	Album   struct {
		Name   string  `json:"name"`
		Images []image `json:"images"`
	} `json:"album"`
}

type playlistTracksResponse struct {
	Items []struct {
		Track *track `json:"track"`
	} `json:"items"`
}

// TrackItem is one playlist entry, flattened for ingestion.
type TrackItem struct {
	ProviderTrackID string
	Artist          string
	Title           string
}

// PlaylistTracks fetches a single page of playlist items. Items with no track
// id (local files, removed tracks) are skipped.
func (c *APIClient) PlaylistTracks(ctx context.Context, accessToken, playlistID string, limit int) ([]TrackItem, error) {
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d", playlistID, limit)

	var response playlistTracksResponse
	if err := c.get(ctx, accessToken, endpoint, &response); err != nil {
		if errors.Is(err, errNotFound) {
			// A missing playlist almost always means a misconfigured id.
			return nil, fmt.Errorf("%w: playlist %s", domain.ErrPlaylistNotFound, playlistID)
		}
		return nil, err
	}

	items := make([]TrackItem, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Track == nil || item.Track.ID == "" {
			continue
		}
		names := make([]string, 0, len(item.Track.Artists))
		for _, a := range item.Track.Artists {
			names = append(names, a.Name)
		}
		items = append(items, TrackItem{
			ProviderTrackID: item.Track.ID,
			Artist:          strings.Join(names, ", "),
			Title:           item.Track.Name,
		})
	}
	return items, nil
}

// Profile is the subset of the /me payload the frontend displays.
type Profile struct {
	DisplayName string
	Followers   int
	ImageURL    string
}

type profileResponse struct {
	DisplayName string `json:"display_name"`
	Followers   struct {
		Total int `json:"total"`
	} `json:"followers"`
	Images []image `json:"images"`
}

func (c *APIClient) Me(ctx context.Context, accessToken string) (*Profile, error) {
	var response profileResponse
	if err := c.get(ctx, accessToken, "/me", &response); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
		}
		return nil, err
	}

	profile := &Profile{
		DisplayName: response.DisplayName,
		Followers:   response.Followers.Total,
	}
	if len(response.Images) > 0 {
		profile.ImageURL = response.Images[0].URL
	}
	return profile, nil
}

// TopTrack is one entry of the user's personal top-tracks ranking.
type TopTrack struct {
	Title         string
	Artists       []string
	AlbumImageURL string
}

type topTracksResponse struct {
	Items []track `json:"items"`
}

func (c *APIClient) TopTracks(ctx context.Context, accessToken string, limit int) ([]TopTrack, error) {
	endpoint := fmt.Sprintf("/me/top/tracks?limit=%d&time_range=medium_term", limit)

	var response topTracksResponse
	if err := c.get(ctx, accessToken, endpoint, &response); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
		}
		return nil, err
	}

	tracks := make([]TopTrack, 0, len(response.Items))
	for _, item := range response.Items {
		top := TopTrack{Title: item.Name}
		for _, a := range item.Artists {
			top.Artists = append(top.Artists, a.Name)
		}
		if len(item.Album.Images) > 0 {
			top.AlbumImageURL = item.Album.Images[0].URL
		}
		tracks = append(tracks, top)
	}
	return tracks, nil
}

func (c *APIClient) get(ctx context.Context, accessToken, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", errNotFound, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d on %s", domain.ErrUpstream, resp.StatusCode, endpoint)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
		}
	}
	return nil
}
