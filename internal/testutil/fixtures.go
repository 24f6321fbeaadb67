package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Rijass/Spotify-Stats/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AccountBuilder creates test accounts with a builder pattern
type AccountBuilder struct {
	username string
	email    string
	password string
}

// NewAccountBuilder creates a new AccountBuilder with default values
func NewAccountBuilder() *AccountBuilder {
	suffix := uuid.New().String()[:8]
	return &AccountBuilder{
		username: fmt.Sprintf("testuser_%s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "testpassword123",
	}
}

// WithUsername sets the username
func (b *AccountBuilder) WithUsername(username string) *AccountBuilder {
	b.username = username
	return b
}

// WithEmail sets the email
func (b *AccountBuilder) WithEmail(email string) *AccountBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *AccountBuilder) WithPassword(password string) *AccountBuilder {
	b.password = password
	return b
}

// Build creates the account in the database and returns it with the raw password
func (b *AccountBuilder) Build(t *testing.T, db *gorm.DB) (*domain.Account, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	account := &domain.Account{
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	return account, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	SessionToken string `json:"sessionToken"`
}

// BuildAndAuthenticate creates an account via API and returns it with a session token
func (b *AccountBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.Account, string) {
	t.Helper()

	reqBody := map[string]string{
		"username": b.username,
		"email":    b.email,
		"password": b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/users"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	account := &domain.Account{
		ID:       authResp.User.ID,
		Username: authResp.User.Username,
		Email:    authResp.User.Email,
	}

	return account, authResp.SessionToken
}

// SongBuilder creates test songs
type SongBuilder struct {
	providerTrackID string
	artist          string
	title           string
}

// NewSongBuilder creates a new SongBuilder with default values
func NewSongBuilder() *SongBuilder {
	suffix := uuid.New().String()[:8]
	return &SongBuilder{
		providerTrackID: fmt.Sprintf("track_%s", suffix),
		artist:          fmt.Sprintf("Artist %s", suffix),
		title:           fmt.Sprintf("Title %s", suffix),
	}
}

// WithProviderTrackID sets the provider track id
func (b *SongBuilder) WithProviderTrackID(id string) *SongBuilder {
	b.providerTrackID = id
	return b
}

// WithArtist sets the artist
func (b *SongBuilder) WithArtist(artist string) *SongBuilder {
	b.artist = artist
	return b
}

// WithTitle sets the title
func (b *SongBuilder) WithTitle(title string) *SongBuilder {
	b.title = title
	return b
}

// Build creates the song in the database
func (b *SongBuilder) Build(t *testing.T, db *gorm.DB) *domain.Song {
	t.Helper()

	song := &domain.Song{
		ProviderTrackID: b.providerTrackID,
		Artist:          b.artist,
		Title:           b.title,
	}

	if err := db.Create(song).Error; err != nil {
		t.Fatalf("failed to create song: %v", err)
	}

	return song
}

// SeedChartSnapshot creates a snapshot for the given day with entryCount
// entries backed by fresh songs
func SeedChartSnapshot(t *testing.T, db *gorm.DB, date time.Time, entryCount int) *domain.ChartSnapshot {
	t.Helper()

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	snapshot := &domain.ChartSnapshot{
		ChartKey:  domain.GlobalTop50Key,
		ChartDate: datatypes.Date(day),
	}
	if err := db.Create(snapshot).Error; err != nil {
		t.Fatalf("failed to create chart snapshot: %v", err)
	}

	for i := 0; i < entryCount; i++ {
		song := NewSongBuilder().Build(t, db)
		entry := &domain.ChartEntry{
			SnapshotID: snapshot.ID,
			Position:   i + 1,
			SongID:     song.ID,
		}
		if err := db.Create(entry).Error; err != nil {
			t.Fatalf("failed to create chart entry: %v", err)
		}
	}

	return snapshot
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
