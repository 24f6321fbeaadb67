package domain

import "time"

type CredentialPurpose string

const (
	PurposeSession      CredentialPurpose = "session"
	PurposeSpotifyState CredentialPurpose = "spotify_state"
)

// SessionCredential stores only the bcrypt hash of an opaque token. The raw
// token is returned to the caller exactly once at issuance and is not
// recoverable from the database.
type SessionCredential struct {
	ID        uint64            `json:"id" gorm:"primaryKey;autoIncrement"`
	AccountID uint64            `json:"accountId" gorm:"index;not null"`
	TokenHash string            `json:"-" gorm:"not null"`
	Purpose   CredentialPurpose `json:"purpose" gorm:"not null;default:'session'"`
	ExpiresAt time.Time         `json:"expiresAt" gorm:"index;not null"`
	CreatedAt time.Time         `json:"createdAt"`
}

func (c *SessionCredential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
