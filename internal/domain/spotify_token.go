package domain

import "time"

// ProviderTokenSet holds a user's Spotify tokens encrypted at rest. The
// refresh token must be recoverable in plaintext to be replayed to the
// provider, so it is encrypted rather than hashed.
type ProviderTokenSet struct {
	ID                   uint64     `json:"id" gorm:"primaryKey;autoIncrement"`
	AccountID            uint64     `json:"accountId" gorm:"uniqueIndex;not null"`
	RefreshTokenEnc      string     `json:"-"`
	AccessTokenEnc       string     `json:"-"`
	AccessTokenExpiresAt *time.Time `json:"accessTokenExpiresAt"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}
