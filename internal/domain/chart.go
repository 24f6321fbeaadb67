package domain

import (
	"time"

	"gorm.io/datatypes"
)

const GlobalTop50Key = "global-top-50"

type ChartSnapshot struct {
	ID        uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	ChartKey  string         `json:"chartKey" gorm:"uniqueIndex:idx_chart_key_date;not null"`
	ChartDate datatypes.Date `json:"chartDate" gorm:"uniqueIndex:idx_chart_key_date;not null"`
	CreatedAt time.Time      `json:"createdAt"`

	Entries []ChartEntry `json:"entries,omitempty" gorm:"foreignKey:SnapshotID"`
}

type ChartEntry struct {
	ID         uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	SnapshotID uint64 `json:"snapshotId" gorm:"uniqueIndex:idx_snapshot_position;not null"`
	Position   int    `json:"position" gorm:"uniqueIndex:idx_snapshot_position;not null"`
	SongID     uint64 `json:"songId" gorm:"not null"`

	Song *Song `json:"song,omitempty" gorm:"foreignKey:SongID"`
}

// Song is upserted by provider track id; artist and title are overwritten on
// re-ingestion because catalog metadata may change.
type Song struct {
	ID              uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ProviderTrackID string    `json:"providerTrackId" gorm:"uniqueIndex;not null"`
	Artist          string    `json:"artist"`
	Title           string    `json:"title"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
