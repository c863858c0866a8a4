package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type MovieModel struct {
	ID        string `gorm:"primaryKey"`
	Title     string `gorm:"not null;index"`
	Genres    datatypes.JSONSlice[string]
	Year      string
	Rating    float64        `gorm:"index"`
	Poster    string
	Extra     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

type ReviewModel struct {
	ID        string `gorm:"primaryKey"`
	MovieID   string `gorm:"not null;index"`
	AuthorID  string `gorm:"not null"`
	Rating    float64
	Body      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	DisplayName  string
	PasswordHash string
	Preferences  datatypes.JSON `gorm:"type:jsonb"`
	DeviceToken  string
	Claims       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time
	LastLoginAt  time.Time
}

type WatchlistModel struct {
	UserID    string `gorm:"primaryKey"`
	MovieIDs  datatypes.JSONSlice[string]
	UpdatedAt time.Time
}

type PreferenceModel struct {
	UserID    string         `gorm:"primaryKey"`
	Data      datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt time.Time
}
