package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID                    string `gorm:"primaryKey"`
	Email                 string `gorm:"uniqueIndex;not null"`
	PasswordHash          string `gorm:"not null"`
	IsVerified            bool
	VerificationToken     string `gorm:"index"`
	VerificationExpiresAt *time.Time
	TermsAccepted         bool
	TermsAcceptedAt       *time.Time
	FavoriteZodiacSign    string
	CreatedAt             time.Time `gorm:"not null"`
	UpdatedAt             time.Time
}

// ReadingModel keeps the queryable columns flat and the type-specific result
// in a jsonb payload. The raw image never lands here; only its storage key.
type ReadingModel struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"not null;index"`
	SessionID string `gorm:"index"`
	Type      string `gorm:"not null;index"`
	ImageKey  string
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null;index"`
}

type DailyHoroscopeModel struct {
	ID        string    `gorm:"primaryKey"`
	Sign      string    `gorm:"not null;uniqueIndex:idx_daily_horoscope_key"`
	Date      string    `gorm:"not null;uniqueIndex:idx_daily_horoscope_key"`
	Language  string    `gorm:"not null;uniqueIndex:idx_daily_horoscope_key"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
