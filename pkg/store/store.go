package store

import (
	"context"

	"falim/pkg/domain"
)

// Store defines persistence for users, readings, and daily horoscopes.
// Readings are append-only; nothing here mutates or removes them.
type Store interface {
	Ping(ctx context.Context) error

	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	GetUserByVerificationToken(token string) (domain.User, bool, error)

	// readings
	SaveReading(domain.Reading) error
	GetReading(id string) (domain.Reading, bool, error)
	ListReadingsBySession(userID, sessionID string, readingType domain.ReadingType) ([]domain.Reading, error)

	// daily horoscopes
	PutDailyHoroscope(domain.DailyHoroscope) (bool, error)
	GetDailyHoroscope(sign, date, language string) (domain.DailyHoroscope, bool, error)
	ListDailyHoroscopes(sign, language string, limit int) ([]domain.DailyHoroscope, error)
}
