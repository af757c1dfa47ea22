package domain

import "time"

// ReadingType identifies one of the five divination flows.
type ReadingType string

const (
	ReadingCoffee    ReadingType = "coffee"
	ReadingTarot     ReadingType = "tarot"
	ReadingPalm      ReadingType = "palm"
	ReadingAstrology ReadingType = "astrology"
	ReadingFalname   ReadingType = "falname"
)

type HandType string

const (
	HandLeft  HandType = "left"
	HandRight HandType = "right"
)

type User struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	PasswordHash          string     `json:"-"`
	IsVerified            bool       `json:"is_verified"`
	VerificationToken     string     `json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`
	TermsAccepted         bool       `json:"terms_accepted"`
	TermsAcceptedAt       *time.Time `json:"terms_accepted_at,omitempty"`
	FavoriteZodiacSign    string     `json:"favorite_zodiac_sign,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Reading is one persisted divination result. The type-specific fields are
// populated per Type and omitted from JSON otherwise. Readings are immutable
// once created.
type Reading struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	UserID    string      `json:"-"`
	Type      ReadingType `json:"-"`
	Timestamp time.Time   `json:"timestamp"`

	// coffee / palm
	ImageBase64 string `json:"image_base64,omitempty"`
	ImageKey    string `json:"-"`
	// ImageURL is a short-lived link to an offloaded image payload. Derived
	// at read time, never persisted.
	ImageURL        string   `json:"image_url,omitempty"`
	HandType        HandType `json:"hand_type,omitempty"`
	SymbolsFound    []string `json:"symbols_found,omitempty"`
	LinesFound      []string `json:"lines_found,omitempty"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`

	// tarot
	SpreadType string      `json:"spread_type,omitempty"`
	CardsDrawn []DrawnCard `json:"cards_drawn,omitempty"`

	// astrology
	BirthDate  string      `json:"birth_date,omitempty"`
	BirthTime  string      `json:"birth_time,omitempty"`
	BirthPlace string      `json:"birth_place,omitempty"`
	ZodiacSign string      `json:"zodiac_sign,omitempty"`
	BirthChart *BirthChart `json:"birth_chart,omitempty"`

	// falname
	Intention   string `json:"intention,omitempty"`
	VerseOrPoem string `json:"verse_or_poem,omitempty"`
	Advice      string `json:"advice,omitempty"`

	Interpretation string `json:"interpretation"`
}

// DrawnCard is one card of a spread with its assigned position and
// orientation.
type DrawnCard struct {
	Card     TarotCard `json:"card"`
	Position string    `json:"position"`
	Reversed bool      `json:"reversed"`
}

// TarotCard is static reference data, loaded once at process start.
type TarotCard struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	NameTR          string `json:"name_tr"`
	Suit            string `json:"suit"`
	MeaningUpright  string `json:"meaning_upright"`
	MeaningReversed string `json:"meaning_reversed"`
	Description     string `json:"description"`
	Image           string `json:"image"`
}

// ZodiacSign is static reference data keyed by the lowercase sign key.
type ZodiacSign struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Dates        string `json:"dates"`
	Element      string `json:"element"`
	RulingPlanet string `json:"ruling_planet"`
}

// BirthChart is a synthetic, non-astronomical summary derived
// deterministically from birth date and time. It feeds interpretation text
// only.
type BirthChart struct {
	Houses    map[string]HousePosition  `json:"houses"`
	Planets   map[string]PlanetPosition `json:"planets"`
	Ascendant string                    `json:"ascendant"`
}

type HousePosition struct {
	Sign   string  `json:"sign"`
	Degree float64 `json:"degree"`
}

type PlanetPosition struct {
	Sign   string  `json:"sign"`
	House  int     `json:"house"`
	Degree float64 `json:"degree"`
}

// DailyHoroscope is cached interpretation content with a
// (sign, date, language) natural key. Rows are written at most once per key.
type DailyHoroscope struct {
	Sign      string    `json:"sign"`
	Date      string    `json:"date"`
	Language  string    `json:"language"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
