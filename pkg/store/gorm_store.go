package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"falim/pkg/domain"
)

const migrateLockID int64 = 84118411

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations under an advisory lock
// so concurrent replicas do not race on schema changes.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&UserModel{}, &ReadingModel{}, &DailyHoroscopeModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// Ping reports whether the database is reachable.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "password_hash", "is_verified", "verification_token",
			"verification_expires_at", "terms_accepted", "terms_accepted_at",
			"favorite_zodiac_sign", "updated_at",
		}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByVerificationToken resolves the pending-verification user holding
// the token.
func (s *GormStore) GetUserByVerificationToken(token string) (domain.User, bool, error) {
	if token == "" {
		return domain.User{}, false, nil
	}
	var model UserModel
	if err := s.db.Where("verification_token = ?", token).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// SaveReading persists one divination result. Readings are append-only.
func (s *GormStore) SaveReading(r domain.Reading) error {
	model, err := readingToModel(r)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// GetReading retrieves one reading.
func (s *GormStore) GetReading(id string) (domain.Reading, bool, error) {
	var model ReadingModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Reading{}, false, nil
		}
		return domain.Reading{}, false, err
	}
	r, err := readingFromModel(model)
	if err != nil {
		return domain.Reading{}, false, err
	}
	return r, true, nil
}

// ListReadingsBySession returns one session's readings for the owning user,
// newest first. An empty readingType means all types.
func (s *GormStore) ListReadingsBySession(userID, sessionID string, readingType domain.ReadingType) ([]domain.Reading, error) {
	tx := s.db.Where("user_id = ? AND session_id = ?", userID, sessionID).Order("created_at DESC")
	if readingType != "" {
		tx = tx.Where("type = ?", string(readingType))
	}
	var models []ReadingModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Reading, 0, len(models))
	for _, m := range models {
		r, err := readingFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}

// PutDailyHoroscope inserts the row if its (sign, date, language) key is
// absent. Returns whether this call inserted it; an existing row wins.
func (s *GormStore) PutDailyHoroscope(h domain.DailyHoroscope) (bool, error) {
	model := DailyHoroscopeModel{
		ID:        uuid.NewString(),
		Sign:      h.Sign,
		Date:      h.Date,
		Language:  h.Language,
		Content:   h.Content,
		CreatedAt: h.CreatedAt,
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	tx := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sign"}, {Name: "date"}, {Name: "language"}},
		DoNothing: true,
	}).Create(&model)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// GetDailyHoroscope returns the cached content for one key.
func (s *GormStore) GetDailyHoroscope(sign, date, language string) (domain.DailyHoroscope, bool, error) {
	var model DailyHoroscopeModel
	err := s.db.Where("sign = ? AND date = ? AND language = ?", sign, date, language).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.DailyHoroscope{}, false, nil
		}
		return domain.DailyHoroscope{}, false, err
	}
	return horoscopeFromModel(model), true, nil
}

// ListDailyHoroscopes returns recent horoscopes for one sign, newest date
// first.
func (s *GormStore) ListDailyHoroscopes(sign, language string, limit int) ([]domain.DailyHoroscope, error) {
	tx := s.db.Where("sign = ? AND language = ?", sign, language).Order("date DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var models []DailyHoroscopeModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.DailyHoroscope, 0, len(models))
	for _, m := range models {
		res = append(res, horoscopeFromModel(m))
	}
	return res, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:                    u.ID,
		Email:                 u.Email,
		PasswordHash:          u.PasswordHash,
		IsVerified:            u.IsVerified,
		VerificationToken:     u.VerificationToken,
		VerificationExpiresAt: u.VerificationExpiresAt,
		TermsAccepted:         u.TermsAccepted,
		TermsAcceptedAt:       u.TermsAcceptedAt,
		FavoriteZodiacSign:    u.FavoriteZodiacSign,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:                    m.ID,
		Email:                 m.Email,
		PasswordHash:          m.PasswordHash,
		IsVerified:            m.IsVerified,
		VerificationToken:     m.VerificationToken,
		VerificationExpiresAt: m.VerificationExpiresAt,
		TermsAccepted:         m.TermsAccepted,
		TermsAcceptedAt:       m.TermsAcceptedAt,
		FavoriteZodiacSign:    m.FavoriteZodiacSign,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

func readingToModel(r domain.Reading) (ReadingModel, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return ReadingModel{}, fmt.Errorf("marshal reading payload: %w", err)
	}
	return ReadingModel{
		ID:        r.ID,
		UserID:    r.UserID,
		SessionID: r.SessionID,
		Type:      string(r.Type),
		ImageKey:  r.ImageKey,
		Payload:   payload,
		CreatedAt: r.Timestamp,
	}, nil
}

func readingFromModel(m ReadingModel) (domain.Reading, error) {
	var r domain.Reading
	if err := json.Unmarshal(m.Payload, &r); err != nil {
		return domain.Reading{}, fmt.Errorf("unmarshal reading payload: %w", err)
	}
	r.ID = m.ID
	r.UserID = m.UserID
	r.SessionID = m.SessionID
	r.Type = domain.ReadingType(m.Type)
	r.ImageKey = m.ImageKey
	r.Timestamp = m.CreatedAt
	return r, nil
}

func horoscopeFromModel(m DailyHoroscopeModel) domain.DailyHoroscope {
	return domain.DailyHoroscope{
		Sign:      m.Sign,
		Date:      m.Date,
		Language:  m.Language,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
