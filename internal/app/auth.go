package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	mailer "falim/internal/mail"
	"falim/internal/util"
	"falim/pkg/astro"
	"falim/pkg/auth"
	"falim/pkg/domain"
)

// Register creates an unverified account and dispatches the verification
// email in the background.
func (a *App) Register(ctx context.Context, email, password string, acceptTerms bool) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: e-posta ve şifre gereklidir", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, fmt.Errorf("%w: geçersiz e-posta adresi", ErrValidation)
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, fmt.Errorf("%w: şifre en az 6 karakter olmalıdır", ErrValidation)
	}
	if !acceptTerms {
		return domain.User{}, ErrTermsNotAccepted
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: check email: %v", ErrPersistence, err)
	}
	if exists {
		return domain.User{}, ErrEmailExists
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := a.now()
	expires := now.Add(a.verificationTTL)
	user := domain.User{
		ID:                    util.NewID(),
		Email:                 email,
		PasswordHash:          passwordHash,
		IsVerified:            false,
		VerificationToken:     auth.NewVerificationToken(),
		VerificationExpiresAt: &expires,
		TermsAccepted:         true,
		TermsAcceptedAt:       &now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("%w: save user: %v", ErrPersistence, err)
	}
	a.dispatchVerification(user)
	return user, nil
}

// Login validates credentials and issues an access token. Unverified
// accounts cannot log in.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("%w: fetch user: %v", ErrPersistence, err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if !user.IsVerified {
		return domain.User{}, "", ErrNotVerified
	}
	token, err := a.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// VerifyEmail consumes a verification token. The token is single-use and
// rejected after its expiry timestamp.
func (a *App) VerifyEmail(token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	user, ok, err := a.store.GetUserByVerificationToken(token)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: fetch user: %v", ErrPersistence, err)
	}
	if !ok {
		return domain.User{}, fmt.Errorf("%w: geçersiz doğrulama bağlantısı", ErrNotFound)
	}
	if user.VerificationExpiresAt != nil && a.now().After(*user.VerificationExpiresAt) {
		return domain.User{}, fmt.Errorf("%w: doğrulama bağlantısının süresi dolmuş", ErrValidation)
	}
	user.IsVerified = true
	user.VerificationToken = ""
	user.VerificationExpiresAt = nil
	user.UpdatedAt = a.now()
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("%w: save user: %v", ErrPersistence, err)
	}
	return user, nil
}

// ResendVerification authenticates by email and password, rotates the
// verification token, and re-sends the email. Verified accounts have nothing
// to resend.
func (a *App) ResendVerification(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return fmt.Errorf("%w: e-posta ve şifre gereklidir", ErrValidation)
	}
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("%w: fetch user: %v", ErrPersistence, err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if user.IsVerified {
		return fmt.Errorf("%w: e-posta zaten doğrulanmış", ErrValidation)
	}
	expires := a.now().Add(a.verificationTTL)
	user.VerificationToken = auth.NewVerificationToken()
	user.VerificationExpiresAt = &expires
	user.UpdatedAt = a.now()
	if err := a.store.SaveUser(user); err != nil {
		return fmt.Errorf("%w: save user: %v", ErrPersistence, err)
	}
	a.dispatchVerification(user)
	return nil
}

// UserFromToken resolves a user from an access token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return domain.User{}, false
	}
	user, ok, err := a.store.GetUserByID(claims.Subject)
	if err != nil || !ok {
		return domain.User{}, false
	}
	return user, true
}

// UpdateProfile changes the user's favorite zodiac sign.
func (a *App) UpdateProfile(user domain.User, favoriteSign string) (domain.User, error) {
	favoriteSign = strings.TrimSpace(strings.ToLower(favoriteSign))
	if favoriteSign != "" && !astro.IsValidSign(favoriteSign) {
		return domain.User{}, fmt.Errorf("%w: geçersiz burç", ErrValidation)
	}
	user.FavoriteZodiacSign = favoriteSign
	user.UpdatedAt = a.now()
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("%w: save user: %v", ErrPersistence, err)
	}
	return user, nil
}

// dispatchVerification sends the verification email without blocking the
// request. Failures are logged; the account stays registered either way.
func (a *App) dispatchVerification(user domain.User) {
	if a.mailer == nil {
		slog.Warn("mailer not configured, skipping verification email", "user_id", user.ID)
		return
	}
	subject, body := mailer.VerificationEmail(a.verifyBaseURL, user.VerificationToken)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := a.mailer.Send(ctx, user.Email, subject, body); err != nil {
			slog.Error("send verification email", "user_id", user.ID, "error", err)
		}
	}()
}
