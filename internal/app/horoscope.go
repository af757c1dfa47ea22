package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"falim/pkg/astro"
	"falim/pkg/domain"
)

const horoscopeSystemPrompt = "Sen günlük burç yorumları yazan bir astrologsun. " +
	"Aşk, kariyer ve sağlık başlıklarına kısaca değinen, motive edici, 3-4 " +
	"cümlelik bir günlük yorum yaz."

// FallbackHoroscope is written when generation fails for a sign so the day
// never stays empty.
const FallbackHoroscope = "Bugün yıldızlar sizin için yeni fırsatlar hazırlıyor. " +
	"İçgüdülerinize güvenin ve adımlarınızı kararlılıkla atın."

// HoroscopeForSign returns today's cached horoscope for one sign, generating
// and caching it on a miss. Concurrent misses for the same key are deduped.
func (a *App) HoroscopeForSign(ctx context.Context, signKey, language string) (domain.DailyHoroscope, error) {
	signKey = strings.TrimSpace(strings.ToLower(signKey))
	if !astro.IsValidSign(signKey) {
		return domain.DailyHoroscope{}, fmt.Errorf("%w: geçersiz burç", ErrValidation)
	}
	language = normalizeLanguage(language)
	date := a.now().Format("2006-01-02")

	if h, ok, err := a.store.GetDailyHoroscope(signKey, date, language); err != nil {
		return domain.DailyHoroscope{}, fmt.Errorf("%w: fetch horoscope: %v", ErrPersistence, err)
	} else if ok {
		return h, nil
	}

	key := signKey + "|" + date + "|" + language
	result, err, _ := a.horoscopeGroup.Do(key, func() (any, error) {
		// Re-check under the flight lock; another replica may have won.
		if h, ok, err := a.store.GetDailyHoroscope(signKey, date, language); err != nil {
			return nil, fmt.Errorf("%w: fetch horoscope: %v", ErrPersistence, err)
		} else if ok {
			return h, nil
		}
		content, err := a.generateHoroscope(ctx, signKey, date, language)
		if err != nil {
			return nil, err
		}
		h := domain.DailyHoroscope{
			Sign:      signKey,
			Date:      date,
			Language:  language,
			Content:   content,
			CreatedAt: a.now(),
		}
		if _, err := a.store.PutDailyHoroscope(h); err != nil {
			return nil, fmt.Errorf("%w: save horoscope: %v", ErrPersistence, err)
		}
		// The first writer wins; read back whatever landed.
		if stored, ok, err := a.store.GetDailyHoroscope(signKey, date, language); err == nil && ok {
			return stored, nil
		}
		return h, nil
	})
	if err != nil {
		return domain.DailyHoroscope{}, err
	}
	return result.(domain.DailyHoroscope), nil
}

// HoroscopesToday returns all twelve signs for today, generating any that
// are missing.
func (a *App) HoroscopesToday(ctx context.Context, language string) ([]domain.DailyHoroscope, error) {
	out := make([]domain.DailyHoroscope, 0, len(astro.SignKeys))
	for _, signKey := range astro.SignKeys {
		h, err := a.HoroscopeForSign(ctx, signKey, language)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// HoroscopeHistory returns recent horoscopes for one sign, newest first.
func (a *App) HoroscopeHistory(signKey, language string, limit int) ([]domain.DailyHoroscope, error) {
	signKey = strings.TrimSpace(strings.ToLower(signKey))
	if !astro.IsValidSign(signKey) {
		return nil, fmt.Errorf("%w: geçersiz burç", ErrValidation)
	}
	if limit <= 0 || limit > 30 {
		limit = 7
	}
	history, err := a.store.ListDailyHoroscopes(signKey, normalizeLanguage(language), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list horoscopes: %v", ErrPersistence, err)
	}
	return history, nil
}

// FillHoroscopes generates every missing (sign, date, language) row for one
// date. Per-sign generation failures are replaced with the fallback sentence
// so the set always completes. pause spaces out successive AI calls; the
// scheduled job uses it to stay under provider rate limits. Returns how many
// rows this call wrote.
func (a *App) FillHoroscopes(ctx context.Context, date, language string, pause time.Duration) (int, error) {
	if date == "" {
		date = a.now().Format("2006-01-02")
	}
	language = normalizeLanguage(language)
	generated := 0
	for _, signKey := range astro.SignKeys {
		if _, ok, err := a.store.GetDailyHoroscope(signKey, date, language); err != nil {
			return generated, fmt.Errorf("%w: fetch horoscope: %v", ErrPersistence, err)
		} else if ok {
			continue
		}
		if generated > 0 && pause > 0 {
			select {
			case <-ctx.Done():
				return generated, ctx.Err()
			case <-time.After(pause):
			}
		}
		content, err := a.generateHoroscope(ctx, signKey, date, language)
		if err != nil {
			slog.Warn("generate horoscope", "sign", signKey, "date", date, "error", err)
			content = FallbackHoroscope
		}
		inserted, err := a.store.PutDailyHoroscope(domain.DailyHoroscope{
			Sign:      signKey,
			Date:      date,
			Language:  language,
			Content:   content,
			CreatedAt: a.now(),
		})
		if err != nil {
			return generated, fmt.Errorf("%w: save horoscope: %v", ErrPersistence, err)
		}
		if inserted {
			generated++
		}
	}
	return generated, nil
}

func (a *App) generateHoroscope(ctx context.Context, signKey, date, language string) (string, error) {
	sign, _ := astro.Sign(signKey)
	var prompt string
	if language == "tr" {
		prompt = fmt.Sprintf("%s tarihi için %s burcunun günlük yorumunu yaz.", date, sign.Name)
	} else {
		prompt = fmt.Sprintf("Write the daily horoscope for %s on %s in language %q.", signKey, date, language)
	}
	content, err := a.text.GenerateText(ctx, horoscopeSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIAnalysisFailed, err)
	}
	return strings.TrimSpace(content), nil
}

func normalizeLanguage(language string) string {
	language = strings.TrimSpace(strings.ToLower(language))
	if language == "" {
		return "tr"
	}
	return language
}
