package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"falim/internal/util"
	"falim/pkg/domain"
	"falim/pkg/tarot"
)

const (
	coffeeSystemPrompt = "Sen deneyimli bir Türk kahve falcısısın. Fincandaki telve " +
		"şekillerini incele ve gördüğün sembolleri tek tek isimlendir. Her sembolü " +
		"'Sembol: <isim>' satırıyla belirt, ardından sıcak ve umut veren bir genel " +
		"yorum yaz. Türkçe yanıt ver."
	palmSystemPrompt = "Sen deneyimli bir el falı uzmanısın. Avuç içindeki kalp " +
		"çizgisi, akıl çizgisi, yaşam çizgisi ve kader çizgisini incele, " +
		"gördüklerini bu isimlerle an ve detaylı bir yorum yaz. Türkçe yanıt ver."
	tarotSystemPrompt = "Sen bilge bir tarot yorumcususun. Sana verilen açılımdaki " +
		"kartları pozisyonlarına ve yönlerine göre bütünlüklü bir hikaye olarak " +
		"yorumla. Türkçe yanıt ver."
	falnameSystemPrompt = "Sen Osmanlı geleneğinden gelen bir falname şeyhisin. " +
		"Niyet sahibine önce bir beyit söyle, sonra yorumla ve bir tavsiye ver. " +
		"Yanıtını tam olarak şu üç başlıkla yapılandır: BEYİT:, YORUM:, TAVSİYE:. " +
		"Türkçe yanıt ver."
)

const (
	coffeeConfidence = 0.85
	palmConfidence   = 0.80
)

// CoffeeReading analyzes a coffee cup photo and persists the result.
func (a *App) CoffeeReading(ctx context.Context, user domain.User, imageBase64, sessionID string) (domain.Reading, error) {
	image, mimeType, err := decodeImage(imageBase64)
	if err != nil {
		return domain.Reading{}, err
	}
	interpretation, err := a.vision.GenerateFromImage(ctx, coffeeSystemPrompt,
		"Bu kahve fincanındaki telve şekillerini yorumla.", mimeType, image)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("%w: %v", ErrAIAnalysisFailed, err)
	}
	conf := coffeeConfidence
	reading := domain.Reading{
		ID:              util.NewID(),
		SessionID:       sessionID,
		UserID:          user.ID,
		Type:            domain.ReadingCoffee,
		Timestamp:       a.now(),
		ImageBase64:     imageBase64,
		SymbolsFound:    extractSymbols(interpretation),
		ConfidenceScore: &conf,
		Interpretation:  interpretation,
	}
	if err := a.persistReading(ctx, &reading, image, mimeType); err != nil {
		return domain.Reading{}, err
	}
	return reading, nil
}

// PalmReading analyzes a palm photo for the given hand.
func (a *App) PalmReading(ctx context.Context, user domain.User, imageBase64, handType, sessionID string) (domain.Reading, error) {
	hand := domain.HandType(strings.ToLower(strings.TrimSpace(handType)))
	if hand != domain.HandLeft && hand != domain.HandRight {
		return domain.Reading{}, fmt.Errorf("%w: el tipi left veya right olmalıdır", ErrValidation)
	}
	image, mimeType, err := decodeImage(imageBase64)
	if err != nil {
		return domain.Reading{}, err
	}
	handLabel := "sol"
	if hand == domain.HandRight {
		handLabel = "sağ"
	}
	interpretation, err := a.vision.GenerateFromImage(ctx, palmSystemPrompt,
		fmt.Sprintf("Bu %s el avuç içi fotoğrafındaki çizgileri yorumla.", handLabel), mimeType, image)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("%w: %v", ErrAIAnalysisFailed, err)
	}
	conf := palmConfidence
	reading := domain.Reading{
		ID:              util.NewID(),
		SessionID:       sessionID,
		UserID:          user.ID,
		Type:            domain.ReadingPalm,
		Timestamp:       a.now(),
		ImageBase64:     imageBase64,
		HandType:        hand,
		LinesFound:      extractPalmLines(interpretation),
		ConfidenceScore: &conf,
		Interpretation:  interpretation,
	}
	if err := a.persistReading(ctx, &reading, image, mimeType); err != nil {
		return domain.Reading{}, err
	}
	return reading, nil
}

// TarotReading draws a spread and interprets it.
func (a *App) TarotReading(ctx context.Context, user domain.User, spreadType, sessionID string) (domain.Reading, error) {
	drawn, err := tarot.Draw(spreadType)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("%w: bilinmeyen açılım tipi", ErrValidation)
	}
	var sb strings.Builder
	sb.WriteString("Çekilen kartlar:\n")
	for _, dc := range drawn {
		orientation := "düz"
		meaning := dc.Card.MeaningUpright
		if dc.Reversed {
			orientation = "ters"
			meaning = dc.Card.MeaningReversed
		}
		fmt.Fprintf(&sb, "- %s: %s (%s, %s) - %s\n",
			dc.Position, dc.Card.NameTR, dc.Card.Name, orientation, meaning)
	}
	sb.WriteString("Bu açılımı yorumla.")
	interpretation, err := a.text.GenerateText(ctx, tarotSystemPrompt, sb.String())
	if err != nil {
		return domain.Reading{}, fmt.Errorf("%w: %v", ErrAIAnalysisFailed, err)
	}
	reading := domain.Reading{
		ID:             util.NewID(),
		SessionID:      sessionID,
		UserID:         user.ID,
		Type:           domain.ReadingTarot,
		Timestamp:      a.now(),
		SpreadType:     strings.ToLower(strings.TrimSpace(spreadType)),
		CardsDrawn:     drawn,
		Interpretation: interpretation,
	}
	if err := a.persistReading(ctx, &reading, nil, ""); err != nil {
		return domain.Reading{}, err
	}
	return reading, nil
}

// FalnameReading answers an intention in the classical falname format.
func (a *App) FalnameReading(ctx context.Context, user domain.User, intention, sessionID string) (domain.Reading, error) {
	intention = strings.TrimSpace(intention)
	if intention == "" {
		return domain.Reading{}, fmt.Errorf("%w: niyet gereklidir", ErrValidation)
	}
	answer, err := a.text.GenerateText(ctx, falnameSystemPrompt,
		fmt.Sprintf("Niyet: %s", intention))
	if err != nil {
		return domain.Reading{}, fmt.Errorf("%w: %v", ErrAIAnalysisFailed, err)
	}
	sections := splitFalname(answer)
	reading := domain.Reading{
		ID:             util.NewID(),
		SessionID:      sessionID,
		UserID:         user.ID,
		Type:           domain.ReadingFalname,
		Timestamp:      a.now(),
		Intention:      intention,
		VerseOrPoem:    sections.Verse,
		Advice:         sections.Advice,
		Interpretation: sections.Interpretation,
	}
	if err := a.persistReading(ctx, &reading, nil, ""); err != nil {
		return domain.Reading{}, err
	}
	return reading, nil
}

// SessionReadings returns one session's readings of a type, newest first.
// Readings are only visible to their owning user.
func (a *App) SessionReadings(ctx context.Context, user domain.User, readingType domain.ReadingType, sessionID string) ([]domain.Reading, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: oturum kimliği gereklidir", ErrValidation)
	}
	readings, err := a.store.ListReadingsBySession(user.ID, sessionID, readingType)
	if err != nil {
		return nil, fmt.Errorf("%w: list readings: %v", ErrPersistence, err)
	}
	for i := range readings {
		a.attachImageURL(ctx, &readings[i])
	}
	return readings, nil
}

// SessionReading returns one reading, scoped to the caller's user id, the
// session, and the reading type of the route it was requested through.
func (a *App) SessionReading(ctx context.Context, user domain.User, readingType domain.ReadingType, sessionID, readingID string) (domain.Reading, error) {
	reading, ok, err := a.store.GetReading(readingID)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("%w: fetch reading: %v", ErrPersistence, err)
	}
	if !ok || reading.UserID != user.ID || reading.SessionID != sessionID || reading.Type != readingType {
		return domain.Reading{}, fmt.Errorf("%w: fal bulunamadı", ErrNotFound)
	}
	a.attachImageURL(ctx, &reading)
	return reading, nil
}

// persistReading offloads large image payloads to object storage and saves
// the row. When no object key is produced the row keeps the raw echo, so a
// persisted reading always carries its input one way or the other.
func (a *App) persistReading(ctx context.Context, reading *domain.Reading, image []byte, mimeType string) error {
	if a.objects != nil && len(image) >= a.imageOffloadMin {
		ext := "jpg"
		if mimeType == "image/png" {
			ext = "png"
		}
		key := fmt.Sprintf("readings/%s/%s.%s", reading.UserID, reading.ID, ext)
		if err := a.objects.Put(ctx, key, bytes.NewReader(image), int64(len(image)), mimeType); err != nil {
			slog.Warn("offload reading image", "key", key, "error", err)
		} else {
			reading.ImageKey = key
		}
	}
	stored := *reading
	if stored.ImageKey != "" {
		stored.ImageBase64 = ""
	}
	if err := a.store.SaveReading(stored); err != nil {
		return fmt.Errorf("%w: save reading: %v", ErrPersistence, err)
	}
	return nil
}

// attachImageURL presigns a link for offloaded image payloads on reads.
func (a *App) attachImageURL(ctx context.Context, reading *domain.Reading) {
	if a.objects == nil || reading.ImageKey == "" {
		return
	}
	url, err := a.objects.PresignGet(ctx, reading.ImageKey, 15*time.Minute)
	if err != nil {
		slog.Warn("presign reading image", "key", reading.ImageKey, "error", err)
		return
	}
	reading.ImageURL = url
}

// decodeImage accepts raw base64 or a data URL and returns the image bytes
// with their MIME type.
func decodeImage(imageBase64 string) ([]byte, string, error) {
	imageBase64 = strings.TrimSpace(imageBase64)
	if imageBase64 == "" {
		return nil, "", fmt.Errorf("%w: fotoğraf gereklidir", ErrValidation)
	}
	mimeType := "image/jpeg"
	if strings.HasPrefix(imageBase64, "data:") {
		comma := strings.Index(imageBase64, ",")
		if comma < 0 {
			return nil, "", fmt.Errorf("%w: geçersiz fotoğraf verisi", ErrValidation)
		}
		header := imageBase64[len("data:"):comma]
		if semi := strings.Index(header, ";"); semi >= 0 {
			header = header[:semi]
		}
		if header != "" {
			mimeType = header
		}
		imageBase64 = imageBase64[comma+1:]
	}
	image, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return nil, "", fmt.Errorf("%w: geçersiz fotoğraf verisi", ErrValidation)
	}
	if len(image) == 0 {
		return nil, "", fmt.Errorf("%w: fotoğraf gereklidir", ErrValidation)
	}
	return image, mimeType, nil
}
