package app

import (
	"context"
	"fmt"
	"strings"

	"falim/internal/util"
	"falim/pkg/astro"
	"falim/pkg/domain"
)

const astrologySystemPrompt = "Sen deneyimli bir astrologsun. Sana verilen doğum " +
	"haritası özetini kullanarak kişilik, aşk, kariyer ve genel yaşam üzerine " +
	"akıcı bir yorum yaz. Türkçe yanıt ver."

// AstrologyReading computes the chart from the birth data and interprets it.
func (a *App) AstrologyReading(ctx context.Context, user domain.User, birthDate, birthTime, birthPlace, sessionID string) (domain.Reading, error) {
	birthDate = strings.TrimSpace(birthDate)
	if birthDate == "" {
		return domain.Reading{}, fmt.Errorf("%w: doğum tarihi gereklidir", ErrValidation)
	}
	signKey, err := astro.SignForDate(birthDate)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("%w: doğum tarihi YYYY-AA-GG biçiminde olmalıdır", ErrValidation)
	}
	chart, err := astro.BirthChart(birthDate, birthTime)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("%w: doğum tarihi YYYY-AA-GG biçiminde olmalıdır", ErrValidation)
	}
	sign, _ := astro.Sign(signKey)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Burç: %s (%s), element %s, yönetici gezegen %s.\n",
		sign.Name, sign.Dates, sign.Element, sign.RulingPlanet)
	fmt.Fprintf(&sb, "Yükselen: %s.\n", chart.Ascendant)
	if birthPlace != "" {
		fmt.Fprintf(&sb, "Doğum yeri: %s.\n", birthPlace)
	}
	sb.WriteString("Gezegen konumları:\n")
	for _, planet := range []string{"sun", "moon", "mercury", "venus", "mars", "jupiter"} {
		if pos, ok := chart.Planets[planet]; ok {
			fmt.Fprintf(&sb, "- %s: %s burcunda, %d. evde\n", planet, pos.Sign, pos.House)
		}
	}
	sb.WriteString("Bu haritayı yorumla.")

	interpretation, err := a.text.GenerateText(ctx, astrologySystemPrompt, sb.String())
	if err != nil {
		return domain.Reading{}, fmt.Errorf("%w: %v", ErrAIAnalysisFailed, err)
	}
	reading := domain.Reading{
		ID:             util.NewID(),
		SessionID:      sessionID,
		UserID:         user.ID,
		Type:           domain.ReadingAstrology,
		Timestamp:      a.now(),
		BirthDate:      birthDate,
		BirthTime:      strings.TrimSpace(birthTime),
		BirthPlace:     strings.TrimSpace(birthPlace),
		ZodiacSign:     signKey,
		BirthChart:     chart,
		Interpretation: interpretation,
	}
	if err := a.persistReading(ctx, &reading, nil, ""); err != nil {
		return domain.Reading{}, err
	}
	return reading, nil
}
