// Package astro provides the zodiac calendar and the synthetic birth chart.
// Everything in here is pure and deterministic; no ephemeris is involved.
package astro

import (
	"fmt"
	"strings"
	"time"

	"falim/pkg/domain"
)

// SignKeys lists the twelve sign keys in calendar order starting at aries.
var SignKeys = []string{
	"aries", "taurus", "gemini", "cancer", "leo", "virgo",
	"libra", "scorpio", "sagittarius", "capricorn", "aquarius", "pisces",
}

// signBoundary is the inclusive start of a sign within the year.
// The table below is an external contract; other components depend on it.
//
//	aries       3/21 - 4/19     libra       9/23 - 10/22
//	taurus      4/20 - 5/20     scorpio     10/23 - 11/21
//	gemini      5/21 - 6/20     sagittarius 11/22 - 12/21
//	cancer      6/21 - 7/22     capricorn   12/22 - 1/19
//	leo         7/23 - 8/22     aquarius    1/20 - 2/18
//	virgo       8/23 - 9/22     pisces      2/19 - 3/20
type signBoundary struct {
	month time.Month
	day   int
	key   string
}

var boundaries = []signBoundary{
	{time.January, 20, "aquarius"},
	{time.February, 19, "pisces"},
	{time.March, 21, "aries"},
	{time.April, 20, "taurus"},
	{time.May, 21, "gemini"},
	{time.June, 21, "cancer"},
	{time.July, 23, "leo"},
	{time.August, 23, "virgo"},
	{time.September, 23, "libra"},
	{time.October, 23, "scorpio"},
	{time.November, 22, "sagittarius"},
	{time.December, 22, "capricorn"},
}

// SignFor maps a birth month/day to its zodiac sign key.
func SignFor(month time.Month, day int) string {
	key := "capricorn" // before January 20
	for _, b := range boundaries {
		if month > b.month || (month == b.month && day >= b.day) {
			key = b.key
		}
	}
	return key
}

// SignForDate parses an ISO date (YYYY-MM-DD) and returns the sign key.
func SignForDate(date string) (string, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return "", fmt.Errorf("invalid birth date %q: %w", date, err)
	}
	return SignFor(t.Month(), t.Day()), nil
}

var signs = map[string]domain.ZodiacSign{
	"aries":       {Key: "aries", Name: "Koç", Dates: "21 Mart - 19 Nisan", Element: "Ateş", RulingPlanet: "Mars"},
	"taurus":      {Key: "taurus", Name: "Boğa", Dates: "20 Nisan - 20 Mayıs", Element: "Toprak", RulingPlanet: "Venüs"},
	"gemini":      {Key: "gemini", Name: "İkizler", Dates: "21 Mayıs - 20 Haziran", Element: "Hava", RulingPlanet: "Merkür"},
	"cancer":      {Key: "cancer", Name: "Yengeç", Dates: "21 Haziran - 22 Temmuz", Element: "Su", RulingPlanet: "Ay"},
	"leo":         {Key: "leo", Name: "Aslan", Dates: "23 Temmuz - 22 Ağustos", Element: "Ateş", RulingPlanet: "Güneş"},
	"virgo":       {Key: "virgo", Name: "Başak", Dates: "23 Ağustos - 22 Eylül", Element: "Toprak", RulingPlanet: "Merkür"},
	"libra":       {Key: "libra", Name: "Terazi", Dates: "23 Eylül - 22 Ekim", Element: "Hava", RulingPlanet: "Venüs"},
	"scorpio":     {Key: "scorpio", Name: "Akrep", Dates: "23 Ekim - 21 Kasım", Element: "Su", RulingPlanet: "Plüton"},
	"sagittarius": {Key: "sagittarius", Name: "Yay", Dates: "22 Kasım - 21 Aralık", Element: "Ateş", RulingPlanet: "Jüpiter"},
	"capricorn":   {Key: "capricorn", Name: "Oğlak", Dates: "22 Aralık - 19 Ocak", Element: "Toprak", RulingPlanet: "Satürn"},
	"aquarius":    {Key: "aquarius", Name: "Kova", Dates: "20 Ocak - 18 Şubat", Element: "Hava", RulingPlanet: "Uranüs"},
	"pisces":      {Key: "pisces", Name: "Balık", Dates: "19 Şubat - 20 Mart", Element: "Su", RulingPlanet: "Neptün"},
}

// Signs returns the immutable reference table keyed by sign key.
func Signs() map[string]domain.ZodiacSign {
	out := make(map[string]domain.ZodiacSign, len(signs))
	for k, v := range signs {
		out[k] = v
	}
	return out
}

// Sign returns one reference entry.
func Sign(key string) (domain.ZodiacSign, bool) {
	s, ok := signs[strings.ToLower(strings.TrimSpace(key))]
	return s, ok
}

// IsValidSign reports whether key names one of the twelve signs.
func IsValidSign(key string) bool {
	_, ok := signs[strings.ToLower(strings.TrimSpace(key))]
	return ok
}
