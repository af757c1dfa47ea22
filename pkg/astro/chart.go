package astro

import (
	"fmt"
	"strings"
	"time"

	"falim/pkg/domain"
)

var planetKeys = []string{"sun", "moon", "mercury", "venus", "mars", "jupiter"}

// BirthChart derives the synthetic chart from birth date and time. The
// arithmetic is arbitrary by design but stable: identical input always
// produces an identical chart, because interpretation text is generated from
// it downstream. birthTime is HH:MM; an empty or malformed time counts as
// midnight.
func BirthChart(birthDate, birthTime string) (*domain.BirthChart, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(birthDate))
	if err != nil {
		return nil, fmt.Errorf("invalid birth date %q: %w", birthDate, err)
	}
	hour, minute := parseClock(birthTime)

	year, month, day := t.Year(), int(t.Month()), t.Day()
	seed := day + month*31 + year%100 + hour*7 + minute

	houses := make(map[string]domain.HousePosition, 12)
	for house := 1; house <= 12; house++ {
		signIdx := (seed + house*3 + day*house) % 12
		degree := float64((day*house + month*hour + minute*house) % 30)
		houses[fmt.Sprintf("house_%d", house)] = domain.HousePosition{
			Sign:   SignKeys[signIdx],
			Degree: degree,
		}
	}

	planets := make(map[string]domain.PlanetPosition, len(planetKeys))
	sunSign := SignFor(t.Month(), day)
	for i, planet := range planetKeys {
		var signIdx int
		if planet == "sun" {
			signIdx = signIndex(sunSign)
		} else {
			signIdx = (seed + i*5 + hour + day*i) % 12
		}
		planets[planet] = domain.PlanetPosition{
			Sign:   SignKeys[signIdx],
			House:  (seed+i*7+minute)%12 + 1,
			Degree: float64((day*i + month*minute + hour*i*3) % 30),
		}
	}

	ascendant := SignKeys[(hour*2+minute/30+day)%12]
	return &domain.BirthChart{
		Houses:    houses,
		Planets:   planets,
		Ascendant: ascendant,
	}, nil
}

func parseClock(birthTime string) (hour, minute int) {
	t, err := time.Parse("15:04", strings.TrimSpace(birthTime))
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}

func signIndex(key string) int {
	for i, k := range SignKeys {
		if k == key {
			return i
		}
	}
	return 0
}
