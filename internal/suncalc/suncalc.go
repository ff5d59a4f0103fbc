// Package suncalc derives low-evaporation irrigation windows from sun events.
package suncalc

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sj14/astral/pkg/astral"

	"github.com/tphakala/irrigo/internal/errors"
)

const (
	// MorningWindowAfterSunrise is how long the morning window stays open
	// after sunrise.
	MorningWindowAfterSunrise = 2 * time.Hour
	// EveningWindowBeforeSunset opens the evening window before sunset.
	EveningWindowBeforeSunset = time.Hour

	cacheExpiration = 24 * time.Hour
	cacheCleanup    = time.Hour
)

// SunEventTimes holds the sun event times of one day in the calculator's location
type SunEventTimes struct {
	CivilDawn time.Time
	Sunrise   time.Time
	Sunset    time.Time
	CivilDusk time.Time
}

// Window is a period suited to irrigation
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IrrigationWindows are the cool periods around dawn and dusk of one day
type IrrigationWindows struct {
	Date    string `json:"date"`
	Morning Window `json:"morning"`
	Evening Window `json:"evening"`
}

// SunCalc calculates and caches sun event times per location and date
type SunCalc struct {
	cache    *cache.Cache
	location *time.Location
}

// NewSunCalc creates a calculator reporting times in location; nil means UTC
func NewSunCalc(location *time.Location) *SunCalc {
	if location == nil {
		location = time.UTC
	}
	return &SunCalc{
		cache:    cache.New(cacheExpiration, cacheCleanup),
		location: location,
	}
}

// cacheKey rounds to two decimals; sun times shift by seconds over that distance
func cacheKey(latitude, longitude float64, day time.Time) string {
	return fmt.Sprintf("%.2f,%.2f@%s", latitude, longitude, day.Format(time.DateOnly))
}

// GetSunEventTimes returns the sun event times on the calendar day of date,
// as seen in the calculator's location
func (sc *SunCalc) GetSunEventTimes(latitude, longitude float64, date time.Time) (SunEventTimes, error) {
	local := date.In(sc.location)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	key := cacheKey(latitude, longitude, day)

	if cached, found := sc.cache.Get(key); found {
		return cached.(SunEventTimes), nil
	}

	times, err := sc.calculateSunEventTimes(astral.Observer{Latitude: latitude, Longitude: longitude}, day)
	if err != nil {
		return SunEventTimes{}, errors.New(err).
			Component("suncalc").
			Category(errors.CategoryValidation).
			Context("date", day.Format(time.DateOnly)).
			Build()
	}

	sc.cache.Set(key, times, cache.DefaultExpiration)
	return times, nil
}

// eventFunc computes one sun event for the UTC calendar date of its argument
type eventFunc func(observer astral.Observer, date time.Time) (time.Time, error)

// calculateSunEventTimes fails where the sun does not rise or set on day,
// e.g. during polar day
func (sc *SunCalc) calculateSunEventTimes(observer astral.Observer, day time.Time) (SunEventTimes, error) {
	var times SunEventTimes
	events := []struct {
		name string
		fn   eventFunc
		dst  *time.Time
	}{
		{"civil dawn", dawn, &times.CivilDawn},
		{"sunrise", astral.Sunrise, &times.Sunrise},
		{"sunset", astral.Sunset, &times.Sunset},
		{"civil dusk", dusk, &times.CivilDusk},
	}

	for _, event := range events {
		t, err := sc.eventOnDay(observer, day, event.fn)
		if err != nil {
			return SunEventTimes{}, fmt.Errorf("failed to calculate %s: %w", event.name, err)
		}
		*event.dst = t
	}
	return times, nil
}

// eventOnDay returns the event that falls on day in the calculator's
// location. Away from UTC the event can belong to the neighbouring UTC date.
func (sc *SunCalc) eventOnDay(observer astral.Observer, day time.Time, fn eventFunc) (time.Time, error) {
	for _, offset := range []int{0, -1, 1} {
		t, err := fn(observer, day.AddDate(0, 0, offset))
		if err != nil {
			return time.Time{}, err
		}
		local := t.In(sc.location)
		if local.Year() == day.Year() && local.YearDay() == day.YearDay() {
			return local, nil
		}
	}
	return time.Time{}, fmt.Errorf("no event on %s", day.Format(time.DateOnly))
}

func dawn(observer astral.Observer, date time.Time) (time.Time, error) {
	return astral.Dawn(observer, date, astral.DepressionCivil)
}

func dusk(observer astral.Observer, date time.Time) (time.Time, error) {
	return astral.Dusk(observer, date, astral.DepressionCivil)
}

// IrrigationWindows returns the morning window, civil dawn until
// MorningWindowAfterSunrise past sunrise, and the evening window,
// EveningWindowBeforeSunset before sunset until civil dusk
func (sc *SunCalc) IrrigationWindows(latitude, longitude float64, date time.Time) (IrrigationWindows, error) {
	times, err := sc.GetSunEventTimes(latitude, longitude, date)
	if err != nil {
		return IrrigationWindows{}, err
	}

	return IrrigationWindows{
		Date: date.In(sc.location).Format(time.DateOnly),
		Morning: Window{
			Start: times.CivilDawn,
			End:   times.Sunrise.Add(MorningWindowAfterSunrise),
		},
		Evening: Window{
			Start: times.Sunset.Add(-EveningWindowBeforeSunset),
			End:   times.CivilDusk,
		},
	}, nil
}
