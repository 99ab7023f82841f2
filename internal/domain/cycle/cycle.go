// internal/domain/cycle/cycle.go
package cycle

import (
	"errors"
	"fmt"
	"time"
)

// DefaultTimezone anchors cycle boundaries when no timezone is configured.
const DefaultTimezone = "Asia/Singapore"

// DateLayout is the accepted format for the configured start date.
const DateLayout = "2006-01-02"

var ErrInvalidConfig = errors.New("invalid cycle configuration")

// Config describes the recurring schedule. It is loaded once at startup and never mutated.
type Config struct {
	StartDate    time.Time      // Midnight of the first day of cycle 1, in Location
	DurationDays int            // Length of one cycle, literally in days
	Location     *time.Location // Reference timezone for wall-clock boundaries
}

// NewConfig parses startDate as a calendar date in loc.
func NewConfig(startDate string, durationDays int, loc *time.Location) (Config, error) {
	if loc == nil {
		return Config{}, fmt.Errorf("%w: timezone is required", ErrInvalidConfig)
	}
	if durationDays <= 0 {
		return Config{}, fmt.Errorf("%w: duration must be a positive number of days, got %d", ErrInvalidConfig, durationDays)
	}
	start, err := time.ParseInLocation(DateLayout, startDate, loc)
	if err != nil {
		return Config{}, fmt.Errorf("%w: start date %q: %v", ErrInvalidConfig, startDate, err)
	}
	return Config{StartDate: start, DurationDays: durationDays, Location: loc}, nil
}

// Length is the duration of one cycle.
func (c Config) Length() time.Duration {
	return time.Duration(c.DurationDays) * 24 * time.Hour
}

// Current maps now to its cycle number. Cycle 1 begins at StartDate; any instant before it
// also reports cycle 1.
func Current(cfg Config, now time.Time) int {
	elapsed := wallClock(now.In(cfg.Location)).Sub(wallClock(cfg.StartDate.In(cfg.Location)))
	if elapsed < 0 {
		return 1
	}
	n := int(elapsed/cfg.Length()) + 1
	if n < 1 {
		return 1
	}
	return n
}

// StartOf returns the instant cycle n begins in the reference timezone.
func StartOf(cfg Config, n int) time.Time {
	if n < 1 {
		n = 1
	}
	s := cfg.StartDate.In(cfg.Location)
	return time.Date(s.Year(), s.Month(), s.Day()+(n-1)*cfg.DurationDays, 0, 0, 0, 0, cfg.Location)
}

// wallClock re-reads the calendar fields of t as UTC so that subtraction measures wall-clock
// distance in t's zone rather than absolute elapsed time.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
