package checkout

import (
	"strings"
	"time"

	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

// Hours is one day's opening window as HH:MM clocks.
type Hours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Schedule maps lower-case English weekday names to opening hours.
type Schedule map[string]Hours

// DefaultSchedule is the storefront's fallback opening hours.
func DefaultSchedule() Schedule {
	return Schedule{
		"monday":    {Open: "18:00", Close: "22:00"},
		"tuesday":   {Open: "18:00", Close: "22:00"},
		"wednesday": {Open: "18:00", Close: "22:00"},
		"thursday":  {Open: "18:00", Close: "22:00"},
		"friday":    {Open: "18:00", Close: "23:00"},
		"saturday":  {Open: "13:00", Close: "23:00"},
		"sunday":    {Open: "13:00", Close: "22:00"},
	}
}

// StoreOpen reports whether now (already in store time) falls in the day's window.
// A close at or before open spans midnight. Days without valid hours are closed.
func StoreOpen(schedule Schedule, now time.Time) bool {
	hours, ok := schedule[strings.ToLower(now.Weekday().String())]
	if !ok {
		return false
	}
	open, okOpen := pricing.ParseClock(hours.Open)
	closing, okClose := pricing.ParseClock(hours.Close)
	if !okOpen || !okClose {
		return false
	}
	minute := now.Hour()*60 + now.Minute()
	if closing > open {
		return minute >= open && minute < closing
	}
	return minute >= open || minute < closing
}
