package utils

import (
	"time"
)

// StartOfDay truncates a timestamp to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EventDatePassed reports whether an offering's event date is behind
// the given "now". An event on today's date has not passed: gates stay
// open through the whole day.
func EventDatePassed(eventDate, now time.Time) bool {
	return StartOfDay(eventDate).Before(StartOfDay(now))
}
