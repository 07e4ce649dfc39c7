package util

import (
	"fmt"
	"strings"
	"time"
)

// DaysBetween is the whole-day difference between two instants.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// TimePassed renders the elapsed time since a date as "N an(s), M mois,
// D jours" using the source convention of a 360-day year and 30-day month.
// Zero components are omitted; an unknown date yields an empty string.
func TimePassed(from time.Time, ok bool, now time.Time) string {
	if !ok || from.IsZero() {
		return ""
	}

	days := DaysBetween(from, now)
	if days < 0 {
		days = -days
	}

	years := days / 360
	months := (days % 360) / 30
	rest := days % 30

	parts := make([]string, 0, 3)
	if years == 1 {
		parts = append(parts, "1 an")
	} else if years > 1 {
		parts = append(parts, fmt.Sprintf("%d ans", years))
	}
	if months > 0 {
		parts = append(parts, fmt.Sprintf("%d mois", months))
	}
	if rest == 1 {
		parts = append(parts, "1 jour")
	} else if rest > 1 {
		parts = append(parts, fmt.Sprintf("%d jours", rest))
	}

	if len(parts) == 0 {
		return "0 jours"
	}
	return strings.Join(parts, ", ")
}
