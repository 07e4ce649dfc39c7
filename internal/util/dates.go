package util

import (
	"strconv"
	"strings"
	"time"
)

// Excel serial dates count days from 1900; 25569 is the serial of the Unix
// epoch (1970-01-01).
const excelEpochOffset = 25569

// Serial values outside this window are treated as plain numbers, not dates.
const (
	minSerial = 61     // 1900-03-01, past the fake leap day
	maxSerial = 219146 // year 2500
)

// Ordered layouts tried against string dates; first parse wins. Both
// day-first and month-first slash/hyphen variants are covered.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"01/02/2006",
	"02-01-2006",
	"01-02-2006",
	"02.01.2006",
	"2006/01/02",
	"2006/02/01",
}

// ParseCellDate reads a spreadsheet date cell: an Excel numeric serial, or a
// string in one of the common layouts. The second return is false when the
// value is not a recognizable date.
func ParseCellDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < minSerial || serial > maxSerial {
			return time.Time{}, false
		}
		secs := int64((serial - excelEpochOffset) * 86400)
		return time.Unix(secs, 0).UTC(), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a parsed date in the configured display layout, or the
// unknown-date sentinel when there is nothing to show.
func FormatDate(t time.Time, ok bool, layout, unknown string) string {
	if !ok || t.IsZero() {
		return unknown
	}
	return t.Format(layout)
}
