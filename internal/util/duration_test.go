package util

import (
	"testing"
	"time"
)

func TestTimePassed(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		days int
		want string
	}{
		{name: "composite", days: 360 + 60 + 3, want: "1 an, 2 mois, 3 jours"},
		{name: "plural years", days: 2 * 360, want: "2 ans"},
		{name: "months only", days: 90, want: "3 mois"},
		{name: "days only", days: 12, want: "12 jours"},
		{name: "single day", days: 1, want: "1 jour"},
		{name: "same day", days: 0, want: "0 jours"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			from := now.AddDate(0, 0, -tc.days)
			if got := TimePassed(from, true, now); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}

	if got := TimePassed(time.Time{}, false, now); got != "" {
		t.Fatalf("unknown date should be empty, got %q", got)
	}
}
