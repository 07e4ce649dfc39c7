package util

import (
	"testing"
	"time"
)

func TestParseCellDate(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "excel serial", input: "44927", want: "2023-01-01", ok: true},
		{name: "french slash", input: "15/03/2023", want: "2023-03-15", ok: true},
		{name: "iso", input: "2023-03-15", want: "2023-03-15", ok: true},
		{name: "dotted", input: "15.03.2023", want: "2023-03-15", ok: true},
		{name: "hyphen day first", input: "15-03-2023", want: "2023-03-15", ok: true},
		{name: "impossible day", input: "31/02/2023", ok: false},
		{name: "not a date", input: "bientôt", ok: false},
		{name: "tiny number", input: "12", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseCellDate(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok=%v want %v", ok, tc.ok)
			}
			if !tc.ok {
				return
			}
			if got.Format("2006-01-02") != tc.want {
				t.Fatalf("got %s want %s", got.Format("2006-01-02"), tc.want)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d, true, "02/01/2006", "Date inconnue"); got != "01/01/2023" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDate(time.Time{}, false, "02/01/2006", "Date inconnue"); got != "Date inconnue" {
		t.Fatalf("got %q", got)
	}
}
