package internal

import (
	"math/rand"
	"testing"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		total, remaining float64
		want             Status
	}{
		{1000, 0, StatusRecouvre},
		{1000, -50, StatusRecouvre},
		{0, 0, StatusRecouvre},
		{1000, 300, StatusPartiel},
		{1000, 999.99, StatusPartiel},
		{1000, 1000, StatusCreance},
		{1000, 1200, StatusCreance},
		{0, 100, StatusCreance},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.total, tt.remaining); got != tt.want {
			t.Errorf("StatusFor(%v, %v) = %v, want %v", tt.total, tt.remaining, got, tt.want)
		}
	}
}

// The status must always agree with the amounts, whatever they are.
func TestStatusForInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		total := rng.Float64() * 1e6
		remaining := rng.Float64() * 1e6

		got := StatusFor(total, remaining)
		switch {
		case remaining <= 0 && got != StatusRecouvre:
			t.Fatalf("StatusFor(%v, %v) = %v, want %v", total, remaining, got, StatusRecouvre)
		case remaining > 0 && remaining < total && got != StatusPartiel:
			t.Fatalf("StatusFor(%v, %v) = %v, want %v", total, remaining, got, StatusPartiel)
		case remaining >= total && remaining > 0 && got != StatusCreance:
			t.Fatalf("StatusFor(%v, %v) = %v, want %v", total, remaining, got, StatusCreance)
		}
	}
}
