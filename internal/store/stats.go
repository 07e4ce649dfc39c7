package store

import (
	"sort"
	"time"

	"creances/internal"
)

// Stats are the dashboard aggregates.
type Stats struct {
	TotalContracts  int                     `json:"totalContracts"`
	TotalAmount     float64                 `json:"totalAmount"`
	PaidAmount      float64                 `json:"paidAmount"`
	RemainingAmount float64                 `json:"remainingAmount"`
	ByStatus        map[internal.Status]int `json:"byStatus"`
	Monthly         []MonthlyTotal          `json:"monthly"`
}

// MonthlyTotal aggregates issued and collected amounts per issue month.
type MonthlyTotal struct {
	Month string  `json:"month"` // MM/YYYY
	Total float64 `json:"total"`
	Paid  float64 `json:"paid"`
}

// Stats computes the dashboard aggregates over the whole collection.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		TotalContracts: len(s.records),
		ByStatus:       map[internal.Status]int{},
	}

	monthly := map[string]*MonthlyTotal{}
	for _, r := range s.records {
		stats.TotalAmount += r.TotalAmount
		stats.RemainingAmount += r.RemainingAmount
		stats.ByStatus[r.Status]++

		t, err := time.Parse(s.cfg.DateFormat, r.DateEmission)
		if err != nil {
			continue
		}
		key := t.Format("01/2006")
		m, ok := monthly[key]
		if !ok {
			m = &MonthlyTotal{Month: key}
			monthly[key] = m
		}
		m.Total += r.TotalAmount
		m.Paid += r.TotalAmount - r.RemainingAmount
	}
	stats.PaidAmount = stats.TotalAmount - stats.RemainingAmount

	keys := make([]string, 0, len(monthly))
	for k := range monthly {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		// MM/YYYY sorts chronologically on the reversed components.
		return keys[i][3:]+keys[i][:2] < keys[j][3:]+keys[j][:2]
	})
	for _, k := range keys {
		stats.Monthly = append(stats.Monthly, *monthly[k])
	}
	return stats
}
