package store

import (
	"sort"
	"strings"
	"time"

	"creances/internal"
	"creances/internal/util"
)

// Filter wildcard accepted by the status and agency filters.
const FilterAll = "all"

// Sort orders for the issue-date column.
const (
	SortAscending  = "ascending"
	SortDescending = "descending"
	SortNone       = "none"
)

// QueryOptions is the presentation-facing filter set. Zero values mean "no
// constraint"; Page is 1-based.
type QueryOptions struct {
	Search string
	Status string
	Agency string
	Sort   string
	Page   int
}

// QueryResult is one page of the filtered, sorted collection.
type QueryResult struct {
	Records    []internal.InsuranceRecord
	Total      int
	Page       int
	TotalPages int
	PageSize   int
}

// Query filters by free text (client, contract or agency, case- and
// accent-insensitive substring), status and agency, sorts by issue date, and
// paginates with the configured page size.
func (s *Store) Query(opts QueryOptions) QueryResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := util.FoldValue(strings.TrimSpace(opts.Search))
	filtered := make([]internal.InsuranceRecord, 0, len(s.records))
	for _, r := range s.records {
		if opts.Status != "" && opts.Status != FilterAll && string(r.Status) != opts.Status {
			continue
		}
		if opts.Agency != "" && opts.Agency != FilterAll && r.CodeAgence != opts.Agency {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		filtered = append(filtered, r)
	}

	switch opts.Sort {
	case SortAscending:
		s.sortByEmission(filtered, true)
	case SortDescending:
		s.sortByEmission(filtered, false)
	}

	pageSize := s.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	lo := (page - 1) * pageSize
	hi := lo + pageSize
	if lo > total {
		lo = total
	}
	if hi > total {
		hi = total
	}

	return QueryResult{
		Records:    filtered[lo:hi],
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		PageSize:   pageSize,
	}
}

// Agencies lists the distinct agency codes present, sorted, for the agency
// filter.
func (s *Store) Agencies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := map[string]struct{}{}
	for _, r := range s.records {
		set[r.CodeAgence] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func matchesSearch(r internal.InsuranceRecord, folded string) bool {
	return strings.Contains(util.FoldValue(r.ClientName), folded) ||
		strings.Contains(util.FoldValue(r.ContractNumber), folded) ||
		strings.Contains(util.FoldValue(r.CodeAgence), folded)
}

// sortByEmission orders by parsed issue date, stable, unknown dates last.
func (s *Store) sortByEmission(records []internal.InsuranceRecord, ascending bool) {
	layout := s.cfg.DateFormat
	key := func(r internal.InsuranceRecord) (time.Time, bool) {
		t, err := time.Parse(layout, r.DateEmission)
		return t, err == nil
	}
	sort.SliceStable(records, func(i, j int) bool {
		ti, oki := key(records[i])
		tj, okj := key(records[j])
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		if ascending {
			return ti.Before(tj)
		}
		return tj.Before(ti)
	})
}

func stableSortByRemainingDesc(records []internal.InsuranceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RemainingAmount > records[j].RemainingAmount
	})
}
