package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/iliyamo/raffle-reservation/internal/model"
)

// StatusFilter narrows admin listings by payment state.
type StatusFilter string

const (
	StatusAll    StatusFilter = "all"
	StatusPaid   StatusFilter = "paid"
	StatusUnpaid StatusFilter = "unpaid"
)

// SortOrder orders admin listings by creation time.
type SortOrder string

const (
	SortOldest SortOrder = "asc"
	SortNewest SortOrder = "desc"
)

// EntryFilter is the admin search form.  Query matches, case-insensitively,
// a substring of the name, the contact number or the slot number, or the
// whole payment label ("paid" / "unpaid").
type EntryFilter struct {
	Query  string
	Status StatusFilter
	Sort   SortOrder
}

// ParseEntryFilter builds a filter from raw query parameters.  Empty values
// select every entry, newest first.
func ParseEntryFilter(q, status, order string) (EntryFilter, error) {
	f := EntryFilter{Query: strings.TrimSpace(q), Status: StatusAll, Sort: SortNewest}
	switch StatusFilter(strings.ToLower(strings.TrimSpace(status))) {
	case "", StatusAll:
	case StatusPaid:
		f.Status = StatusPaid
	case StatusUnpaid:
		f.Status = StatusUnpaid
	default:
		return EntryFilter{}, invalid("status", "must be all, paid or unpaid")
	}
	switch SortOrder(strings.ToLower(strings.TrimSpace(order))) {
	case "", SortNewest:
	case SortOldest:
		f.Sort = SortOldest
	default:
		return EntryFilter{}, invalid("sort", "must be asc or desc")
	}
	return f, nil
}

// FilterEntries applies f to entries and returns a new, sorted slice.
func FilterEntries(entries []model.Entry, f EntryFilter) []model.Entry {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		switch f.Status {
		case StatusPaid:
			if !e.Paid {
				continue
			}
		case StatusUnpaid:
			if e.Paid {
				continue
			}
		}
		if query != "" && !matchesQuery(e, query) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		if f.Sort == SortOldest {
			return a.Before(b)
		}
		return a.After(b)
	})
	return out
}

func matchesQuery(e model.Entry, query string) bool {
	if strings.Contains(strings.ToLower(e.Name), query) ||
		strings.Contains(e.ContactNumber, query) ||
		strings.Contains(strconv.Itoa(e.SlotNumber), query) {
		return true
	}
	return e.StatusLabel() == query
}
