package dashboard

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey names a sortable column.
type SortKey string

const (
	SortTitle        SortKey = "title"
	SortCompletion   SortKey = "completion"
	SortLastModified SortKey = "lastModified"
	SortCreatedAt    SortKey = "createdAt"
)

// Direction is a sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Query selects and orders dashboard cards.
type Query struct {
	Search    string    `json:"search"`
	SortKey   SortKey   `json:"sortKey"`
	Direction Direction `json:"direction"`
}

// DefaultQuery shows the most recently edited resumes first.
func DefaultQuery() Query {
	return Query{SortKey: SortLastModified, Direction: Descending}
}

// Toggle selects key. Choosing the current key flips the direction; a new key
// starts descending.
func (q Query) Toggle(key SortKey) Query {
	if q.SortKey == key {
		if q.Direction == Ascending {
			q.Direction = Descending
		} else {
			q.Direction = Ascending
		}
		return q
	}
	q.SortKey = key
	q.Direction = Descending
	return q
}

// Derive filters items by a case-insensitive title match and sorts them. The
// input slice is not modified. Equal sort values fall back to id order so a
// direction flip yields the exact reverse.
func Derive(items []Summary, q Query) []Summary {
	term := strings.ToLower(q.Search)
	out := make([]Summary, 0, len(items))
	for _, it := range items {
		if term == "" || strings.Contains(strings.ToLower(it.Title), term) {
			out = append(out, it)
		}
	}

	compare := comparator(q.SortKey)
	desc := q.Direction != Ascending
	slices.SortFunc(out, func(a, b Summary) int {
		c := compare(a, b)
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if desc {
			return -c
		}
		return c
	})
	return out
}

func comparator(key SortKey) func(a, b Summary) int {
	switch key {
	case SortTitle:
		col := collate.New(language.English, collate.IgnoreCase)
		return func(a, b Summary) int { return col.CompareString(a.Title, b.Title) }
	case SortCompletion:
		return func(a, b Summary) int {
			return compareInt(int64(a.CompletionPercentage), int64(b.CompletionPercentage))
		}
	case SortCreatedAt:
		return func(a, b Summary) int { return compareInt(millis(a.CreatedAt), millis(b.CreatedAt)) }
	default:
		return func(a, b Summary) int { return compareInt(millis(a.LastModified), millis(b.LastModified)) }
	}
}

func millis(ts *int64) int64 {
	if ts == nil {
		return 0
	}
	return *ts
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ParseSortKey maps a query-string value to a key. Unknown values sort by lastModified.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortTitle, SortCompletion, SortCreatedAt, SortLastModified:
		return SortKey(s)
	default:
		return SortLastModified
	}
}

// ParseDirection maps a query-string value to a direction. Anything but "asc" is descending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Ascending)) {
		return Ascending
	}
	return Descending
}
