package domain

import (
	"sort"
	"strings"
)

// PageSize is the fixed number of bookmarks per list page.
const PageSize = 10

// Filter selects bookmarks for list and count operations.
type Filter struct {
	// Search is matched as a case-insensitive literal substring of
	// Name or URL. Empty matches every bookmark.
	Search string
}

// Matches reports whether b satisfies the filter.
func (f Filter) Matches(b *Bookmark) bool {
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(b.Name), needle) ||
		strings.Contains(strings.ToLower(b.URL), needle)
}

// FindOptions bounds a FindMany call. Limit <= 0 means no limit.
type FindOptions struct {
	Skip  int
	Limit int
}

// Window returns the [from, to) slice bounds of opts over n items.
func (o FindOptions) Window(n int) (from, to int) {
	from = o.Skip
	if from < 0 {
		from = 0
	}
	if from > n {
		from = n
	}
	to = n
	if o.Limit > 0 && from+o.Limit < n {
		to = from + o.Limit
	}
	return from, to
}

// SortNewestFirst orders bookmarks by CreatedAt descending, then by Seq
// descending so that later inserts come first on equal timestamps.
func SortNewestFirst(bookmarks []*Bookmark) {
	sort.SliceStable(bookmarks, func(i, j int) bool {
		a, b := bookmarks[i], bookmarks[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Seq > b.Seq
	})
}

// Page is one window of a list query.
type Page struct {
	Items      []*Bookmark
	Search     string
	Page       int
	PageSize   int
	TotalCount int64
	TotalPages int

	// Degraded is true when the backend failed and Items is empty
	// because of that failure rather than because nothing matched.
	Degraded bool
}

// TotalPagesFor returns ceil(total / size).
func TotalPagesFor(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

func (p Page) HasPrev() bool { return p.Page > 1 }
func (p Page) HasNext() bool { return p.Page < p.TotalPages }
func (p Page) PrevPage() int { return p.Page - 1 }
func (p Page) NextPage() int { return p.Page + 1 }
