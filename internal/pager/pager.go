// Package pager slices ordered record sets into fixed-size pages with
// navigation affordances. Pagination is stateless: the current page travels
// in the navigation token, never in session state.
package pager

import (
	"fmt"
	"strconv"
	"strings"
)

// PageSize is the fixed number of records shown per rendered page.
const PageSize = 5

// Page describes one visible slice of an ordered record set. Start and End
// bound the slice [Start, End) into the full set.
type Page struct {
	Index      int
	TotalPages int
	Start      int
	End        int
	HasPrev    bool
	HasNext    bool
}

// Empty reports whether the underlying record set has no records at all.
func (p Page) Empty() bool {
	return p.TotalPages == 0
}

// Paginate computes the visible slice for a zero-based page index over count
// records. Out-of-range page indexes are clamped to the nearest valid page.
func Paginate(count, page int) Page {
	if count <= 0 {
		return Page{}
	}
	totalPages := (count + PageSize - 1) / PageSize
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}
	start := page * PageSize
	end := start + PageSize
	if end > count {
		end = count
	}
	return Page{
		Index:      page,
		TotalPages: totalPages,
		Start:      start,
		End:        end,
		HasPrev:    page > 0,
		HasNext:    page < totalPages-1,
	}
}

// Token builds the navigation token for a list kind and page index, in the
// form "<listKind>_page_<n>".
func Token(kind string, page int) string {
	return fmt.Sprintf("%s_page_%d", kind, page)
}

// ParseToken recognizes a "<listKind>_page_<n>" navigation token. It returns
// ok=false for anything else, including negative or malformed page numbers.
func ParseToken(token string) (kind string, page int, ok bool) {
	i := strings.LastIndex(token, "_page_")
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(token[i+len("_page_"):])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return token[:i], n, true
}
