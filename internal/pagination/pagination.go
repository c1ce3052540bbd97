// Package pagination keeps the operator's page stable and in bounds while
// the authoritative flow total changes between refreshes.
//
// State is a value type. Every operation returns an updated copy and none of
// them fail: out-of-range input is clamped.
package pagination

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// DefaultPageSize is the page size used when none is configured
const DefaultPageSize = 10

// State is the pagination position for one session
type State struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
}

// Window is the record range of the current page. Start/End are 0-based
// half-open bounds for slicing, First/Last 1-based inclusive bounds for
// captions. All four are zero for an empty page.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
	First int `json:"first"`
	Last  int `json:"last"`
}

// New returns a state on page 1 with no items
func New(pageSize int) State {
	return State{CurrentPage: 1, PageSize: pageSize}.Reconcile(0)
}

// TotalPages returns ceil(TotalItems/PageSize), or 0 when there are no items
func (s State) TotalPages() int {
	if s.TotalItems <= 0 {
		return 0
	}
	size := s.PageSize
	if size < 1 {
		size = 1
	}
	return (s.TotalItems + size - 1) / size
}

// maxPage is the upper bound for CurrentPage
func (s State) maxPage() int {
	return max(s.TotalPages(), 1)
}

// Reconcile sets the fresh total and pulls CurrentPage back into range.
// Reconciling twice with the same total leaves the state unchanged.
func (s State) Reconcile(freshTotal int) State {
	if s.PageSize < 1 {
		s.PageSize = 1
	}
	s.TotalItems = max(freshTotal, 0)
	if s.TotalPages() == 0 {
		s.CurrentPage = 1
		return s
	}
	s.CurrentPage = min(max(s.CurrentPage, 1), s.TotalPages())
	return s
}

// GoToPage moves to page n, clamped into [1, max(TotalPages,1)]
func (s State) GoToPage(n int) State {
	s.CurrentPage = min(max(n, 1), s.maxPage())
	return s
}

// Next moves forward one page. It is a no-op on the last page.
func (s State) Next() State {
	if !s.HasNext() {
		return s
	}
	s.CurrentPage++
	return s
}

// Previous moves back one page. It is a no-op on the first page.
func (s State) Previous() State {
	if !s.HasPrevious() {
		return s
	}
	s.CurrentPage--
	return s
}

// HasNext reports whether a page follows the current one
func (s State) HasNext() bool {
	return s.CurrentPage < s.TotalPages()
}

// HasPrevious reports whether a page precedes the current one
func (s State) HasPrevious() bool {
	return s.CurrentPage > 1
}

// ChangePageSize switches the page size and returns to page 1, since page
// boundaries do not carry over between sizes.
func (s State) ChangePageSize(size int) State {
	s.PageSize = max(size, 1)
	s.CurrentPage = 1
	return s.Reconcile(s.TotalItems)
}

// Window returns the record range of the current page
func (s State) Window() Window {
	if s.TotalPages() == 0 {
		return Window{}
	}
	start := (s.CurrentPage - 1) * s.PageSize
	end := min(s.CurrentPage*s.PageSize, s.TotalItems)
	return Window{Start: start, End: end, First: start + 1, Last: end}
}

// Empty reports whether the window holds no records
func (w Window) Empty() bool {
	return w.End <= w.Start
}

// Len returns the number of records in the window
func (w Window) Len() int {
	return max(w.End-w.Start, 0)
}

// Slice clips the window to the n records that were actually fetched and
// returns slicing bounds. The result may be empty when the page lies beyond
// the fetched records.
func (w Window) Slice(n int) (start, end int) {
	start = min(w.Start, n)
	end = min(w.End, n)
	return start, end
}

// Caption describes the window, e.g. "Showing 91-97 of 97 flows"
func (s State) Caption() string {
	w := s.Window()
	if w.Empty() {
		return "No flows"
	}
	return fmt.Sprintf("Showing %s-%s of %s flows",
		humanize.Comma(int64(w.First)), humanize.Comma(int64(w.Last)), humanize.Comma(int64(s.TotalItems)))
}
