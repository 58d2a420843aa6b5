// Package pagination holds the windowing math shared by every list endpoint:
// the inclusive row window for a page, the total-page rule, the five-button
// page control, and a small view-state holder that enforces the "changing the
// filter resets the page" invariant.
package pagination

// DefaultPageSize is the public list window (projects, gallery).
// AdminPageSize is the back-office list window.
const (
	DefaultPageSize = 9
	AdminPageSize   = 10

	// maxButtons is the width of the page-number control.
	maxButtons = 5
)

// Window computes the inclusive [start, end] row range for a page.
// Pages are 1-indexed; out-of-range inputs are clamped to the first page.
func Window(page, pageSize int) (start, end int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	start = (page - 1) * pageSize
	end = start + pageSize - 1
	return start, end
}

// Offset returns the zero-based row offset for a page, i.e. the start of its
// window, in the form LIMIT/OFFSET queries want.
func Offset(page, pageSize int) int {
	start, _ := Window(page, pageSize)
	return start
}

// TotalPages computes ceil(totalCount / pageSize). An empty result set still
// has one page: the UI never presents a zero-page control.
func TotalPages(totalCount, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalCount <= 0 {
		return 1
	}
	pages := (totalCount + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// PageButtons returns the page numbers to show in a control that displays up
// to five buttons. The returned list is contiguous, ascending, contains the
// current page, and never leaves [1, totalPages].
func PageButtons(page, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	var first int
	switch {
	case totalPages <= maxButtons:
		first = 1
	case page <= 3:
		first = 1
	case page >= totalPages-2:
		first = totalPages - maxButtons + 1
	default:
		first = page - 2
	}

	count := maxButtons
	if totalPages < maxButtons {
		count = totalPages
	}
	buttons := make([]int, count)
	for i := range buttons {
		buttons[i] = first + i
	}
	return buttons
}

// Meta is the pagination block returned alongside every list response.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int   `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
	Pages      []int `json:"pages"`
}

// NewMeta derives the full pagination block from a page request and the exact
// total count returned with the row window.
func NewMeta(page, pageSize, totalCount int) Meta {
	if page < 1 {
		page = 1
	}
	totalPages := TotalPages(totalCount, pageSize)
	if page > totalPages {
		page = totalPages
	}
	return Meta{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
		Pages:      PageButtons(page, totalPages),
	}
}

// View holds the filter and page state of one list. Changing the filter
// always resets the page to 1, so a filter change can never leave the view on
// an out-of-range page. Every state change bumps a generation counter;
// callers tag each fetch with Generation() and drop responses for which
// Stale(gen) is true, so a response from before a filter/page change can
// never overwrite newer state.
type View struct {
	filter     string
	page       int
	pageSize   int
	generation uint64
}

// NewView creates a View on page 1 with the "all" filter.
func NewView(pageSize int) *View {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &View{filter: "all", page: 1, pageSize: pageSize, generation: 1}
}

// SetFilter switches the active filter. If the filter actually changes the
// page resets to 1.
func (v *View) SetFilter(filter string) {
	if filter == "" {
		filter = "all"
	}
	if filter == v.filter {
		return
	}
	v.filter = filter
	v.page = 1
	v.generation++
}

// SetPage moves to the given page; values below 1 clamp to 1.
func (v *View) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	if page == v.page {
		return
	}
	v.page = page
	v.generation++
}

// ClampTo pulls the page back into range after the total page count for the
// current filter is known.
func (v *View) ClampTo(totalPages int) {
	if totalPages < 1 {
		totalPages = 1
	}
	if v.page > totalPages {
		v.page = totalPages
		v.generation++
	}
}

func (v *View) Filter() string      { return v.filter }
func (v *View) Page() int           { return v.page }
func (v *View) PageSize() int       { return v.pageSize }
func (v *View) Generation() uint64  { return v.generation }
func (v *View) Offset() int         { return Offset(v.page, v.pageSize) }
func (v *View) Stale(gen uint64) bool { return gen != v.generation }
