package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name           string
		page, pageSize int
		start, end     int
	}{
		{"first page", 1, 9, 0, 8},
		{"second page", 2, 9, 9, 17},
		{"tenth page", 10, 9, 81, 89},
		{"page size one", 3, 1, 2, 2},
		{"admin page size", 2, 10, 10, 19},
		{"page below one clamps", 0, 9, 0, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.page, tt.pageSize)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
			// The window always requests exactly pageSize rows.
			if tt.pageSize >= 1 {
				assert.Equal(t, tt.pageSize, end-start+1)
			}
		})
	}
}

func TestOffsetMatchesWindowStart(t *testing.T) {
	for page := 1; page <= 20; page++ {
		start, _ := Window(page, 9)
		assert.Equal(t, start, Offset(page, 9))
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		totalCount, pageSize, want int
	}{
		{0, 9, 1},  // Empty results still present one page
		{1, 9, 1},
		{9, 9, 1},
		{10, 9, 2},
		{18, 9, 2},
		{19, 9, 3},
		{100, 10, 10},
		{101, 10, 11},
		{-5, 9, 1}, // Defensive: negative counts normalize to one page
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.totalCount, tt.pageSize),
			"TotalPages(%d, %d)", tt.totalCount, tt.pageSize)
	}
}

func TestPageButtons(t *testing.T) {
	tests := []struct {
		name             string
		page, totalPages int
		want             []int
	}{
		{"start of a long list", 1, 10, []int{1, 2, 3, 4, 5}},
		{"page three still anchored left", 3, 10, []int{1, 2, 3, 4, 5}},
		{"middle of a long list", 5, 10, []int{3, 4, 5, 6, 7}},
		{"near the end", 8, 10, []int{6, 7, 8, 9, 10}},
		{"last page", 10, 10, []int{6, 7, 8, 9, 10}},
		{"short list shows everything", 3, 3, []int{1, 2, 3}},
		{"single page", 1, 1, []int{1}},
		{"exactly five pages", 4, 5, []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageButtons(tt.page, tt.totalPages))
		})
	}
}

// TestPageButtonsProperties checks the structural invariants across the whole
// input space rather than hand-picked examples.
func TestPageButtonsProperties(t *testing.T) {
	for totalPages := 1; totalPages <= 30; totalPages++ {
		for page := 1; page <= totalPages; page++ {
			buttons := PageButtons(page, totalPages)

			wantLen := totalPages
			if wantLen > 5 {
				wantLen = 5
			}
			require.Len(t, buttons, wantLen, "page=%d totalPages=%d", page, totalPages)

			containsPage := false
			for i, b := range buttons {
				assert.GreaterOrEqual(t, b, 1)
				assert.LessOrEqual(t, b, totalPages)
				if i > 0 {
					assert.Equal(t, buttons[i-1]+1, b, "buttons must be contiguous ascending")
				}
				if b == page {
					containsPage = true
				}
			}
			assert.True(t, containsPage, "buttons %v must contain current page %d", buttons, page)
		}
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 9, 25)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 9, meta.PageSize)
	assert.Equal(t, 25, meta.TotalCount)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, meta.Pages)

	// A page past the end clamps to the last page.
	meta = NewMeta(7, 9, 25)
	assert.Equal(t, 3, meta.Page)

	// Empty results normalize to a one-page control.
	meta = NewMeta(1, 9, 0)
	assert.Equal(t, 1, meta.TotalPages)
	assert.Equal(t, []int{1}, meta.Pages)
}

func TestViewFilterResetsPage(t *testing.T) {
	// The invariant must hold for every prior page value, not just a sample.
	for prior := 1; prior <= 50; prior++ {
		v := NewView(9)
		v.SetPage(prior)
		v.SetFilter("commercial")
		assert.Equal(t, 1, v.Page(), "filter change from page %d must reset to page 1", prior)
		assert.Equal(t, "commercial", v.Filter())
	}
}

func TestViewSameFilterKeepsPage(t *testing.T) {
	v := NewView(9)
	v.SetFilter("custom")
	v.SetPage(4)
	gen := v.Generation()

	// Re-applying the identical filter is not a change.
	v.SetFilter("custom")
	assert.Equal(t, 4, v.Page())
	assert.Equal(t, gen, v.Generation())
}

func TestViewGenerationDiscardsStaleResponses(t *testing.T) {
	v := NewView(9)
	v.SetPage(2)

	// A fetch starts for page 2...
	inflight := v.Generation()
	assert.False(t, v.Stale(inflight))

	// ...then the user changes the filter before it settles.
	v.SetFilter("industrial")
	assert.True(t, v.Stale(inflight), "response from before the filter change must be discarded")
	assert.False(t, v.Stale(v.Generation()))
}

func TestViewClampTo(t *testing.T) {
	v := NewView(9)
	v.SetPage(9)
	v.ClampTo(4)
	assert.Equal(t, 4, v.Page())

	// In-range pages are untouched.
	gen := v.Generation()
	v.ClampTo(4)
	assert.Equal(t, 4, v.Page())
	assert.Equal(t, gen, v.Generation())
}

func TestViewDefaults(t *testing.T) {
	v := NewView(0)
	assert.Equal(t, DefaultPageSize, v.PageSize())
	assert.Equal(t, "all", v.Filter())
	assert.Equal(t, 1, v.Page())
	assert.Equal(t, 0, v.Offset())

	v.SetFilter("") // Empty filter is the same as "all"
	assert.Equal(t, "all", v.Filter())
}
