package tui

import (
	"tradeview/internal/feature/watchlist/domain/entity"
	"tradeview/internal/feature/watchlist/usecase"
)

const (
	// panelWidth is the outer width of the panel including its border.
	panelWidth = 56
	// overlayMaxHeight caps the floating box height in overlay mode.
	overlayMaxHeight = 24
	// maxResults is the number of search results listed at once.
	maxResults = 6
)

// layout is where each part of the panel is drawn, in screen cells.
type layout struct {
	panel   usecase.Rect
	input   usecase.Rect
	results usecase.Rect
	rows    usecase.Rect
	toastY  int
}

// search covers the input line and the results below it.
func (l layout) search() usecase.Rect {
	return usecase.Rect{X: l.input.X, Y: l.input.Y, Width: l.input.Width, Height: l.input.Height + l.results.Height}
}

// rowAt returns the watchlist row index under y, if any.
func (l layout) rowAt(x, y, count int) (int, bool) {
	if !l.rows.Contains(x, y) {
		return 0, false
	}
	idx := y - l.rows.Y
	return idx, idx < count
}

// resultAt returns the search result index under (x, y), if any.
func (l layout) resultAt(x, y int, st entity.SearchState) (int, bool) {
	if st.Searching || !st.ShowResults || !l.results.Contains(x, y) {
		return 0, false
	}
	idx := y - l.results.Y
	return idx, idx < len(st.Results) && idx < maxResults
}

// resultLines is how many lines the results block takes for st.
func resultLines(st entity.SearchState) int {
	switch {
	case st.Searching:
		return 1
	case !st.ShowResults:
		return 0
	case len(st.Results) == 0:
		return 1
	default:
		return min(len(st.Results), maxResults)
	}
}

// computeLayout places the panel for a width x height screen.
// Inline docks it on the right edge; overlay centers it.
func computeLayout(mode usecase.Mode, width, height int, st entity.SearchState) layout {
	w := min(panelWidth, width)
	var p usecase.Rect
	if mode == usecase.ModeOverlay {
		h := min(overlayMaxHeight, max(height-2, 0))
		p = usecase.Rect{X: (width - w) / 2, Y: (height - h) / 2, Width: w, Height: h}
	} else {
		p = usecase.Rect{X: width - w, Y: 0, Width: w, Height: height}
	}

	inner := max(w-2, 0)
	// 枠線(1) + ヘッダー(1)
	y := p.Y + 2
	input := usecase.Rect{X: p.X + 1, Y: y, Width: inner, Height: 1}
	y++
	results := usecase.Rect{X: p.X + 1, Y: y, Width: inner, Height: resultLines(st)}
	y += results.Height
	// 列見出し
	y++
	bottom := p.Y + p.Height - 1
	toastY := bottom - 1
	rows := usecase.Rect{X: p.X + 1, Y: y, Width: inner, Height: max(toastY-y, 0)}

	return layout{panel: p, input: input, results: results, rows: rows, toastY: toastY}
}
