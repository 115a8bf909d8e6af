package editor

import (
	"strings"
	"unicode/utf8"

	"charm.land/log/v2"

	"nvgrid/internal/grid"
	"nvgrid/internal/pool"
	"nvgrid/internal/shaping"
	"nvgrid/internal/style"
)

// WindowType distinguishes ordinary editor windows from the message window,
// which has its own positioning rules.
type WindowType int

const (
	WindowTypeEditor WindowType = iota
	WindowTypeMessage
)

// AnchorInfo describes how a floating window is attached to its anchor
// grid. Docked windows have none.
type AnchorInfo struct {
	AnchorGridID int64
	AnchorType   WindowAnchor
	AnchorLeft   float64
	AnchorTop    float64
	SortOrder    SortOrder
}

// Window owns the character grid of one remote window and translates grid
// mutations into draw commands. All methods run on the editor goroutine.
type Window struct {
	GridID     int64
	Grid       *grid.CharacterGrid
	WindowType WindowType

	// ScrolledMessage is set on message windows while their content is
	// scrolled, which renders them with a separator shadow.
	ScrolledMessage bool

	AnchorInfo *AnchorInfo

	gridLeft float64
	gridTop  float64

	styles  *style.Registry
	batcher *Batcher
	logger  *log.Logger
}

// NewWindow creates a window and announces its initial position.
func NewWindow(
	gridID int64,
	width, height int,
	anchorInfo *AnchorInfo,
	gridLeft, gridTop float64,
	styles *style.Registry,
	batcher *Batcher,
	logger *log.Logger,
) *Window {
	w := &Window{
		GridID:     gridID,
		Grid:       grid.New(width, height),
		AnchorInfo: anchorInfo,
		gridLeft:   gridLeft,
		gridTop:    gridTop,
		styles:     styles,
		batcher:    batcher,
		logger:     logger.With("grid", gridID),
	}
	w.sendUpdatedPosition()
	return w
}

func (w *Window) sendCommand(cmd WindowCommand) {
	w.batcher.Queue(WindowDraw{GridID: w.GridID, Command: cmd})
}

func (w *Window) sendUpdatedPosition() {
	var order *SortOrder
	if w.AnchorInfo != nil {
		o := w.AnchorInfo.SortOrder
		order = &o
	}
	w.sendCommand(PositionCommand{
		GridLeft:  w.gridLeft,
		GridTop:   w.gridTop,
		Width:     w.Grid.Width,
		Height:    w.Grid.Height,
		Floating:  w.AnchorInfo != nil,
		SortOrder: order,
	})
}

// GridPosition returns the window's position in grid cells relative to the
// root grid.
func (w *Window) GridPosition() (float64, float64) {
	return w.gridLeft, w.gridTop
}

// SortOrder returns the window's stacking order; docked windows stack at
// the bottom.
func (w *Window) SortOrder() SortOrder {
	if w.AnchorInfo != nil {
		return w.AnchorInfo.SortOrder
	}
	return SortOrder{}
}

// Position moves and resizes the window. A size change reinitializes the
// grid and forces a full redraw once the remote editor resends content.
func (w *Window) Position(width, height int, anchorInfo *AnchorInfo, gridLeft, gridTop float64) {
	resized := width != w.Grid.Width || height != w.Grid.Height
	w.Grid.Resize(width, height)
	w.AnchorInfo = anchorInfo
	w.gridLeft = gridLeft
	w.gridTop = gridTop
	w.sendUpdatedPosition()
	if resized {
		w.Redraw()
	}
}

// Resize changes the grid dimensions without moving the window.
func (w *Window) Resize(width, height int) {
	if width == w.Grid.Width && height == w.Grid.Height {
		return
	}
	w.Grid.Resize(width, height)
	w.sendUpdatedPosition()
	w.Redraw()
}

// CursorCell returns the text under the given window-relative cell and
// whether the glyph there is double width.
func (w *Window) CursorCell(column, row int) (string, bool) {
	text := " "
	if c, ok := w.Grid.CellAt(column, row); ok && c.Set && c.Text != "" {
		text = c.Text
	}
	doubleWidth := false
	if c, ok := w.Grid.CellAt(column+1, row); ok && c.Set && c.Text == "" {
		doubleWidth = true
	}
	return text, doubleWidth
}

// DrawGridLine writes a run of cells into one row and emits the row's
// updated line as a DrawLine command. Out-of-bounds rows are logged and
// dropped.
func (w *Window) DrawGridLine(row, columnStart int, cells []GridLineCell) {
	if row < 0 || row >= w.Grid.Height {
		w.logger.Warn("grid_line out of bounds", "row", row, "height", w.Grid.Height)
		return
	}

	columnPos := columnStart
	var previousHL style.ID
	for _, cell := range cells {
		w.modifyGrid(row, &columnPos, cell, &previousHL)
	}

	w.redrawLine(row, false)
}

// modifyGrid applies one grid_line cell run at *columnPos, advancing it
// past the written cells. A nil highlight id inherits the id of the
// previous run within the same event; id 0 is the default style.
func (w *Window) modifyGrid(row int, columnPos *int, cell GridLineCell, previousHL *style.ID) {
	var hl style.ID
	if cell.HighlightID != nil {
		hl = *cell.HighlightID
		if hl != 0 && !w.styles.Defined(hl) {
			w.logger.Warn("grid_line with unknown highlight id", "id", hl)
			hl = 0
		}
		*previousHL = hl
	} else {
		hl = *previousHL
	}

	// An empty cluster is the explicit continuation cell the remote editor
	// sends after every double-width glyph; it stays empty in the grid so
	// renderers can tell it from a blank.
	for i := 0; i < cell.Repeat; i++ {
		if !w.Grid.SetCellAt(*columnPos, row, grid.Cell{Text: cell.Text, HL: hl, Set: true}) {
			w.logger.Warn("grid_line past grid width", "row", row, "column", *columnPos)
			return
		}
		w.Grid.MarkDirty(*columnPos, row)
		*columnPos++
	}
}

// redrawLine rebuilds row's written spans into line fragments and emits a
// single DrawLine. Unless forced, rows without dirty cells are skipped; the
// row's dirty flags are cleared after emission.
func (w *Window) redrawLine(row int, force bool) {
	cells := w.Grid.Row(row)
	if cells == nil {
		return
	}
	if !force && !w.Grid.RowDirty(row, 0, w.Grid.Width) {
		return
	}

	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)

	var fragments []LineFragment
	x := 0
	for x < len(cells) {
		cell := cells[x]
		if !cell.Set || cell.Text == "" {
			// Unwritten cells and orphaned continuation cells start no
			// fragment.
			x++
			continue
		}
		frag, next := w.buildFragment(cells, x, sb)
		fragments = append(fragments, frag)
		x = next
	}

	if len(fragments) > 0 {
		w.sendCommand(DrawLineCommand{Row: row, Text: sb.String(), Fragments: fragments})
	}
	w.Grid.ClearRowDirty(row, 0, w.Grid.Width)
}

// buildFragment grows a fragment from start until a boundary: a style
// change, an unwritten cell, a transition into or out of box-drawing text,
// a different box-drawing glyph, or the end of a double-width glyph.
// Box-drawing glyphs are isolated so the renderer can stretch them to exact
// cell edges; double-width glyphs end their fragment so column arithmetic
// in the renderer stays per-fragment-local.
func (w *Window) buildFragment(cells []grid.Cell, start int, sb *strings.Builder) (LineFragment, int) {
	first := cells[start]
	hl := first.HL
	boxed := isBoxDrawing(first.Text)

	frag := LineFragment{
		TextStart: sb.Len(),
		Left:      start,
		Style:     w.styles.Resolve(hl),
	}

	x := start
	for x < len(cells) {
		cell := cells[x]
		if !cell.Set || cell.Text == "" || cell.HL != hl {
			break
		}
		if isBoxDrawing(cell.Text) != boxed {
			break
		}
		if boxed && cell.Text != first.Text {
			break
		}

		sb.WriteString(cell.Text)
		width := shaping.CellWidth(cell.Text)
		frag.Width += width
		x++
		if width == 2 {
			// Skip the continuation cell and end the fragment.
			x++
			break
		}
	}

	frag.TextEnd = sb.Len()
	return frag, x
}

// ScrollRegion shifts a region of the grid and announces the shift. For
// shifts with a horizontal component the rows of the region are re-emitted,
// since a texture blit only models pure vertical moves.
func (w *Window) ScrollRegion(top, bottom, left, right, rows, cols int) {
	pureVertical := w.Grid.ScrollRegion(top, bottom, left, right, rows, cols)

	w.sendCommand(ScrollCommand{
		Top:    top,
		Bottom: bottom,
		Left:   left,
		Right:  right,
		Rows:   rows,
		Cols:   cols,
	})

	if !pureVertical {
		if top < 0 {
			top = 0
		}
		if bottom > w.Grid.Height {
			bottom = w.Grid.Height
		}
		for row := bottom - 1; row >= top; row-- {
			w.redrawLine(row, true)
		}
	}
}

// UpdateViewport forwards the smooth-scroll delta of a viewport move.
func (w *Window) UpdateViewport(scrollDelta float64) {
	w.sendCommand(ViewportCommand{ScrollDelta: scrollDelta})
}

// Clear wipes the grid and the window's surfaces.
func (w *Window) Clear() {
	w.Grid.Clear()
	w.sendCommand(ClearCommand{})
}

// Redraw re-emits the window's full content: a Clear when the grid asks
// for one, then every row from the bottom up so rows drawn later paint
// under decorations that spill upward.
func (w *Window) Redraw() {
	if w.Grid.ShouldClear {
		w.sendCommand(ClearCommand{})
		w.Grid.ShouldClear = false
	}
	for row := w.Grid.Height - 1; row >= 0; row-- {
		w.redrawLine(row, true)
	}
}

// Hide hides the window.
func (w *Window) Hide() {
	w.sendCommand(HideCommand{})
}

// Show makes the window visible again and re-announces its position.
func (w *Window) Show() {
	w.sendCommand(ShowCommand{})
}

// Close destroys the window's rendered state.
func (w *Window) Close() {
	w.sendCommand(CloseCommand{})
}

// isBoxDrawing reports whether text is a single rune in the box-drawing or
// block-element ranges.
func isBoxDrawing(text string) bool {
	r, size := utf8.DecodeRuneInString(text)
	if size == 0 || size != len(text) {
		return false
	}
	return r >= 0x2500 && r <= 0x259F
}
