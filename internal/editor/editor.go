// Package editor maintains the grid/window model fed by remote redraw
// events and emits draw-command batches for the renderer. Everything in
// this package runs on a single goroutine; the only shared boundary is the
// batch queue handed to NewEditor.
package editor

import (
	"slices"

	"charm.land/log/v2"

	"nvgrid/internal/chanutil"
	"nvgrid/internal/style"
)

// messageZIndex stacks the message window above ordinary floats unless the
// remote editor asks for something higher.
const messageZIndex = 200

// Editor is the single-threaded model of the remote editor's UI state.
type Editor struct {
	logger *log.Logger

	windows map[int64]*Window
	styles  *style.Registry
	batcher *Batcher

	cursor    Cursor
	modeList  []CursorMode
	modeIndex int

	defaultColors style.Colors
	title         string

	// compositionOrder increments whenever a floating window is (re)raised;
	// it breaks z-index ties in creation/raise order.
	compositionOrder int64

	uiReady bool
}

// NewEditor returns an editor sending finished batches to out. Batches are
// held back until the first flush so the renderer never sees the remote
// editor's partial startup frames.
func NewEditor(out *chanutil.Unbounded[[]DrawCommand], logger *log.Logger) *Editor {
	batcher := NewBatcher(out)
	batcher.SetEnabled(false)
	return &Editor{
		logger:    logger.With("component", "editor"),
		windows:   make(map[int64]*Window),
		styles:    style.NewRegistry(logger),
		batcher:   batcher,
		cursor:    NewCursor(),
		modeIndex: -1,
	}
}

// Styles exposes the style registry (the bridge resolves nothing itself,
// but tests and tooling inspect it).
func (e *Editor) Styles() *style.Registry {
	return e.styles
}

// Title returns the current session title.
func (e *Editor) Title() string {
	return e.title
}

// HandleRedrawEvent applies one parsed redraw event to the model. Malformed
// or out-of-bounds events are logged and dropped; they never fail the
// session.
func (e *Editor) HandleRedrawEvent(event RedrawEvent) {
	switch ev := event.(type) {
	case SetTitle:
		e.title = ev.Title
		e.batcher.Queue(TitleChanged{Title: ev.Title})
	case ModeInfoSet:
		e.modeList = ev.CursorModes
		if e.modeIndex >= 0 && e.modeIndex < len(e.modeList) {
			e.cursor.ChangeMode(e.modeList[e.modeIndex], e.styles)
			e.sendCursorInfo()
		}
	case OptionSet:
		e.logger.Debug("option set", "name", ev.Name, "value", ev.Value)
	case ModeChange:
		e.modeIndex = ev.ModeIndex
		if ev.ModeIndex >= 0 && ev.ModeIndex < len(e.modeList) {
			e.cursor.ChangeMode(e.modeList[ev.ModeIndex], e.styles)
		}
		e.batcher.Queue(ModeChanged{Mode: ev.Mode, ModeIndex: ev.ModeIndex})
		e.sendCursorInfo()
	case BusyStart:
		e.cursor.Enabled = false
		e.sendCursorInfo()
	case BusyStop:
		e.cursor.Enabled = true
		e.sendCursorInfo()
	case Flush:
		if !e.uiReady {
			e.uiReady = true
			e.batcher.Queue(UIReady{})
		}
		e.batcher.SendBatch()
		e.batcher.SetEnabled(true)
	case Resize:
		e.resizeGrid(ev)
	case DefaultColorsSet:
		e.defaultColors = ev.Colors
		e.batcher.Queue(DefaultStyleChanged{Colors: ev.Colors})
		e.redrawEverything()
	case HighlightAttributesDefine:
		e.styles.SetStyle(ev.ID, ev.Style)
	case GridLine:
		if w, ok := e.windows[ev.Grid]; ok {
			w.DrawGridLine(ev.Row, ev.ColumnStart, ev.Cells)
		} else {
			e.logger.Warn("grid_line for unknown grid", "grid", ev.Grid)
		}
	case Clear:
		if w, ok := e.windows[ev.Grid]; ok {
			w.Clear()
		}
	case Destroy:
		e.closeWindow(ev.Grid)
	case CursorGoto:
		e.setCursorPosition(ev.Grid, ev.Row, ev.Column)
	case Scroll:
		if w, ok := e.windows[ev.Grid]; ok {
			w.ScrollRegion(ev.Top, ev.Bottom, ev.Left, ev.Right, ev.Rows, ev.Columns)
		} else {
			e.logger.Warn("grid_scroll for unknown grid", "grid", ev.Grid)
		}
	case WindowPosition:
		e.setWindowPosition(ev)
	case WindowFloatPosition:
		e.setWindowFloatPosition(ev)
	case WindowHide:
		if w, ok := e.windows[ev.Grid]; ok {
			w.Hide()
		}
	case WindowClose:
		e.closeWindow(ev.Grid)
	case MessageSetPosition:
		e.setMessagePosition(ev)
	case WindowViewport:
		if w, ok := e.windows[ev.Grid]; ok {
			if ev.ScrollDelta != nil {
				w.UpdateViewport(*ev.ScrollDelta)
			}
		}
	}
}

func (e *Editor) resizeGrid(ev Resize) {
	w, ok := e.windows[ev.Grid]
	if !ok {
		e.windows[ev.Grid] = NewWindow(
			ev.Grid, ev.Width, ev.Height, nil, 0, 0, e.styles, e.batcher, e.logger,
		)
		return
	}
	if ev.Width == w.Grid.Width && ev.Height == w.Grid.Height {
		return
	}
	if a := w.AnchorInfo; a != nil && a.AnchorType != AnchorAbsolute {
		// An anchored float keeps its anchored corner across a resize, so
		// its top-left is re-derived from the anchor.
		parentLeft, parentTop := e.windowTopLeft(a.AnchorGridID)
		left, top := anchoredTopLeft(a.AnchorType, a.AnchorLeft, a.AnchorTop, ev.Width, ev.Height)
		w.Position(ev.Width, ev.Height, a, left+parentLeft, top+parentTop)
		return
	}
	w.Resize(ev.Width, ev.Height)
}

func (e *Editor) setWindowPosition(ev WindowPosition) {
	left := float64(ev.StartColumn)
	top := float64(ev.StartRow)
	if w, ok := e.windows[ev.Grid]; ok {
		w.WindowType = WindowTypeEditor
		w.Position(ev.Width, ev.Height, nil, left, top)
		w.Show()
		return
	}
	e.windows[ev.Grid] = NewWindow(
		ev.Grid, ev.Width, ev.Height, nil, left, top, e.styles, e.batcher, e.logger,
	)
}

func (e *Editor) setWindowFloatPosition(ev WindowFloatPosition) {
	w, ok := e.windows[ev.Grid]
	if !ok {
		e.logger.Warn("win_float_pos for unknown grid", "grid", ev.Grid)
		return
	}

	width := w.Grid.Width
	height := w.Grid.Height

	var left, top float64
	if ev.Anchor == AnchorAbsolute && ev.ScreenRow != nil && ev.ScreenColumn != nil {
		// The remote editor composed this window itself; its position is
		// absolute in root-grid cells.
		left = float64(*ev.ScreenColumn)
		top = float64(*ev.ScreenRow)
	} else {
		parentLeft, parentTop := e.windowTopLeft(ev.AnchorGrid)
		left, top = anchoredTopLeft(ev.Anchor, ev.AnchorColumn, ev.AnchorRow, width, height)
		left += parentLeft
		top += parentTop
	}

	order := e.nextSortOrder(w, ev.ZIndex)
	w.WindowType = WindowTypeEditor
	w.Position(width, height, &AnchorInfo{
		AnchorGridID: ev.AnchorGrid,
		AnchorType:   ev.Anchor,
		AnchorLeft:   ev.AnchorColumn,
		AnchorTop:    ev.AnchorRow,
		SortOrder:    order,
	}, left, top)
	w.Show()
}

func (e *Editor) setMessagePosition(ev MessageSetPosition) {
	if ev.Grid <= 1 {
		// The root grid is never a message window; some remote editors
		// emit a stray msg_set_pos for it during startup.
		e.logger.Debug("ignoring msg_set_pos for root grid", "grid", ev.Grid)
		return
	}

	z := messageZIndex
	if ev.ZIndex != nil && *ev.ZIndex > z {
		z = *ev.ZIndex
	}

	parentWidth := 0
	if root, ok := e.windows[1]; ok {
		parentWidth = root.Grid.Width
	}

	w, ok := e.windows[ev.Grid]
	if !ok {
		w = NewWindow(ev.Grid, parentWidth, 1, nil, 0, float64(ev.Row), e.styles, e.batcher, e.logger)
		e.windows[ev.Grid] = w
	}

	order := e.nextSortOrder(w, z)
	w.WindowType = WindowTypeMessage
	w.ScrolledMessage = ev.Scrolled
	w.Position(w.Grid.Width, w.Grid.Height, &AnchorInfo{
		AnchorGridID: 1,
		AnchorType:   AnchorNorthWest,
		AnchorLeft:   0,
		AnchorTop:    float64(ev.Row),
		SortOrder:    order,
	}, 0, float64(ev.Row))
	w.Show()
}

// nextSortOrder preserves a window's composition order while its z-index is
// stable, so repositioning a float does not shuffle it above siblings; a
// z-index change re-raises it.
func (e *Editor) nextSortOrder(w *Window, zIndex int) SortOrder {
	if w.AnchorInfo != nil && w.AnchorInfo.SortOrder.ZIndex == zIndex {
		return w.AnchorInfo.SortOrder
	}
	e.compositionOrder++
	return SortOrder{ZIndex: zIndex, CompositionOrder: e.compositionOrder}
}

// windowTopLeft resolves a grid's top-left corner in root-grid cells.
// Window positions are stored absolute, so no anchor recursion is needed;
// an unknown grid anchors at the origin.
func (e *Editor) windowTopLeft(gridID int64) (float64, float64) {
	if w, ok := e.windows[gridID]; ok {
		return w.GridPosition()
	}
	e.logger.Warn("anchor grid unknown, anchoring to origin", "grid", gridID)
	return 0, 0
}

// anchoredTopLeft converts an anchor-corner position into the window's
// top-left corner.
func anchoredTopLeft(anchor WindowAnchor, column, row float64, width, height int) (float64, float64) {
	left := column
	top := row
	switch anchor {
	case AnchorNorthEast:
		left -= float64(width)
	case AnchorSouthWest:
		top -= float64(height)
	case AnchorSouthEast:
		left -= float64(width)
		top -= float64(height)
	}
	return left, top
}

func (e *Editor) setCursorPosition(gridID int64, row, column int) {
	w, ok := e.windows[gridID]
	if !ok {
		e.logger.Warn("cursor_goto for unknown grid", "grid", gridID)
		return
	}

	// Moving the cursor into a floating window raises it above its z-index
	// siblings.
	if w.AnchorInfo != nil && e.cursor.ParentWindowID != gridID {
		e.compositionOrder++
		w.AnchorInfo.SortOrder.CompositionOrder = e.compositionOrder
		w.sendUpdatedPosition()
	}

	e.cursor.ParentWindowID = gridID
	e.cursor.GridPosition = [2]int{column, row}
	e.sendCursorInfo()
}

func (e *Editor) sendCursorInfo() {
	if w, ok := e.windows[e.cursor.ParentWindowID]; ok {
		text, doubleWidth := w.CursorCell(e.cursor.GridPosition[0], e.cursor.GridPosition[1])
		e.cursor.Text = text
		e.cursor.DoubleWidth = doubleWidth
	}
	e.batcher.Queue(UpdateCursor{Cursor: e.cursor})
}

func (e *Editor) closeWindow(gridID int64) {
	if w, ok := e.windows[gridID]; ok {
		w.Close()
		delete(e.windows, gridID)
	}
}

// redrawEverything forces every window to clear and re-emit its content,
// used when the default colors change underneath cached surfaces. Windows
// are visited in grid-id order so batches stay deterministic.
func (e *Editor) redrawEverything() {
	ids := make([]int64, 0, len(e.windows))
	for id := range e.windows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		w := e.windows[id]
		w.Grid.ShouldClear = true
		w.Redraw()
	}
}
