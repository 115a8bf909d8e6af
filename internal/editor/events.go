package editor

import "nvgrid/internal/style"

// RedrawEvent is one parsed entry of a remote "redraw" notification batch.
// The set of variants is closed: the bridge maps unknown event names to
// nothing and logs them, so the dispatcher never sees an event outside this
// list.
type RedrawEvent interface {
	isRedrawEvent()
}

// SetTitle updates the session title.
type SetTitle struct {
	Title string
}

// ModeInfoSet replaces the cursor mode list.
type ModeInfoSet struct {
	CursorModes []CursorMode
}

// OptionSet reports a UI-relevant option change.
type OptionSet struct {
	Name  string
	Value any
}

// ModeChange switches the active cursor mode.
type ModeChange struct {
	Mode      string
	ModeIndex int
}

// BusyStart hides the cursor while the remote editor is busy.
type BusyStart struct{}

// BusyStop shows the cursor again.
type BusyStop struct{}

// Flush marks the end of an atomic redraw batch; it is the only event that
// triggers a frame.
type Flush struct{}

// Resize changes a grid's dimensions.
type Resize struct {
	Grid   int64
	Width  int
	Height int
}

// DefaultColorsSet replaces the default foreground/background/special
// colors.
type DefaultColorsSet struct {
	Colors style.Colors
}

// HighlightAttributesDefine interns a style under an id.
type HighlightAttributesDefine struct {
	ID    style.ID
	Style style.Style
}

// GridLineCell is one run of a grid_line event: a grapheme cluster, an
// optional highlight id (nil inherits the previous cell's id within the
// event), and a repeat count. Repeat 0 is an explicit no-op, not "once";
// the bridge fills in 1 when the count is absent on the wire.
type GridLineCell struct {
	Text        string
	HighlightID *style.ID
	Repeat      int
}

// GridLine writes a run of cells into one row of a grid.
type GridLine struct {
	Grid        int64
	Row         int
	ColumnStart int
	Cells       []GridLineCell
}

// Clear wipes a grid.
type Clear struct {
	Grid int64
}

// Destroy removes a grid and its window.
type Destroy struct {
	Grid int64
}

// CursorGoto moves the cursor to a cell of a grid.
type CursorGoto struct {
	Grid   int64
	Row    int
	Column int
}

// Scroll shifts a rectangular region of a grid.
type Scroll struct {
	Grid    int64
	Top     int
	Bottom  int
	Left    int
	Right   int
	Rows    int
	Columns int
}

// WindowAnchor is the corner of a floating window that its anchor position
// refers to.
type WindowAnchor int

const (
	AnchorNorthWest WindowAnchor = iota
	AnchorNorthEast
	AnchorSouthWest
	AnchorSouthEast
	// AnchorAbsolute positions relative to the root grid in grid units,
	// used for windows the remote editor composites itself.
	AnchorAbsolute
)

// WindowPosition docks a grid as a regular window at a cell position.
type WindowPosition struct {
	Grid        int64
	StartRow    int
	StartColumn int
	Width       int
	Height      int
}

// WindowFloatPosition positions a grid as a floating window anchored to
// another grid.
type WindowFloatPosition struct {
	Grid         int64
	Anchor       WindowAnchor
	AnchorGrid   int64
	AnchorRow    float64
	AnchorColumn float64
	Focusable    bool
	ZIndex       int
	ComposeIndex *int
	ScreenRow    *int
	ScreenColumn *int
	Mouse        *bool
}

// WindowHide hides a window without destroying its grid.
type WindowHide struct {
	Grid int64
}

// WindowClose closes a window.
type WindowClose struct {
	Grid int64
}

// MessageSetPosition positions the message grid. ZIndex is nil on older
// remote editors that do not send one.
type MessageSetPosition struct {
	Grid     int64
	Row      int
	Scrolled bool
	ZIndex   *int
}

// WindowViewport reports viewport movement within a window, carrying the
// scroll delta used for smooth scrolling. Only the delta is consumed; the
// remaining viewport fields exist on the wire but do not affect drawing.
type WindowViewport struct {
	Grid        int64
	TopLine     float64
	BottomLine  float64
	ScrollDelta *float64
}

func (SetTitle) isRedrawEvent()                  {}
func (ModeInfoSet) isRedrawEvent()               {}
func (OptionSet) isRedrawEvent()                 {}
func (ModeChange) isRedrawEvent()                {}
func (BusyStart) isRedrawEvent()                 {}
func (BusyStop) isRedrawEvent()                  {}
func (Flush) isRedrawEvent()                     {}
func (Resize) isRedrawEvent()                    {}
func (DefaultColorsSet) isRedrawEvent()          {}
func (HighlightAttributesDefine) isRedrawEvent() {}
func (GridLine) isRedrawEvent()                  {}
func (Clear) isRedrawEvent()                     {}
func (Destroy) isRedrawEvent()                   {}
func (CursorGoto) isRedrawEvent()                {}
func (Scroll) isRedrawEvent()                    {}
func (WindowPosition) isRedrawEvent()            {}
func (WindowFloatPosition) isRedrawEvent()       {}
func (WindowHide) isRedrawEvent()                {}
func (WindowClose) isRedrawEvent()               {}
func (MessageSetPosition) isRedrawEvent()        {}
func (WindowViewport) isRedrawEvent()            {}
