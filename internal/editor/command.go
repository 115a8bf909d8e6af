package editor

import "nvgrid/internal/style"

// DrawCommand is one unit of work handed from the editor thread to the
// renderer. Commands are grouped into per-flush batches and replayed by the
// renderer strictly in order.
type DrawCommand interface {
	isDrawCommand()
}

// WindowDraw targets a single window's draw state.
type WindowDraw struct {
	GridID  int64
	Command WindowCommand
}

// UpdateCursor carries a fully resolved cursor snapshot.
type UpdateCursor struct {
	Cursor Cursor
}

// ModeChanged reports the active mode to the renderer (cursor shape and
// blink come from the mode list).
type ModeChanged struct {
	Mode      string
	ModeIndex int
}

// DefaultStyleChanged replaces the default colors used wherever a style has
// no explicit override.
type DefaultStyleChanged struct {
	Colors style.Colors
}

// TitleChanged carries the session title.
type TitleChanged struct {
	Title string
}

// UIReady is sent once, on the first flush, when the remote editor has
// produced a complete first frame.
type UIReady struct{}

func (WindowDraw) isDrawCommand()          {}
func (UpdateCursor) isDrawCommand()        {}
func (ModeChanged) isDrawCommand()         {}
func (DefaultStyleChanged) isDrawCommand() {}
func (TitleChanged) isDrawCommand()        {}
func (UIReady) isDrawCommand()             {}

// SortOrder fixes the stacking of floating windows: primary key is the
// remote editor's z-index, ties broken by creation/raise order.
type SortOrder struct {
	ZIndex           int
	CompositionOrder int64
}

// Less reports whether s sorts below o (drawn earlier).
func (s SortOrder) Less(o SortOrder) bool {
	if s.ZIndex != o.ZIndex {
		return s.ZIndex < o.ZIndex
	}
	return s.CompositionOrder < o.CompositionOrder
}

// WindowCommand is a draw command scoped to one window.
type WindowCommand interface {
	isWindowCommand()
}

// PositionCommand moves and resizes a window. GridLeft/GridTop are in grid
// cells relative to the root grid and may be fractional for floating
// windows. SortOrder is nil for docked windows.
type PositionCommand struct {
	GridLeft  float64
	GridTop   float64
	Width     int
	Height    int
	Floating  bool
	SortOrder *SortOrder
}

// LineFragment is one run of uniformly styled text inside a DrawLine. The
// fragment's text is Text[TextStart:TextEnd] of the owning DrawLineCommand;
// fragments share the line's backing string instead of carrying copies.
type LineFragment struct {
	TextStart int
	TextEnd   int
	// Left is the fragment's starting column within the window.
	Left int
	// Width is the fragment's column span.
	Width int
	// Style is the resolved style handle; nil means default colors.
	Style *style.Style
}

// DrawLineCommand redraws the written spans of one row.
type DrawLineCommand struct {
	Row       int
	Text      string
	Fragments []LineFragment
}

// ScrollCommand reports a region shift. A renderer may honor a pure
// vertical shift (Cols == 0) with a pixel blit of the region.
type ScrollCommand struct {
	Top    int
	Bottom int
	Left   int
	Right  int
	Rows   int
	Cols   int
}

// ClearCommand wipes the window's surfaces to the default background.
type ClearCommand struct{}

// ShowCommand makes the window visible.
type ShowCommand struct{}

// HideCommand hides the window without discarding its surfaces.
type HideCommand struct{}

// CloseCommand destroys the window and releases its surfaces before the
// grid id can be reused.
type CloseCommand struct{}

// ViewportCommand carries the smooth-scroll delta of a viewport move.
type ViewportCommand struct {
	ScrollDelta float64
}

func (PositionCommand) isWindowCommand() {}
func (DrawLineCommand) isWindowCommand() {}
func (ScrollCommand) isWindowCommand()   {}
func (ClearCommand) isWindowCommand()    {}
func (ShowCommand) isWindowCommand()     {}
func (HideCommand) isWindowCommand()     {}
func (CloseCommand) isWindowCommand()    {}
func (ViewportCommand) isWindowCommand() {}
