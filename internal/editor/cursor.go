package editor

import "nvgrid/internal/style"

// CursorShape is the glyph-box shape of the cursor.
type CursorShape int

const (
	ShapeBlock CursorShape = iota
	ShapeHorizontal
	ShapeVertical
)

// CursorShapeFromName maps the wire name of a cursor shape.
func CursorShapeFromName(name string) (CursorShape, bool) {
	switch name {
	case "block":
		return ShapeBlock, true
	case "horizontal":
		return ShapeHorizontal, true
	case "vertical":
		return ShapeVertical, true
	}
	return ShapeBlock, false
}

// CursorMode is one entry of the mode_info_set list. All fields are
// optional on the wire; nil fields leave the current cursor value alone
// when the mode activates.
type CursorMode struct {
	Shape          *CursorShape
	CellPercentage *float32
	BlinkWait      *uint64
	BlinkOn        *uint64
	BlinkOff       *uint64
	StyleID        *style.ID
}

// Cursor is the resolved cursor state sent to the renderer. It carries the
// text under the cursor so block cursors can repaint the glyph in inverted
// colors without consulting grid state.
type Cursor struct {
	// GridPosition is (column, row) within the parent window.
	GridPosition   [2]int
	ParentWindowID int64
	Shape          CursorShape
	CellPercentage float32
	BlinkWait      uint64
	BlinkOn        uint64
	BlinkOff       uint64
	Style          *style.Style
	Enabled        bool
	DoubleWidth    bool
	Text           string
}

// NewCursor returns an enabled block cursor at the origin.
func NewCursor() Cursor {
	return Cursor{Shape: ShapeBlock, Enabled: true}
}

// Foreground resolves the color of the glyph under the cursor: the cursor
// style's foreground, falling back to the inverted default (the default
// background).
func (c *Cursor) Foreground(defaults *style.Colors) style.RGBA {
	if c.Style != nil && c.Style.Colors.Foreground != nil {
		return *c.Style.Colors.Foreground
	}
	if defaults.Background != nil {
		return *defaults.Background
	}
	return style.RGBA{A: 1}
}

// Background resolves the cursor block color: the cursor style's
// background, falling back to the inverted default (the default
// foreground).
func (c *Cursor) Background(defaults *style.Colors) style.RGBA {
	if c.Style != nil && c.Style.Colors.Background != nil {
		return *c.Style.Colors.Background
	}
	if defaults.Foreground != nil {
		return *defaults.Foreground
	}
	return style.RGBA{R: 1, G: 1, B: 1, A: 1}
}

// ChangeMode applies a cursor mode, keeping any value the mode leaves
// unspecified.
func (c *Cursor) ChangeMode(mode CursorMode, styles *style.Registry) {
	if mode.Shape != nil {
		c.Shape = *mode.Shape
	}
	if mode.CellPercentage != nil {
		c.CellPercentage = *mode.CellPercentage
	}
	if mode.BlinkWait != nil {
		c.BlinkWait = *mode.BlinkWait
	}
	if mode.BlinkOn != nil {
		c.BlinkOn = *mode.BlinkOn
	}
	if mode.BlinkOff != nil {
		c.BlinkOff = *mode.BlinkOff
	}
	if mode.StyleID != nil {
		c.Style = styles.Resolve(*mode.StyleID)
	}
}
