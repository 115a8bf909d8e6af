package render

import (
	"io"
	"testing"

	"charm.land/log/v2"

	"nvgrid/internal/editor"
	"nvgrid/internal/style"
)

func newTestRenderer(font Dimensions) *Renderer {
	settings := DefaultSettings()
	settings.PositionAnimationLength = 0
	return NewRenderer(SoftwareFactory{}, font, settings, log.New(io.Discard))
}

func position(grid int64, left, top float64, width, height int) editor.DrawCommand {
	return editor.WindowDraw{GridID: grid, Command: editor.PositionCommand{
		GridLeft: left, GridTop: top, Width: width, Height: height,
	}}
}

func floatPosition(grid int64, left, top float64, width, height int, order editor.SortOrder) editor.DrawCommand {
	return editor.WindowDraw{GridID: grid, Command: editor.PositionCommand{
		GridLeft: left, GridTop: top, Width: width, Height: height,
		Floating: true, SortOrder: &order,
	}}
}

// bgLine fills one whole row with the style's background; the text is all
// spaces so the glyph pass paints nothing.
func bgLine(grid int64, row, width int, st *style.Style) editor.DrawCommand {
	text := ""
	for i := 0; i < width; i++ {
		text += " "
	}
	return editor.WindowDraw{GridID: grid, Command: editor.DrawLineCommand{
		Row:  row,
		Text: text,
		Fragments: []editor.LineFragment{
			{TextStart: 0, TextEnd: width, Left: 0, Width: width, Style: st},
		},
	}}
}

func bgStyle(c style.RGBA) *style.Style {
	return &style.Style{Colors: style.Colors{Background: &c}}
}

func TestHandleBatchStateCommands(t *testing.T) {
	r := newTestRenderer(Dimensions{Width: 1, Height: 1})
	cursor := editor.NewCursor()
	cursor.ParentWindowID = 3
	newBG := style.RGBA{B: 1, A: 1}

	r.HandleBatch([]editor.DrawCommand{
		editor.TitleChanged{Title: "scratch"},
		editor.ModeChanged{Mode: "insert", ModeIndex: 1},
		editor.DefaultStyleChanged{Colors: style.Colors{Background: &newBG}},
		editor.UpdateCursor{Cursor: cursor},
		editor.UIReady{},
	})

	if r.Title() != "scratch" {
		t.Errorf("title = %q", r.Title())
	}
	if !r.UIReady() {
		t.Error("UIReady not recorded")
	}
	if r.Cursor().ParentWindowID != 3 {
		t.Errorf("cursor parent = %d", r.Cursor().ParentWindowID)
	}
	if r.ctx.DefaultColors.Background == nil || *r.ctx.DefaultColors.Background != newBG {
		t.Error("default colors not replaced")
	}
}

func TestWindowCreatedOnlyByPosition(t *testing.T) {
	r := newTestRenderer(Dimensions{Width: 1, Height: 1})

	// A draw for a never-positioned grid must be dropped, not create a
	// zero-sized window.
	r.HandleBatch([]editor.DrawCommand{
		bgLine(5, 0, 1, bgStyle(style.RGBA{R: 1, A: 1})),
	})
	if len(r.windows) != 0 {
		t.Fatalf("windows = %d, want none", len(r.windows))
	}

	r.HandleBatch([]editor.DrawCommand{position(5, 0, 0, 4, 2)})
	if len(r.windows) != 1 {
		t.Fatalf("windows = %d, want one", len(r.windows))
	}
}

func TestCloseReleasesWindowAndAllowsReuse(t *testing.T) {
	r := newTestRenderer(Dimensions{Width: 1, Height: 1})
	r.HandleBatch([]editor.DrawCommand{position(2, 0, 0, 4, 2)})

	r.HandleBatch([]editor.DrawCommand{
		editor.WindowDraw{GridID: 2, Command: editor.CloseCommand{}},
		// A straggler for the closed grid must be ignored.
		bgLine(2, 0, 4, bgStyle(style.RGBA{R: 1, A: 1})),
	})
	if len(r.windows) != 0 {
		t.Fatalf("windows = %d after close, want none", len(r.windows))
	}

	// The grid id can come right back.
	r.HandleBatch([]editor.DrawCommand{position(2, 1, 1, 2, 2)})
	if w, ok := r.windows[2]; !ok || w.gridWidth != 2 {
		t.Error("reused grid id did not create a fresh window")
	}
}

func TestViewportCommandLeavesWindowUntouched(t *testing.T) {
	r := newTestRenderer(Dimensions{Width: 1, Height: 1})
	red := style.RGBA{R: 1, A: 1}
	r.HandleBatch([]editor.DrawCommand{
		position(1, 0, 0, 4, 1),
		bgLine(1, 0, 4, bgStyle(red)),
	})

	surface := NewSoftwareSurface(4, 1)
	r.Draw(surface.Canvas(), 0)
	before := pixelAt(surface, 0, 0)

	r.HandleBatch([]editor.DrawCommand{
		editor.WindowDraw{GridID: 1, Command: editor.ViewportCommand{ScrollDelta: 3}},
	})
	r.Draw(surface.Canvas(), 0)

	if got := pixelAt(surface, 0, 0); got != before {
		t.Errorf("viewport command changed pixels: %v -> %v", before, got)
	}
	if w := r.windows[1]; w.Hidden || w.gridWidth != 4 || w.gridHeight != 1 {
		t.Errorf("viewport command altered window state: %+v", w)
	}
}

func TestDrawLinePaintsBackgroundAndGlyphs(t *testing.T) {
	r := newTestRenderer(Dimensions{Width: 1, Height: 1})
	red := style.RGBA{R: 1, A: 1}
	green := style.RGBA{G: 1, A: 1}
	st := &style.Style{Colors: style.Colors{Foreground: &green, Background: &red}}

	r.HandleBatch([]editor.DrawCommand{
		position(1, 0, 0, 2, 1),
		editor.WindowDraw{GridID: 1, Command: editor.DrawLineCommand{
			Row:  0,
			Text: "a ",
			Fragments: []editor.LineFragment{
				{TextStart: 0, TextEnd: 2, Left: 0, Width: 2, Style: st},
			},
		}},
	})

	root := NewSoftwareSurface(2, 1)
	r.Draw(root.Canvas(), 0)

	if got := pixelAt(root, 0, 0); got != [4]uint8{0, 255, 0, 255} {
		t.Errorf("glyph cell = %v, want foreground green", got)
	}
	if got := pixelAt(root, 1, 0); got != [4]uint8{255, 0, 0, 255} {
		t.Errorf("space cell = %v, want background red", got)
	}
}

func TestScrollBlitsPureVerticalShift(t *testing.T) {
	r := newTestRenderer(Dimensions{Width: 1, Height: 1})
	red := bgStyle(style.RGBA{R: 1, A: 1})
	green := bgStyle(style.RGBA{G: 1, A: 1})
	blue := bgStyle(style.RGBA{B: 1, A: 1})

	r.HandleBatch([]editor.DrawCommand{
		position(1, 0, 0, 1, 3),
		bgLine(1, 0, 1, red),
		bgLine(1, 1, 1, green),
		bgLine(1, 2, 1, blue),
		editor.WindowDraw{GridID: 1, Command: editor.ScrollCommand{
			Top: 0, Bottom: 3, Left: 0, Right: 1, Rows: 1, Cols: 0,
		}},
	})

	root := NewSoftwareSurface(1, 3)
	r.Draw(root.Canvas(), 0)

	if got := pixelAt(root, 0, 0); got != [4]uint8{0, 255, 0, 255} {
		t.Errorf("row 0 = %v, want scrolled-up green", got)
	}
	if got := pixelAt(root, 0, 1); got != [4]uint8{0, 0, 255, 255} {
		t.Errorf("row 1 = %v, want scrolled-up blue", got)
	}
}

func TestDrawCompositesFloatingOverRoot(t *testing.T) {
	r := newTestRenderer(Dimensions{Width: 1, Height: 1})
	blue := bgStyle(style.RGBA{B: 1, A: 1})

	r.HandleBatch([]editor.DrawCommand{
		position(1, 0, 0, 3, 1),
		floatPosition(2, 1, 0, 1, 1, editor.SortOrder{ZIndex: 50}),
		bgLine(2, 0, 1, blue),
	})

	root := NewSoftwareSurface(3, 1)
	details := r.Draw(root.Canvas(), 0)

	if len(details) != 2 {
		t.Fatalf("details = %d entries, want 2", len(details))
	}
	if details[0].ID != 1 || details[0].FloatingOrder != nil {
		t.Errorf("first detail = %+v, want docked window 1", details[0])
	}
	if details[1].ID != 2 || details[1].FloatingOrder == nil {
		t.Errorf("second detail = %+v, want floating window 2", details[1])
	}

	if got := pixelAt(root, 1, 0); got != [4]uint8{0, 0, 255, 255} {
		t.Errorf("pixel under float = %v, want float background", got)
	}
	if got := pixelAt(root, 0, 0); got != [4]uint8{0, 0, 0, 255} {
		t.Errorf("root pixel = %v, want default background", got)
	}
}

func TestDrawSkipsHiddenWindows(t *testing.T) {
	r := newTestRenderer(Dimensions{Width: 1, Height: 1})
	r.HandleBatch([]editor.DrawCommand{
		position(1, 0, 0, 2, 1),
		bgLine(1, 0, 2, bgStyle(style.RGBA{R: 1, A: 1})),
		editor.WindowDraw{GridID: 1, Command: editor.HideCommand{}},
	})

	root := NewSoftwareSurface(2, 1)
	details := r.Draw(root.Canvas(), 0)
	if len(details) != 0 {
		t.Fatalf("details = %d entries for hidden window, want none", len(details))
	}
	if got := pixelAt(root, 0, 0); got != [4]uint8{0, 0, 0, 255} {
		t.Errorf("pixel = %v, want default background only", got)
	}
}

func TestFloatingLayersSortedByOrder(t *testing.T) {
	r := newTestRenderer(Dimensions{Width: 1, Height: 1})
	red := bgStyle(style.RGBA{R: 1, A: 1})
	green := bgStyle(style.RGBA{G: 1, A: 1})

	// Overlapping floats join one layer; within it, the later composition
	// order draws on top of the shared pixels.
	r.HandleBatch([]editor.DrawCommand{
		position(1, 0, 0, 4, 1),
		floatPosition(2, 0, 0, 2, 1, editor.SortOrder{ZIndex: 50, CompositionOrder: 1}),
		bgLine(2, 0, 2, red),
		floatPosition(3, 1, 0, 2, 1, editor.SortOrder{ZIndex: 50, CompositionOrder: 2}),
		bgLine(3, 0, 2, green),
	})

	root := NewSoftwareSurface(4, 1)
	r.Draw(root.Canvas(), 0)

	if got := pixelAt(root, 0, 0); got != [4]uint8{255, 0, 0, 255} {
		t.Errorf("pixel owned by lower float = %v, want red", got)
	}
	if got := pixelAt(root, 1, 0); got != [4]uint8{0, 255, 0, 255} {
		t.Errorf("contested pixel = %v, want later composition order on top", got)
	}
	if got := pixelAt(root, 2, 0); got != [4]uint8{0, 255, 0, 255} {
		t.Errorf("pixel owned by upper float = %v, want green", got)
	}
}

func TestDrawCursorBlockFillsCell(t *testing.T) {
	font := Dimensions{Width: 4, Height: 2}
	r := newTestRenderer(font)
	cursor := editor.NewCursor()
	cursor.ParentWindowID = 1
	cursor.GridPosition = [2]int{1, 0}

	r.HandleBatch([]editor.DrawCommand{
		position(1, 0, 0, 4, 1),
		editor.UpdateCursor{Cursor: cursor},
	})

	root := NewSoftwareSurface(16, 2)
	r.Draw(root.Canvas(), 0)

	// Block cursor over default colors paints the inverted default
	// background, i.e. the default foreground.
	if got := pixelAt(root, 4, 0); got != [4]uint8{255, 255, 255, 255} {
		t.Errorf("cursor cell = %v, want inverted default", got)
	}
	if got := pixelAt(root, 0, 0); got != [4]uint8{0, 0, 0, 255} {
		t.Errorf("cell before cursor = %v, want untouched", got)
	}
}

func TestDrawCursorVerticalShape(t *testing.T) {
	font := Dimensions{Width: 4, Height: 2}
	r := newTestRenderer(font)
	cursor := editor.NewCursor()
	cursor.ParentWindowID = 1
	cursor.GridPosition = [2]int{1, 0}
	cursor.Shape = editor.ShapeVertical
	cursor.CellPercentage = 0.25

	r.HandleBatch([]editor.DrawCommand{
		position(1, 0, 0, 4, 1),
		editor.UpdateCursor{Cursor: cursor},
	})

	root := NewSoftwareSurface(16, 2)
	r.Draw(root.Canvas(), 0)

	if got := pixelAt(root, 4, 0); got != [4]uint8{255, 255, 255, 255} {
		t.Errorf("bar pixel = %v, want painted", got)
	}
	if got := pixelAt(root, 6, 0); got != [4]uint8{0, 0, 0, 255} {
		t.Errorf("pixel past bar width = %v, want untouched", got)
	}
}

func TestDrawCursorSkippedWithoutParent(t *testing.T) {
	r := newTestRenderer(Dimensions{Width: 1, Height: 1})
	cursor := editor.NewCursor()
	cursor.ParentWindowID = 9

	r.HandleBatch([]editor.DrawCommand{
		position(1, 0, 0, 2, 1),
		editor.UpdateCursor{Cursor: cursor},
	})

	root := NewSoftwareSurface(2, 1)
	r.Draw(root.Canvas(), 0)
	if got := pixelAt(root, 0, 0); got != [4]uint8{0, 0, 0, 255} {
		t.Errorf("pixel = %v, cursor without a parent window must not draw", got)
	}
}
