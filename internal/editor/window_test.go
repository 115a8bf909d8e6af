package editor_test

import (
	"io"
	"reflect"
	"testing"

	"charm.land/log/v2"

	"nvgrid/internal/chanutil"
	"nvgrid/internal/editor"
	"nvgrid/internal/style"
)

type windowFixture struct {
	window  *editor.Window
	batcher *editor.Batcher
	styles  *style.Registry
	out     *chanutil.Unbounded[[]editor.DrawCommand]
}

func newWindowFixture(t *testing.T, width, height int) *windowFixture {
	t.Helper()
	logger := log.New(io.Discard)
	out := chanutil.NewUnbounded[[]editor.DrawCommand]()
	batcher := editor.NewBatcher(out)
	styles := style.NewRegistry(logger)
	w := editor.NewWindow(1, width, height, nil, 0, 0, styles, batcher, logger)

	f := &windowFixture{window: w, batcher: batcher, styles: styles, out: out}
	f.commands(t) // drop the construction-time Position command
	return f
}

// commands flushes the in-progress batch and returns everything queued
// since the last call, flattened.
func (f *windowFixture) commands(t *testing.T) []editor.WindowCommand {
	t.Helper()
	f.batcher.SendBatch()
	var cmds []editor.WindowCommand
	for _, batch := range f.out.Drain() {
		for _, cmd := range batch {
			wd, ok := cmd.(editor.WindowDraw)
			if !ok {
				t.Fatalf("unexpected command type %T", cmd)
			}
			cmds = append(cmds, wd.Command)
		}
	}
	return cmds
}

func drawLines(cmds []editor.WindowCommand) []editor.DrawLineCommand {
	var lines []editor.DrawLineCommand
	for _, cmd := range cmds {
		if dl, ok := cmd.(editor.DrawLineCommand); ok {
			lines = append(lines, dl)
		}
	}
	return lines
}

func hl(id style.ID) *style.ID {
	return &id
}

func fragmentText(dl editor.DrawLineCommand, i int) string {
	f := dl.Fragments[i]
	return dl.Text[f.TextStart:f.TextEnd]
}

// =============================================================================
// grid_line handling
// =============================================================================

// A run with an explicit default highlight followed by an inheriting repeat
// run collapses into a single fragment covering all written cells.
func TestDrawGridLineSingleFragmentRun(t *testing.T) {
	f := newWindowFixture(t, 10, 3)

	f.window.DrawGridLine(1, 2, []editor.GridLineCell{
		{Text: "a", HighlightID: hl(0), Repeat: 1},
		{Text: "a", HighlightID: nil, Repeat: 3},
	})

	lines := drawLines(f.commands(t))
	if len(lines) != 1 {
		t.Fatalf("DrawLine count = %d, want 1", len(lines))
	}
	dl := lines[0]
	if dl.Row != 1 {
		t.Errorf("row = %d, want 1", dl.Row)
	}
	if len(dl.Fragments) != 1 {
		t.Fatalf("fragment count = %d, want 1: %+v", len(dl.Fragments), dl.Fragments)
	}
	frag := dl.Fragments[0]
	if frag.Left != 2 || frag.Width != 4 {
		t.Errorf("fragment span = (left %d, width %d), want (2, 4)", frag.Left, frag.Width)
	}
	if frag.Style != nil {
		t.Errorf("fragment style = %+v, want default (nil)", frag.Style)
	}
	if got := fragmentText(dl, 0); got != "aaaa" {
		t.Errorf("fragment text = %q, want %q", got, "aaaa")
	}
}

func TestDrawGridLineRepeatZeroIsNoop(t *testing.T) {
	f := newWindowFixture(t, 10, 3)

	f.window.DrawGridLine(1, 0, []editor.GridLineCell{
		{Text: "a", HighlightID: hl(0), Repeat: 0},
	})

	if cmds := f.commands(t); len(cmds) != 0 {
		t.Errorf("commands = %+v, want none for repeat 0", cmds)
	}
}

func TestDrawGridLineStyleChangeSplitsFragments(t *testing.T) {
	f := newWindowFixture(t, 10, 1)
	f.styles.SetStyle(1, style.Style{Bold: true})

	f.window.DrawGridLine(0, 0, []editor.GridLineCell{
		{Text: "a", HighlightID: hl(1), Repeat: 2},
		{Text: "b", HighlightID: hl(0), Repeat: 2},
	})

	lines := drawLines(f.commands(t))
	if len(lines) != 1 {
		t.Fatalf("DrawLine count = %d, want 1", len(lines))
	}
	dl := lines[0]
	if len(dl.Fragments) != 2 {
		t.Fatalf("fragment count = %d, want 2: %+v", len(dl.Fragments), dl.Fragments)
	}
	if dl.Fragments[0].Style == nil || !dl.Fragments[0].Style.Bold {
		t.Errorf("fragment 0 style = %+v, want bold", dl.Fragments[0].Style)
	}
	if fragmentText(dl, 0) != "aa" || fragmentText(dl, 1) != "bb" {
		t.Errorf("fragment texts = %q, %q", fragmentText(dl, 0), fragmentText(dl, 1))
	}
}

func TestDrawGridLineUnknownHighlightFallsBack(t *testing.T) {
	f := newWindowFixture(t, 10, 1)

	f.window.DrawGridLine(0, 0, []editor.GridLineCell{
		{Text: "x", HighlightID: hl(99), Repeat: 1},
	})

	lines := drawLines(f.commands(t))
	if len(lines) != 1 {
		t.Fatalf("DrawLine count = %d, want 1", len(lines))
	}
	if s := lines[0].Fragments[0].Style; s != nil {
		t.Errorf("fragment style = %+v, want default fallback", s)
	}
}

func TestDrawGridLineOutOfBoundsRowIsDropped(t *testing.T) {
	f := newWindowFixture(t, 10, 3)

	f.window.DrawGridLine(7, 0, []editor.GridLineCell{
		{Text: "a", HighlightID: hl(0), Repeat: 1},
	})

	if cmds := f.commands(t); len(cmds) != 0 {
		t.Errorf("commands = %+v, want none for out-of-bounds row", cmds)
	}
}

func TestDrawGridLinePastWidthStopsWriting(t *testing.T) {
	f := newWindowFixture(t, 4, 1)

	f.window.DrawGridLine(0, 2, []editor.GridLineCell{
		{Text: "a", HighlightID: hl(0), Repeat: 5},
	})

	lines := drawLines(f.commands(t))
	if len(lines) != 1 {
		t.Fatalf("DrawLine count = %d, want 1", len(lines))
	}
	frag := lines[0].Fragments[0]
	if frag.Left != 2 || frag.Width != 2 {
		t.Errorf("fragment span = (left %d, width %d), want clamped (2, 2)", frag.Left, frag.Width)
	}
}

// =============================================================================
// Double-width and box-drawing fragment boundaries
// =============================================================================

func TestDoubleWidthGlyphEndsFragment(t *testing.T) {
	f := newWindowFixture(t, 10, 1)

	f.window.DrawGridLine(0, 0, []editor.GridLineCell{
		{Text: "世", HighlightID: hl(0), Repeat: 1},
		{Text: "", HighlightID: nil, Repeat: 1},
		{Text: "x", HighlightID: nil, Repeat: 1},
	})

	lines := drawLines(f.commands(t))
	if len(lines) != 1 {
		t.Fatalf("DrawLine count = %d, want 1", len(lines))
	}
	dl := lines[0]
	if len(dl.Fragments) != 2 {
		t.Fatalf("fragment count = %d, want 2: %+v", len(dl.Fragments), dl.Fragments)
	}
	if dl.Fragments[0].Left != 0 || dl.Fragments[0].Width != 2 {
		t.Errorf("double-width fragment = %+v, want left 0 width 2", dl.Fragments[0])
	}
	if dl.Fragments[1].Left != 2 || dl.Fragments[1].Width != 1 {
		t.Errorf("trailing fragment = %+v, want left 2 width 1", dl.Fragments[1])
	}
}

func TestCursorCellReportsDoubleWidth(t *testing.T) {
	f := newWindowFixture(t, 10, 1)
	f.window.DrawGridLine(0, 0, []editor.GridLineCell{
		{Text: "世", HighlightID: hl(0), Repeat: 1},
		{Text: "", HighlightID: nil, Repeat: 1},
		{Text: "x", HighlightID: nil, Repeat: 1},
	})

	text, double := f.window.CursorCell(0, 0)
	if text != "世" || !double {
		t.Errorf("CursorCell(0,0) = %q, %v, want 世, true", text, double)
	}
	text, double = f.window.CursorCell(2, 0)
	if text != "x" || double {
		t.Errorf("CursorCell(2,0) = %q, %v, want x, false", text, double)
	}
	text, double = f.window.CursorCell(9, 0)
	if text != " " || double {
		t.Errorf("CursorCell(9,0) = %q, %v, want blank, false", text, double)
	}
}

func TestBoxDrawingFragmentRules(t *testing.T) {
	f := newWindowFixture(t, 10, 1)

	f.window.DrawGridLine(0, 0, []editor.GridLineCell{
		{Text: "─", HighlightID: hl(0), Repeat: 2},
		{Text: "│", HighlightID: nil, Repeat: 1},
		{Text: "a", HighlightID: nil, Repeat: 1},
	})

	lines := drawLines(f.commands(t))
	if len(lines) != 1 {
		t.Fatalf("DrawLine count = %d, want 1", len(lines))
	}
	dl := lines[0]
	if len(dl.Fragments) != 3 {
		t.Fatalf("fragment count = %d, want 3: %+v", len(dl.Fragments), dl.Fragments)
	}
	if fragmentText(dl, 0) != "──" {
		t.Errorf("fragment 0 = %q, want repeated identical box glyph merged", fragmentText(dl, 0))
	}
	if fragmentText(dl, 1) != "│" {
		t.Errorf("fragment 1 = %q, want distinct box glyph isolated", fragmentText(dl, 1))
	}
	if fragmentText(dl, 2) != "a" {
		t.Errorf("fragment 2 = %q, want plain text split from box glyphs", fragmentText(dl, 2))
	}
}

// =============================================================================
// Full redraw
// =============================================================================

// Redrawing an unchanged grid twice must yield identical command sequences,
// emitted bottom-to-top.
func TestRedrawIsIdempotentAndBottomUp(t *testing.T) {
	f := newWindowFixture(t, 6, 3)
	for row := 0; row < 3; row++ {
		f.window.DrawGridLine(row, 0, []editor.GridLineCell{
			{Text: "r", HighlightID: hl(0), Repeat: 6},
		})
	}
	f.commands(t)

	f.window.Redraw()
	first := f.commands(t)
	f.window.Redraw()
	second := f.commands(t)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("redraw not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}

	lines := drawLines(first)
	if len(lines) != 3 {
		t.Fatalf("DrawLine count = %d, want 3", len(lines))
	}
	for i, want := range []int{2, 1, 0} {
		if lines[i].Row != want {
			t.Errorf("redraw order: line %d has row %d, want %d", i, lines[i].Row, want)
		}
	}
}

func TestRedrawAfterResizeClearsFirst(t *testing.T) {
	f := newWindowFixture(t, 4, 2)
	f.window.DrawGridLine(0, 0, []editor.GridLineCell{
		{Text: "a", HighlightID: hl(0), Repeat: 4},
	})
	f.commands(t)

	f.window.Resize(6, 3)
	cmds := f.commands(t)

	if len(cmds) < 2 {
		t.Fatalf("commands = %+v, want Position then Clear", cmds)
	}
	if _, ok := cmds[0].(editor.PositionCommand); !ok {
		t.Errorf("cmds[0] = %T, want PositionCommand", cmds[0])
	}
	if _, ok := cmds[1].(editor.ClearCommand); !ok {
		t.Errorf("cmds[1] = %T, want ClearCommand", cmds[1])
	}
	if lines := drawLines(cmds); len(lines) != 0 {
		t.Errorf("resized empty grid emitted %d DrawLines", len(lines))
	}
}

// =============================================================================
// Scrolling
// =============================================================================

func TestScrollRegionPureVerticalEmitsBlitOnly(t *testing.T) {
	f := newWindowFixture(t, 4, 4)
	for row := 0; row < 4; row++ {
		f.window.DrawGridLine(row, 0, []editor.GridLineCell{
			{Text: "x", HighlightID: hl(0), Repeat: 4},
		})
	}
	f.commands(t)

	f.window.ScrollRegion(0, 4, 0, 4, 1, 0)
	cmds := f.commands(t)

	if len(cmds) != 1 {
		t.Fatalf("commands = %+v, want a single Scroll", cmds)
	}
	sc, ok := cmds[0].(editor.ScrollCommand)
	if !ok {
		t.Fatalf("cmds[0] = %T, want ScrollCommand", cmds[0])
	}
	if sc.Rows != 1 || sc.Cols != 0 {
		t.Errorf("scroll = %+v", sc)
	}
}

func TestScrollRegionHorizontalReemitsRows(t *testing.T) {
	f := newWindowFixture(t, 4, 2)
	for row := 0; row < 2; row++ {
		f.window.DrawGridLine(row, 0, []editor.GridLineCell{
			{Text: "x", HighlightID: hl(0), Repeat: 4},
		})
	}
	f.commands(t)

	f.window.ScrollRegion(0, 2, 0, 4, 0, 1)
	cmds := f.commands(t)

	if _, ok := cmds[0].(editor.ScrollCommand); !ok {
		t.Fatalf("cmds[0] = %T, want ScrollCommand", cmds[0])
	}
	lines := drawLines(cmds)
	if len(lines) != 2 {
		t.Fatalf("re-emitted rows = %d, want 2", len(lines))
	}
	if lines[0].Row != 1 || lines[1].Row != 0 {
		t.Errorf("re-emit order = rows %d,%d, want bottom-to-top", lines[0].Row, lines[1].Row)
	}
}
