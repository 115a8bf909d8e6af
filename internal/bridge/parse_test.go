package bridge_test

import (
	"io"
	"testing"

	"charm.land/log/v2"

	"nvgrid/internal/bridge"
	"nvgrid/internal/editor"
	"nvgrid/internal/style"
)

func parse(t *testing.T, update ...interface{}) []editor.RedrawEvent {
	t.Helper()
	return bridge.ParseUpdate(log.New(io.Discard), update)
}

// ============================================================================
// grid_line
// ============================================================================

func TestParseGridLineCells(t *testing.T) {
	events := parse(t, "grid_line",
		[]interface{}{int64(2), int64(1), int64(4), []interface{}{
			[]interface{}{"a", int64(3)},             // explicit highlight
			[]interface{}{"b"},                       // inherits previous
			[]interface{}{" ", int64(0), int64(10)},  // repeated default
			[]interface{}{"世", int64(5), int64(0)},   // explicit no-op repeat
		}},
	)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	line, ok := events[0].(editor.GridLine)
	if !ok {
		t.Fatalf("event = %T, want GridLine", events[0])
	}
	if line.Grid != 2 || line.Row != 1 || line.ColumnStart != 4 {
		t.Errorf("header = %+v", line)
	}
	cells := line.Cells
	if len(cells) != 4 {
		t.Fatalf("cells = %d, want 4", len(cells))
	}
	if cells[0].HighlightID == nil || *cells[0].HighlightID != 3 || cells[0].Repeat != 1 {
		t.Errorf("cell 0 = %+v, want hl 3 repeat 1", cells[0])
	}
	if cells[1].HighlightID != nil {
		t.Errorf("cell 1 highlight = %v, want nil (inherit)", *cells[1].HighlightID)
	}
	if cells[1].Repeat != 1 {
		t.Errorf("cell 1 repeat = %d, absent count must mean 1", cells[1].Repeat)
	}
	if cells[2].Repeat != 10 {
		t.Errorf("cell 2 repeat = %d, want 10", cells[2].Repeat)
	}
	if cells[3].Repeat != 0 {
		t.Errorf("cell 3 repeat = %d, explicit zero must survive", cells[3].Repeat)
	}
}

// ============================================================================
// hl_attr_define / default_colors_set
// ============================================================================

func TestParseHighlightDefine(t *testing.T) {
	events := parse(t, "hl_attr_define",
		[]interface{}{int64(7), map[string]interface{}{
			"foreground":    int64(0xFF0000),
			"background":    int64(0x0000FF),
			"special":       int64(0x00FF00),
			"bold":          true,
			"strikethrough": true,
			"blend":         int64(30),
		}, map[string]interface{}{}, []interface{}{}},
	)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	def := events[0].(editor.HighlightAttributesDefine)
	if def.ID != 7 {
		t.Errorf("id = %d", def.ID)
	}
	if def.Style.Colors.Foreground.Packed() != 0xFF0000 {
		t.Errorf("foreground = %06x", def.Style.Colors.Foreground.Packed())
	}
	if def.Style.Colors.Background.Packed() != 0x0000FF {
		t.Errorf("background = %06x", def.Style.Colors.Background.Packed())
	}
	if !def.Style.Bold || !def.Style.Strikethrough || def.Style.Blend != 30 {
		t.Errorf("attributes = %+v", def.Style)
	}
}

func TestParseUnderlineVariants(t *testing.T) {
	cases := []struct {
		attr string
		want style.UnderlineStyle
	}{
		{"underline", style.UnderlineSingle},
		{"undercurl", style.UnderlineCurl},
		{"underdouble", style.UnderlineDouble},
		{"underdashed", style.UnderlineDash},
		{"underdotted", style.UnderlineDot},
	}
	for _, tc := range cases {
		events := parse(t, "hl_attr_define",
			[]interface{}{int64(1), map[string]interface{}{tc.attr: true}},
		)
		def := events[0].(editor.HighlightAttributesDefine)
		if def.Style.Underline != tc.want {
			t.Errorf("%s: underline = %v, want %v", tc.attr, def.Style.Underline, tc.want)
		}
	}
}

func TestParseDefaultColors(t *testing.T) {
	events := parse(t, "default_colors_set",
		[]interface{}{int64(0xFFFFFF), int64(0x102030), int64(0xFF0000), int64(0), int64(0)},
	)
	set := events[0].(editor.DefaultColorsSet)
	if set.Colors.Background == nil || set.Colors.Background.Packed() != 0x102030 {
		t.Errorf("background = %+v", set.Colors.Background)
	}
	if set.Colors.Special == nil || set.Colors.Special.Packed() != 0xFF0000 {
		t.Errorf("special = %+v", set.Colors.Special)
	}
}

// ============================================================================
// window placement
// ============================================================================

func TestParseWindowFloatPosition(t *testing.T) {
	events := parse(t, "win_float_pos",
		[]interface{}{
			int64(4), int64(1001), "SE", int64(2),
			float64(5.5), float64(10), true, int64(50),
			int64(3), int64(8), int64(16), false,
		},
	)
	pos := events[0].(editor.WindowFloatPosition)
	if pos.Grid != 4 || pos.Anchor != editor.AnchorSouthEast || pos.AnchorGrid != 2 {
		t.Errorf("header = %+v", pos)
	}
	if pos.AnchorRow != 5.5 || pos.AnchorColumn != 10 || !pos.Focusable || pos.ZIndex != 50 {
		t.Errorf("placement = %+v", pos)
	}
	if pos.ComposeIndex == nil || *pos.ComposeIndex != 3 {
		t.Errorf("compose index = %v", pos.ComposeIndex)
	}
	if pos.ScreenRow == nil || *pos.ScreenRow != 8 || pos.ScreenColumn == nil || *pos.ScreenColumn != 16 {
		t.Errorf("screen position = %v/%v", pos.ScreenRow, pos.ScreenColumn)
	}
	if pos.Mouse == nil || *pos.Mouse {
		t.Errorf("mouse = %v", pos.Mouse)
	}
}

func TestParseWindowFloatPositionShortForm(t *testing.T) {
	// Older remote editors stop after the z-index.
	events := parse(t, "win_float_pos",
		[]interface{}{int64(4), int64(1001), "NW", int64(1), float64(0), float64(0), true, int64(50)},
	)
	pos := events[0].(editor.WindowFloatPosition)
	if pos.ComposeIndex != nil || pos.ScreenRow != nil || pos.Mouse != nil {
		t.Errorf("optional fields = %+v, want all nil", pos)
	}
}

func TestParseWindowPosition(t *testing.T) {
	events := parse(t, "win_pos",
		[]interface{}{int64(2), int64(1000), int64(1), int64(3), int64(80), int64(24)},
	)
	pos := events[0].(editor.WindowPosition)
	if pos.Grid != 2 || pos.StartRow != 1 || pos.StartColumn != 3 || pos.Width != 80 || pos.Height != 24 {
		t.Errorf("position = %+v", pos)
	}
}

func TestParseMessageSetPosition(t *testing.T) {
	events := parse(t, "msg_set_pos",
		[]interface{}{int64(5), int64(20), true, "─", int64(250)},
	)
	pos := events[0].(editor.MessageSetPosition)
	if pos.Grid != 5 || pos.Row != 20 || !pos.Scrolled {
		t.Errorf("position = %+v", pos)
	}
	if pos.ZIndex == nil || *pos.ZIndex != 250 {
		t.Errorf("zindex = %v, want 250", pos.ZIndex)
	}

	events = parse(t, "msg_set_pos",
		[]interface{}{int64(5), int64(20), false, "─"},
	)
	if pos := events[0].(editor.MessageSetPosition); pos.ZIndex != nil {
		t.Errorf("zindex = %v, want nil when absent", pos.ZIndex)
	}
}

func TestParseWindowViewport(t *testing.T) {
	events := parse(t, "win_viewport",
		[]interface{}{
			int64(2), int64(1000), int64(10), int64(34),
			int64(12), int64(0), int64(100), int64(-3),
		},
	)
	vp := events[0].(editor.WindowViewport)
	if vp.Grid != 2 || vp.TopLine != 10 || vp.BottomLine != 34 {
		t.Errorf("viewport = %+v", vp)
	}
	if vp.ScrollDelta == nil || *vp.ScrollDelta != -3 {
		t.Errorf("scroll delta = %v, want -3", vp.ScrollDelta)
	}
}

// ============================================================================
// modes, scroll, misc
// ============================================================================

func TestParseModeInfoSet(t *testing.T) {
	events := parse(t, "mode_info_set",
		[]interface{}{true, []interface{}{
			map[string]interface{}{
				"cursor_shape":    "vertical",
				"cell_percentage": int64(25),
				"blink_wait":      int64(700),
				"attr_id":         int64(12),
			},
			map[string]interface{}{},
		}},
	)
	set := events[0].(editor.ModeInfoSet)
	if len(set.CursorModes) != 2 {
		t.Fatalf("modes = %d, want 2", len(set.CursorModes))
	}
	mode := set.CursorModes[0]
	if mode.Shape == nil || *mode.Shape != editor.ShapeVertical {
		t.Errorf("shape = %v", mode.Shape)
	}
	if mode.CellPercentage == nil || *mode.CellPercentage != 0.25 {
		t.Errorf("cell percentage = %v, want 0.25", mode.CellPercentage)
	}
	if mode.BlinkWait == nil || *mode.BlinkWait != 700 {
		t.Errorf("blink wait = %v", mode.BlinkWait)
	}
	if mode.StyleID == nil || *mode.StyleID != 12 {
		t.Errorf("style id = %v", mode.StyleID)
	}
	empty := set.CursorModes[1]
	if empty.Shape != nil || empty.CellPercentage != nil || empty.StyleID != nil {
		t.Errorf("empty mode = %+v, want all nil", empty)
	}
}

func TestParseGridScroll(t *testing.T) {
	events := parse(t, "grid_scroll",
		[]interface{}{int64(1), int64(0), int64(24), int64(0), int64(80), int64(-2), int64(0)},
	)
	scroll := events[0].(editor.Scroll)
	if scroll.Rows != -2 || scroll.Columns != 0 || scroll.Bottom != 24 || scroll.Right != 80 {
		t.Errorf("scroll = %+v", scroll)
	}
}

func TestParseMultipleTuplesPerUpdate(t *testing.T) {
	events := parse(t, "grid_cursor_goto",
		[]interface{}{int64(1), int64(0), int64(0)},
		[]interface{}{int64(2), int64(3), int64(4)},
	)
	if len(events) != 2 {
		t.Fatalf("events = %d, want one per tuple", len(events))
	}
	second := events[1].(editor.CursorGoto)
	if second.Grid != 2 || second.Row != 3 || second.Column != 4 {
		t.Errorf("second goto = %+v", second)
	}
}

func TestParseUnknownEventSkipped(t *testing.T) {
	events := parse(t, "tabline_update", []interface{}{int64(1)})
	if len(events) != 0 {
		t.Errorf("events = %v, want unknown names skipped", events)
	}
}

func TestParseSimpleEvents(t *testing.T) {
	if _, ok := parse(t, "flush", []interface{}{})[0].(editor.Flush); !ok {
		t.Error("flush not parsed")
	}
	if _, ok := parse(t, "busy_start", []interface{}{})[0].(editor.BusyStart); !ok {
		t.Error("busy_start not parsed")
	}
	title := parse(t, "set_title", []interface{}{"hello"})[0].(editor.SetTitle)
	if title.Title != "hello" {
		t.Errorf("title = %q", title.Title)
	}
	resize := parse(t, "grid_resize", []interface{}{int64(1), int64(120), int64(40)})[0].(editor.Resize)
	if resize.Width != 120 || resize.Height != 40 {
		t.Errorf("resize = %+v", resize)
	}
}
