package bridge

import (
	"charm.land/log/v2"

	"nvgrid/internal/editor"
	"nvgrid/internal/style"
)

// The msgpack layer hands us loosely typed values: integers arrive as any of
// the Go integer types, arrays as []interface{}, maps as
// map[string]interface{}. The converters below absorb that; a value of the
// wrong kind falls back to the zero value rather than failing the whole
// batch.

func asInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asArray(v interface{}) []interface{} {
	a, _ := v.([]interface{})
	return a
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func intAt(args []interface{}, i int) int64 {
	if i < len(args) {
		if n, ok := asInt(args[i]); ok {
			return n
		}
	}
	return 0
}

func floatAt(args []interface{}, i int) float64 {
	if i < len(args) {
		if f, ok := asFloat(args[i]); ok {
			return f
		}
	}
	return 0
}

// ParseUpdate converts one entry of a redraw notification (the event name
// followed by one argument tuple per instance) into typed events. Unknown
// event names are logged once per update and skipped: the remote editor is
// free to grow its vocabulary without breaking us.
func ParseUpdate(logger *log.Logger, update []interface{}) []editor.RedrawEvent {
	if len(update) == 0 {
		return nil
	}
	name := asString(update[0])
	if name == "" {
		return nil
	}

	var events []editor.RedrawEvent
	for _, raw := range update[1:] {
		args := asArray(raw)
		event, ok := parseEvent(name, args)
		if !ok {
			logger.Debug("unhandled redraw event", "event", name)
			break
		}
		if event != nil {
			events = append(events, event)
		}
	}
	return events
}

// parseEvent returns (nil, true) for events we recognize and deliberately
// ignore, and (nil, false) for names outside the vocabulary.
func parseEvent(name string, args []interface{}) (editor.RedrawEvent, bool) {
	switch name {
	case "set_title", "set_icon":
		return editor.SetTitle{Title: asString(argAt(args, 0))}, true
	case "mode_info_set":
		return parseModeInfoSet(args), true
	case "option_set":
		return editor.OptionSet{
			Name:  asString(argAt(args, 0)),
			Value: argAt(args, 1),
		}, true
	case "mode_change":
		return editor.ModeChange{
			Mode:      asString(argAt(args, 0)),
			ModeIndex: int(intAt(args, 1)),
		}, true
	case "busy_start":
		return editor.BusyStart{}, true
	case "busy_stop":
		return editor.BusyStop{}, true
	case "flush":
		return editor.Flush{}, true
	case "grid_resize":
		return editor.Resize{
			Grid:   intAt(args, 0),
			Width:  int(intAt(args, 1)),
			Height: int(intAt(args, 2)),
		}, true
	case "default_colors_set":
		return parseDefaultColors(args), true
	case "hl_attr_define":
		return parseHighlightDefine(args), true
	case "grid_line":
		return parseGridLine(args), true
	case "grid_clear":
		return editor.Clear{Grid: intAt(args, 0)}, true
	case "grid_destroy":
		return editor.Destroy{Grid: intAt(args, 0)}, true
	case "grid_cursor_goto":
		return editor.CursorGoto{
			Grid:   intAt(args, 0),
			Row:    int(intAt(args, 1)),
			Column: int(intAt(args, 2)),
		}, true
	case "grid_scroll":
		return editor.Scroll{
			Grid:    intAt(args, 0),
			Top:     int(intAt(args, 1)),
			Bottom:  int(intAt(args, 2)),
			Left:    int(intAt(args, 3)),
			Right:   int(intAt(args, 4)),
			Rows:    int(intAt(args, 5)),
			Columns: int(intAt(args, 6)),
		}, true
	case "win_pos":
		// args: grid, win, start_row, start_col, width, height
		return editor.WindowPosition{
			Grid:        intAt(args, 0),
			StartRow:    int(intAt(args, 2)),
			StartColumn: int(intAt(args, 3)),
			Width:       int(intAt(args, 4)),
			Height:      int(intAt(args, 5)),
		}, true
	case "win_float_pos":
		return parseWindowFloatPosition(args), true
	case "win_hide":
		return editor.WindowHide{Grid: intAt(args, 0)}, true
	case "win_close":
		return editor.WindowClose{Grid: intAt(args, 0)}, true
	case "msg_set_pos":
		return parseMessageSetPosition(args), true
	case "win_viewport":
		return parseWindowViewport(args), true
	case "hl_group_set", "win_external_pos", "mouse_on", "mouse_off":
		// Recognized, carries nothing the compositor needs.
		return nil, true
	}
	return nil, false
}

func argAt(args []interface{}, i int) interface{} {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func parseModeInfoSet(args []interface{}) editor.RedrawEvent {
	modes := asArray(argAt(args, 1))
	event := editor.ModeInfoSet{CursorModes: make([]editor.CursorMode, 0, len(modes))}
	for _, raw := range modes {
		info := asMap(raw)
		var mode editor.CursorMode
		if shape, ok := editor.CursorShapeFromName(asString(info["cursor_shape"])); ok {
			mode.Shape = &shape
		}
		if v, ok := asInt(info["cell_percentage"]); ok {
			pct := float32(v) / 100
			mode.CellPercentage = &pct
		}
		if v, ok := asInt(info["blink_wait"]); ok {
			wait := uint64(v)
			mode.BlinkWait = &wait
		}
		if v, ok := asInt(info["blink_on"]); ok {
			on := uint64(v)
			mode.BlinkOn = &on
		}
		if v, ok := asInt(info["blink_off"]); ok {
			off := uint64(v)
			mode.BlinkOff = &off
		}
		if v, ok := asInt(info["attr_id"]); ok {
			id := style.ID(v)
			mode.StyleID = &id
		}
		event.CursorModes = append(event.CursorModes, mode)
	}
	return event
}

func parseDefaultColors(args []interface{}) editor.RedrawEvent {
	fg := style.FromPacked(uint32(intAt(args, 0)))
	bg := style.FromPacked(uint32(intAt(args, 1)))
	special := style.FromPacked(uint32(intAt(args, 2)))
	return editor.DefaultColorsSet{Colors: style.Colors{
		Foreground: &fg,
		Background: &bg,
		Special:    &special,
	}}
}

func parseHighlightDefine(args []interface{}) editor.RedrawEvent {
	attrs := asMap(argAt(args, 1))
	s := style.Style{}
	if v, ok := asInt(attrs["foreground"]); ok {
		c := style.FromPacked(uint32(v))
		s.Colors.Foreground = &c
	}
	if v, ok := asInt(attrs["background"]); ok {
		c := style.FromPacked(uint32(v))
		s.Colors.Background = &c
	}
	if v, ok := asInt(attrs["special"]); ok {
		c := style.FromPacked(uint32(v))
		s.Colors.Special = &c
	}
	s.Reverse = asBool(attrs["reverse"])
	s.Italic = asBool(attrs["italic"])
	s.Bold = asBool(attrs["bold"])
	s.Strikethrough = asBool(attrs["strikethrough"])
	switch {
	case asBool(attrs["undercurl"]):
		s.Underline = style.UnderlineCurl
	case asBool(attrs["underdouble"]):
		s.Underline = style.UnderlineDouble
	case asBool(attrs["underdashed"]):
		s.Underline = style.UnderlineDash
	case asBool(attrs["underdotted"]):
		s.Underline = style.UnderlineDot
	case asBool(attrs["underline"]):
		s.Underline = style.UnderlineSingle
	}
	if v, ok := asInt(attrs["blend"]); ok {
		s.Blend = uint8(v)
	}
	return editor.HighlightAttributesDefine{
		ID:    style.ID(intAt(args, 0)),
		Style: s,
	}
}

func parseGridLine(args []interface{}) editor.RedrawEvent {
	rawCells := asArray(argAt(args, 3))
	cells := make([]editor.GridLineCell, 0, len(rawCells))
	for _, raw := range rawCells {
		tuple := asArray(raw)
		cell := editor.GridLineCell{
			Text: asString(argAt(tuple, 0)),
			// Absent on the wire means "draw once"; an explicit 0 stays 0.
			Repeat: 1,
		}
		if len(tuple) > 1 {
			if v, ok := asInt(tuple[1]); ok {
				id := style.ID(v)
				cell.HighlightID = &id
			}
		}
		if len(tuple) > 2 {
			if v, ok := asInt(tuple[2]); ok {
				cell.Repeat = int(v)
			}
		}
		cells = append(cells, cell)
	}
	return editor.GridLine{
		Grid:        intAt(args, 0),
		Row:         int(intAt(args, 1)),
		ColumnStart: int(intAt(args, 2)),
		Cells:       cells,
	}
}

func parseWindowAnchor(name string) editor.WindowAnchor {
	switch name {
	case "NE":
		return editor.AnchorNorthEast
	case "SW":
		return editor.AnchorSouthWest
	case "SE":
		return editor.AnchorSouthEast
	}
	return editor.AnchorNorthWest
}

func parseWindowFloatPosition(args []interface{}) editor.RedrawEvent {
	// args: grid, win, anchor, anchor_grid, anchor_row, anchor_col,
	// focusable, zindex, [compose_index, screen_row, screen_col, mouse]
	event := editor.WindowFloatPosition{
		Grid:         intAt(args, 0),
		Anchor:       parseWindowAnchor(asString(argAt(args, 2))),
		AnchorGrid:   intAt(args, 3),
		AnchorRow:    floatAt(args, 4),
		AnchorColumn: floatAt(args, 5),
		Focusable:    asBool(argAt(args, 6)),
		ZIndex:       int(intAt(args, 7)),
	}
	if v, ok := asInt(argAt(args, 8)); ok {
		compose := int(v)
		event.ComposeIndex = &compose
	}
	if v, ok := asInt(argAt(args, 9)); ok {
		row := int(v)
		event.ScreenRow = &row
	}
	if v, ok := asInt(argAt(args, 10)); ok {
		col := int(v)
		event.ScreenColumn = &col
	}
	if len(args) > 11 {
		mouse := asBool(args[11])
		event.Mouse = &mouse
	}
	return event
}

func parseMessageSetPosition(args []interface{}) editor.RedrawEvent {
	// args: grid, row, scrolled, sep_char, [zindex, compindex]
	event := editor.MessageSetPosition{
		Grid:     intAt(args, 0),
		Row:      int(intAt(args, 1)),
		Scrolled: asBool(argAt(args, 2)),
	}
	if v, ok := asInt(argAt(args, 4)); ok {
		z := int(v)
		event.ZIndex = &z
	}
	return event
}

func parseWindowViewport(args []interface{}) editor.RedrawEvent {
	// args: grid, win, topline, botline, curline, curcol, line_count,
	// [scroll_delta]
	event := editor.WindowViewport{
		Grid:       intAt(args, 0),
		TopLine:    floatAt(args, 2),
		BottomLine: floatAt(args, 3),
	}
	if v, ok := asFloat(argAt(args, 7)); ok {
		delta := v
		event.ScrollDelta = &delta
	}
	return event
}
