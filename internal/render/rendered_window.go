package render

import (
	"math"

	"nvgrid/internal/editor"
	"nvgrid/internal/shaping"
	"nvgrid/internal/style"
)

// Window is the renderer-side replay state of one editor window: a pair of
// cached surfaces (cell backgrounds and glyph foregrounds drawn separately
// so layer compositing can treat them differently) plus position animation.
// It holds no grid data; it knows only what draw commands told it.
type Window struct {
	ID       int64
	Hidden   bool
	Floating bool

	sortOrder editor.SortOrder

	// gridWidth/gridHeight are the window size in cells.
	gridWidth  int
	gridHeight int

	anim positionAnimation

	background Surface
	foreground Surface

	// hasTransparency is set once any drawn background had alpha < 1.
	hasTransparency bool
	// smallestBlend tracks the minimum style blend drawn into the window,
	// nil until a styled background was drawn.
	smallestBlend *uint8
	// backgroundBlend is the layer-uniform blend applied when compositing
	// the background surface.
	backgroundBlend uint8
}

// Context carries the per-frame dependencies command replay needs.
type Context struct {
	Factory  SurfaceFactory
	Shaper   shaping.Shaper
	Font     Dimensions
	Settings Settings

	// DefaultColors is the remote editor's default style; the background
	// entry carries the configured global transparency in its alpha.
	DefaultColors style.Colors
}

// DefaultBackground resolves the default background color, transparent per
// the configured global opacity.
func (ctx *Context) DefaultBackground() style.RGBA {
	if ctx.DefaultColors.Background != nil {
		return ctx.DefaultColors.Background.WithAlpha(ctx.Settings.Transparency)
	}
	return style.RGBA{A: ctx.Settings.Transparency}
}

func newWindow(id int64, ctx *Context) *Window {
	w := &Window{ID: id}
	w.allocateSurfaces(1, 1, ctx)
	return w
}

// SortOrder returns the window's stacking order.
func (w *Window) SortOrder() editor.SortOrder { return w.sortOrder }

// PixelRegion returns the window's current on-screen rect, following the
// position animation.
func (w *Window) PixelRegion(font Dimensions) Rect {
	pos := w.anim.Position()
	return RectXYWH(
		pos.X*font.Width,
		pos.Y*font.Height,
		float32(w.gridWidth)*font.Width,
		float32(w.gridHeight)*font.Height,
	)
}

// UpdateAnimation advances the position animation, reporting whether the
// window is still moving.
func (w *Window) UpdateAnimation(dt float32) bool {
	return w.anim.Update(dt)
}

// HasTransparency reports whether any drawn background was translucent.
func (w *Window) HasTransparency() bool { return w.hasTransparency }

// SmallestBlendValue returns the minimum style blend drawn, if any style
// carried one.
func (w *Window) SmallestBlendValue() (uint8, bool) {
	if w.smallestBlend == nil {
		return 0, false
	}
	return *w.smallestBlend, true
}

// UpdateBlend sets the layer-uniform background blend for this frame.
func (w *Window) UpdateBlend(blend uint8) { w.backgroundBlend = blend }

// HandleCommand replays one window draw command.
func (w *Window) HandleCommand(cmd editor.WindowCommand, ctx *Context) {
	switch c := cmd.(type) {
	case editor.PositionCommand:
		w.applyPosition(c, ctx)
	case editor.DrawLineCommand:
		w.applyDrawLine(c, ctx)
	case editor.ScrollCommand:
		w.applyScroll(c, ctx)
	case editor.ClearCommand:
		w.clearSurfaces(ctx)
	case editor.ShowCommand:
		w.Hidden = false
	case editor.HideCommand:
		w.Hidden = true
	case editor.ViewportCommand:
		// Smooth scrolling is not modeled; the content moved by the
		// viewport change arrives through Scroll and DrawLine commands.
	}
}

// Release frees the window's surfaces. It must run before the window's grid
// id is reused.
func (w *Window) Release() {
	if w.background != nil {
		w.background.Release()
		w.background = nil
	}
	if w.foreground != nil {
		w.foreground.Release()
		w.foreground = nil
	}
}

func (w *Window) applyPosition(cmd editor.PositionCommand, ctx *Context) {
	if cmd.Width != w.gridWidth || cmd.Height != w.gridHeight {
		w.Release()
		w.allocateSurfaces(cmd.Width, cmd.Height, ctx)
		w.clearSurfaces(ctx)
	}
	w.Floating = cmd.Floating
	if cmd.SortOrder != nil {
		w.sortOrder = *cmd.SortOrder
	} else {
		w.sortOrder = editor.SortOrder{}
	}
	w.anim.SetTarget(
		Point{X: float32(cmd.GridLeft), Y: float32(cmd.GridTop)},
		ctx.Settings.PositionAnimationLength,
	)
}

func (w *Window) allocateSurfaces(gridWidth, gridHeight int, ctx *Context) {
	w.gridWidth = gridWidth
	w.gridHeight = gridHeight
	pxW := int(math.Ceil(float64(float32(gridWidth) * ctx.Font.Width)))
	pxH := int(math.Ceil(float64(float32(gridHeight) * ctx.Font.Height)))
	w.background = ctx.Factory.NewSurface(pxW, pxH)
	w.foreground = ctx.Factory.NewSurface(pxW, pxH)
}

func (w *Window) clearSurfaces(ctx *Context) {
	w.background.Canvas().Clear(ctx.DefaultBackground())
	w.foreground.Canvas().Clear(style.RGBA{})
	w.hasTransparency = ctx.Settings.Transparency < 1
	w.smallestBlend = nil
}

func (w *Window) applyDrawLine(cmd editor.DrawLineCommand, ctx *Context) {
	font := ctx.Font
	top := float32(cmd.Row) * font.Height
	bg := w.background.Canvas()
	fg := w.foreground.Canvas()

	for _, frag := range cmd.Fragments {
		st := frag.Style
		if st == nil {
			st = &style.Style{}
		}
		left := float32(frag.Left) * font.Width
		rect := RectXYWH(left, top, float32(frag.Width)*font.Width, font.Height)

		bgColor := st.Background(&ctx.DefaultColors, ctx.Settings.Transparency)
		if frag.Style == nil {
			bgColor.A = ctx.Settings.Transparency
		}
		bg.Save()
		bg.ClipRect(rect, ClipIntersect)
		bg.Clear(bgColor)
		bg.Restore()

		if bgColor.A < 1 {
			w.hasTransparency = true
		}
		if frag.Style != nil {
			blend := frag.Style.Blend
			if w.smallestBlend == nil || blend < *w.smallestBlend {
				b := blend
				w.smallestBlend = &b
			}
		}

		fg.Save()
		fg.ClipRect(rect, ClipIntersect)
		fg.Clear(style.RGBA{})
		fgColor := st.Foreground(&ctx.DefaultColors, ctx.Settings.Transparency)
		run := ctx.Shaper.Shape(cmd.Text[frag.TextStart:frag.TextEnd])
		fg.DrawGlyphRun(run, Point{X: left, Y: top}, font, fgColor)
		if st.Underline != style.UnderlineNone {
			drawUnderline(fg, st, rect, &ctx.DefaultColors, ctx.Settings.Transparency)
		}
		if st.Strikethrough {
			mid := (rect.Top + rect.Bottom) / 2
			fg.FillRect(Rect{Left: rect.Left, Top: mid, Right: rect.Right, Bottom: mid + 1}, fgColor)
		}
		fg.Restore()
	}
}

// drawUnderline paints the fragment's underline decoration along the cell
// bottom in the style's special color.
func drawUnderline(canvas Canvas, st *style.Style, rect Rect, defaults *style.Colors, opacity float32) {
	color := st.Special(defaults, opacity)
	y := rect.Bottom - 2
	line := func(top float32) {
		canvas.FillRect(Rect{Left: rect.Left, Top: top, Right: rect.Right, Bottom: top + 1}, color)
	}
	switch st.Underline {
	case style.UnderlineSingle:
		line(y)
	case style.UnderlineDouble:
		line(y)
		line(y - 2)
	case style.UnderlineDash:
		for x := rect.Left; x < rect.Right; x += 6 {
			end := min32(x+4, rect.Right)
			canvas.FillRect(Rect{Left: x, Top: y, Right: end, Bottom: y + 1}, color)
		}
	case style.UnderlineDot:
		for x := rect.Left; x < rect.Right; x += 3 {
			end := min32(x+1, rect.Right)
			canvas.FillRect(Rect{Left: x, Top: y, Right: end, Bottom: y + 1}, color)
		}
	case style.UnderlineCurl:
		// Approximated as an alternating two-row dash.
		row := 0
		for x := rect.Left; x < rect.Right; x += 3 {
			end := min32(x+3, rect.Right)
			top := y - float32(row%2)
			canvas.FillRect(Rect{Left: x, Top: top, Right: end, Bottom: top + 1}, color)
			row++
		}
	}
}

// applyScroll blits the scrolled region of both cached surfaces. Only pure
// vertical shifts arrive with expectations of a blit; anything else was
// already re-emitted as lines by the editor.
func (w *Window) applyScroll(cmd editor.ScrollCommand, ctx *Context) {
	if cmd.Cols != 0 || cmd.Rows == 0 {
		return
	}
	font := ctx.Font
	region := Rect{
		Left:   float32(cmd.Left) * font.Width,
		Top:    float32(cmd.Top) * font.Height,
		Right:  float32(cmd.Right) * font.Width,
		Bottom: float32(cmd.Bottom) * font.Height,
	}
	srcOffset := float32(cmd.Rows) * font.Height

	for _, surface := range []Surface{w.background, w.foreground} {
		snapshot := ctx.Factory.NewSurface(surface.Width(), surface.Height())
		snapshot.Canvas().DrawSurface(surface, 0, 0)

		canvas := surface.Canvas()
		canvas.Save()
		canvas.ClipRect(region, ClipIntersect)
		canvas.DrawSurfaceRect(snapshot, region.Offset(0, srcOffset), region)
		canvas.Restore()
		snapshot.Release()
	}
}

// DrawBackgroundSurface composites the cached background into the root
// canvas at region, modulated by the layer-uniform blend.
func (w *Window) DrawBackgroundSurface(root Canvas, region Rect) {
	alpha := 1 - float32(w.backgroundBlend)/100
	root.Save()
	root.ClipRect(region, ClipIntersect)
	if alpha < 1 {
		root.SaveLayer(region, alpha)
	}
	root.DrawSurface(w.background, region.Left, region.Top)
	if alpha < 1 {
		root.Restore()
	}
	root.Restore()
}

// DrawForegroundSurface composites the cached glyph surface into the root
// canvas at region.
func (w *Window) DrawForegroundSurface(root Canvas, region Rect) {
	root.Save()
	root.ClipRect(region, ClipIntersect)
	root.DrawSurface(w.foreground, region.Left, region.Top)
	root.Restore()
}
