package render

import (
	"sort"
	"sync"

	"charm.land/log/v2"

	"nvgrid/internal/editor"
	"nvgrid/internal/pool"
	"nvgrid/internal/shaping"
	"nvgrid/internal/style"
)

// windowScratch recycles the per-frame root/floating partition slices.
var windowScratch = pool.NewSlice[*Window](8)

// Settings are the renderer's tunables; they map 1:1 from the config file.
type Settings struct {
	// Transparency is the global background opacity, 0..1.
	Transparency float32

	PositionAnimationLength float32

	FloatingShadow      bool
	FloatingZHeight     float32
	LightAngleDegrees   float32
	FloatingBlur        bool
	FloatingBlurAmountX float32
	FloatingBlurAmountY float32
}

// DefaultSettings matches an opaque, shadowed, unblurred setup.
func DefaultSettings() Settings {
	return Settings{
		Transparency:            1.0,
		PositionAnimationLength: 0.15,
		FloatingShadow:          true,
		FloatingZHeight:         10,
		LightAngleDegrees:       45,
		FloatingBlur:            false,
		FloatingBlurAmountX:     2,
		FloatingBlurAmountY:     2,
	}
}

// Renderer replays draw-command batches into per-window surfaces and
// composites a frame: root windows first, then floating layers in stacking
// order. HandleBatch and Draw run on the render goroutine; settings may be
// swapped from elsewhere.
type Renderer struct {
	logger *log.Logger

	mu       sync.Mutex
	settings Settings

	ctx     Context
	windows map[int64]*Window

	cursor  editor.Cursor
	mode    string
	title   string
	uiReady bool
}

// NewRenderer returns a renderer drawing with the given backend and cell
// size.
func NewRenderer(factory SurfaceFactory, font Dimensions, settings Settings, logger *log.Logger) *Renderer {
	fg := style.RGBA{R: 1, G: 1, B: 1, A: 1}
	bg := style.RGBA{A: 1}
	return &Renderer{
		logger:   logger.With("component", "renderer"),
		settings: settings,
		ctx: Context{
			Factory:  factory,
			Shaper:   shaping.Monospace{},
			Font:     font,
			Settings: settings,
			DefaultColors: style.Colors{
				Foreground: &fg,
				Background: &bg,
			},
		},
		windows: make(map[int64]*Window),
	}
}

// SetSettings swaps the renderer tunables; the next frame picks them up.
func (r *Renderer) SetSettings(s Settings) {
	r.mu.Lock()
	r.settings = s
	r.mu.Unlock()
}

// SetDefaultColors seeds the default colors used until the remote editor
// reports its own. Call before the first batch is replayed.
func (r *Renderer) SetDefaultColors(colors style.Colors) {
	r.ctx.DefaultColors = colors
}

// UIReady reports whether the remote editor has completed its first frame.
func (r *Renderer) UIReady() bool { return r.uiReady }

// Title returns the latest session title.
func (r *Renderer) Title() string { return r.title }

// Cursor returns the latest resolved cursor state.
func (r *Renderer) Cursor() editor.Cursor { return r.cursor }

// HandleBatch replays one flush worth of draw commands. Batches must be
// replayed in send order and never skipped: surfaces are caches, and a
// dropped command leaves them permanently stale.
func (r *Renderer) HandleBatch(batch []editor.DrawCommand) {
	r.mu.Lock()
	r.ctx.Settings = r.settings
	r.mu.Unlock()

	for _, cmd := range batch {
		switch c := cmd.(type) {
		case editor.WindowDraw:
			r.handleWindowDraw(c)
		case editor.UpdateCursor:
			r.cursor = c.Cursor
		case editor.ModeChanged:
			r.mode = c.Mode
		case editor.DefaultStyleChanged:
			r.ctx.DefaultColors = c.Colors
		case editor.TitleChanged:
			r.title = c.Title
		case editor.UIReady:
			r.uiReady = true
		}
	}
}

func (r *Renderer) handleWindowDraw(cmd editor.WindowDraw) {
	if _, ok := cmd.Command.(editor.CloseCommand); ok {
		if w, exists := r.windows[cmd.GridID]; exists {
			// Release synchronously: the editor may reuse the grid id in
			// the very next batch.
			w.Release()
			delete(r.windows, cmd.GridID)
		}
		return
	}

	w, ok := r.windows[cmd.GridID]
	if !ok {
		if _, isPosition := cmd.Command.(editor.PositionCommand); !isPosition {
			r.logger.Warn("draw command for unknown window", "grid", cmd.GridID)
			return
		}
		w = newWindow(cmd.GridID, &r.ctx)
		r.windows[cmd.GridID] = w
	}
	w.HandleCommand(cmd.Command, &r.ctx)
}

// Draw composites a frame onto the root canvas and returns where each
// visible window landed. dt is the seconds since the previous frame, used
// to advance position animations.
func (r *Renderer) Draw(root Canvas, dt float32) []WindowDrawDetails {
	r.mu.Lock()
	r.ctx.Settings = r.settings
	r.mu.Unlock()

	rootScratch := windowScratch.Get()
	floatScratch := windowScratch.Get()
	rootWindows := *rootScratch
	floating := *floatScratch
	defer func() {
		*rootScratch = rootWindows
		*floatScratch = floating
		windowScratch.Put(rootScratch)
		windowScratch.Put(floatScratch)
	}()
	for _, w := range r.windows {
		w.UpdateAnimation(dt)
		if w.Hidden {
			continue
		}
		if w.Floating {
			floating = append(floating, w)
		} else {
			rootWindows = append(rootWindows, w)
		}
	}

	sort.Slice(rootWindows, func(i, j int) bool {
		return rootWindows[i].ID < rootWindows[j].ID
	})
	sort.SliceStable(floating, func(i, j int) bool {
		return floating[i].SortOrder().Less(floating[j].SortOrder())
	})

	root.Save()
	root.Clear(r.ctx.DefaultBackground())

	details := make([]WindowDrawDetails, 0, len(r.windows))
	for _, w := range rootWindows {
		region := w.PixelRegion(r.ctx.Font)
		w.UpdateBlend(0)
		w.DrawBackgroundSurface(root, region)
		w.DrawForegroundSurface(root, region)
		details = append(details, WindowDrawDetails{ID: w.ID, Region: region})
	}

	layers := make([]*floatingLayer, 0, len(floating))
	for _, group := range groupWindows(floating, r.ctx.Font) {
		layers = append(layers, &floatingLayer{
			sortOrder: group[0].SortOrder(),
			windows:   group,
		})
	}
	sort.SliceStable(layers, func(i, j int) bool {
		return layers[i].sortOrder.Less(layers[j].sortOrder)
	})
	for _, layer := range layers {
		details = append(details, layer.draw(root, &r.ctx)...)
	}

	r.drawCursor(root, details)
	root.Restore()

	return details
}

// drawCursor paints the cursor over the finished frame, shaped per the
// active mode and colored with the inverted default colors unless the
// cursor style overrides them.
func (r *Renderer) drawCursor(root Canvas, details []WindowDrawDetails) {
	if !r.cursor.Enabled {
		return
	}
	var parent *WindowDrawDetails
	for i := range details {
		if details[i].ID == r.cursor.ParentWindowID {
			parent = &details[i]
		}
	}
	if parent == nil {
		return
	}

	font := r.ctx.Font
	width := font.Width
	if r.cursor.DoubleWidth {
		width *= 2
	}
	left := parent.Region.Left + float32(r.cursor.GridPosition[0])*font.Width
	top := parent.Region.Top + float32(r.cursor.GridPosition[1])*font.Height
	cell := RectXYWH(left, top, width, font.Height)

	pct := r.cursor.CellPercentage
	if pct <= 0 {
		pct = 1
	}
	block := cell
	switch r.cursor.Shape {
	case editor.ShapeVertical:
		block.Right = block.Left + max32(1, font.Width*pct)
	case editor.ShapeHorizontal:
		block.Top = block.Bottom - max32(1, font.Height*pct)
	}

	bg := r.cursor.Background(&r.ctx.DefaultColors)
	root.FillRect(block, bg)

	if r.cursor.Shape == editor.ShapeBlock && r.cursor.Text != "" {
		fg := r.cursor.Foreground(&r.ctx.DefaultColors)
		run := r.ctx.Shaper.Shape(r.cursor.Text)
		root.DrawGlyphRun(run, Point{X: left, Y: top}, font, fg)
	}
}
