package render

import (
	"nvgrid/internal/editor"
)

// WindowDrawDetails records where a window landed on screen this frame,
// used for hit testing and debugging overlays.
type WindowDrawDetails struct {
	ID     int64
	Region Rect
	// FloatingOrder is nil for docked windows.
	FloatingOrder *editor.SortOrder
}

// floatingLayer is a group of floating windows whose pixel regions
// transitively intersect. The group is composited as one unit: one
// silhouette, one shadow, one backdrop blur, and one uniform background
// blend, so overlapping floats read as a single raised panel.
type floatingLayer struct {
	sortOrder editor.SortOrder
	windows   []*Window
}

func (l *floatingLayer) draw(root Canvas, ctx *Context) []WindowDrawDetails {
	regions := make([]Rect, len(l.windows))
	for i, w := range l.windows {
		regions[i] = w.PixelRegion(ctx.Font)
	}
	silhouette, bounds := buildSilhouette(regions)

	defaultBackground := ctx.DefaultBackground()
	hasTransparency := defaultBackground.A < 1
	for _, w := range l.windows {
		if w.HasTransparency() {
			hasTransparency = true
		}
	}

	if ctx.Settings.FloatingShadow {
		l.drawShadow(root, silhouette, ctx.Settings)
	}

	root.Save()
	root.ClipPath(silhouette, ClipIntersect)

	// Blur what is underneath before the layer's own pixels land; without
	// transparency there is nothing to see through, so the blur is skipped
	// unless forced on.
	if hasTransparency || ctx.Settings.FloatingBlur {
		root.BlurBackdrop(bounds, ctx.Settings.FloatingBlurAmountX, ctx.Settings.FloatingBlurAmountY)
	}

	// The whole group is drawn into one layer composited at the default
	// background's alpha, over an opaque base, so member boundaries never
	// double-blend where windows overlap.
	root.SaveLayer(bounds, defaultBackground.A)
	root.Clear(defaultBackground.WithAlpha(1))

	blend := l.uniformBackgroundBlend()
	for _, w := range l.windows {
		w.UpdateBlend(blend)
	}

	details := make([]WindowDrawDetails, 0, len(l.windows))
	for i, w := range l.windows {
		w.DrawBackgroundSurface(root, regions[i])
	}
	for i, w := range l.windows {
		w.DrawForegroundSurface(root, regions[i])
		order := w.SortOrder()
		details = append(details, WindowDrawDetails{
			ID:            w.ID,
			Region:        regions[i],
			FloatingOrder: &order,
		})
	}

	root.Restore()
	root.Restore()

	return details
}

// uniformBackgroundBlend is the blend applied to every member's background:
// the minimum (most opaque) blend any member asked for, so a group never
// becomes more transparent than its most opaque window.
func (l *floatingLayer) uniformBackgroundBlend() uint8 {
	var blend uint8
	found := false
	for _, w := range l.windows {
		if v, ok := w.SmallestBlendValue(); ok {
			if !found || v < blend {
				blend = v
				found = true
			}
		}
	}
	if !found {
		return 0
	}
	return blend
}

// drawShadow casts the layer's drop shadow, clipped to outside the
// silhouette so the shadow never darkens the layer's own pixels.
func (l *floatingLayer) drawShadow(root Canvas, silhouette Path, settings Settings) {
	root.Save()
	root.ClipPath(silhouette, ClipDifference)
	root.DrawShadow(silhouette, ShadowSettings{
		ZHeight:           settings.FloatingZHeight,
		LightAngleDegrees: settings.LightAngleDegrees,
		LightRadius:       5,
		AmbientAlpha:      0.03,
		SpotAlpha:         0.35,
	})
	root.Restore()
}
