package render

import (
	"nvgrid/internal/shaping"
	"nvgrid/internal/style"
)

// Path is a closed rectilinear polygon in pixel space.
type Path struct {
	Points []Point
}

// Bounds returns the path's bounding rect.
func (p Path) Bounds() Rect {
	if len(p.Points) == 0 {
		return Rect{}
	}
	b := Rect{Left: p.Points[0].X, Top: p.Points[0].Y, Right: p.Points[0].X, Bottom: p.Points[0].Y}
	for _, pt := range p.Points[1:] {
		b.Left = min32(b.Left, pt.X)
		b.Top = min32(b.Top, pt.Y)
		b.Right = max32(b.Right, pt.X)
		b.Bottom = max32(b.Bottom, pt.Y)
	}
	return b
}

// RectPath returns the four-corner path of a rect, clockwise.
func RectPath(r Rect) Path {
	return Path{Points: []Point{
		{r.Left, r.Top},
		{r.Right, r.Top},
		{r.Right, r.Bottom},
		{r.Left, r.Bottom},
	}}
}

// ClipOp selects how a new clip combines with the current one.
type ClipOp int

const (
	// ClipIntersect keeps only the area inside the new region.
	ClipIntersect ClipOp = iota
	// ClipDifference removes the new region from the clip.
	ClipDifference
)

// ShadowSettings parameterizes a drop shadow cast by a floating layer onto
// the canvas below it.
type ShadowSettings struct {
	// ZHeight is the simulated distance between the layer and the canvas,
	// in pixels.
	ZHeight float32
	// LightAngleDegrees tilts the directional light from the vertical;
	// larger angles push the shadow further down.
	LightAngleDegrees float32
	// LightRadius controls the shadow's softness.
	LightRadius float32
	// AmbientAlpha and SpotAlpha are the opacities of the two shadow
	// components.
	AmbientAlpha float32
	SpotAlpha    float32
}

// Canvas is the drawing interface the renderer paints through. The software
// backend implements it on a plain RGBA image; a GPU backend can substitute
// without touching the renderer.
type Canvas interface {
	// Save pushes the clip state; Restore pops it, compositing any layer
	// pushed since the matching Save.
	Save()
	Restore()

	// ClipRect and ClipPath combine a region into the current clip.
	ClipRect(r Rect, op ClipOp)
	ClipPath(p Path, op ClipOp)

	// Clear fills the clipped area of the whole surface with a color,
	// replacing what was there.
	Clear(c style.RGBA)

	// FillRect paints a rect with src-over blending.
	FillRect(r Rect, c style.RGBA)

	// SaveLayer begins an offscreen layer over bounds that Restore
	// composites back with the given alpha.
	SaveLayer(bounds Rect, alpha float32)

	// BlurBackdrop box-blurs what is already on the canvas inside bounds
	// (and the current clip).
	BlurBackdrop(bounds Rect, sigmaX, sigmaY float32)

	// DrawSurface paints another surface's pixels at (left, top).
	DrawSurface(s Surface, left, top float32)

	// DrawSurfaceRect paints the src region of another surface into dst.
	// Regions must be the same size; no scaling is performed.
	DrawSurfaceRect(s Surface, src, dst Rect)

	// DrawGlyphRun paints shaped text with its baseline box starting at
	// origin, one cell per column.
	DrawGlyphRun(run shaping.GlyphRun, origin Point, cell Dimensions, c style.RGBA)

	// DrawShadow casts a drop shadow of the path onto the canvas. Callers
	// clip the path's inside out first so the shadow only darkens the
	// surroundings.
	DrawShadow(p Path, settings ShadowSettings)
}

// Surface is an owned pixel buffer with an attached canvas.
type Surface interface {
	Canvas() Canvas
	Width() int
	Height() int
	// Release returns the surface's resources. The software backend only
	// drops references, but GPU surfaces must be released before their
	// grid id is reused.
	Release()
}

// SurfaceFactory allocates surfaces; the renderer owns one per backend.
type SurfaceFactory interface {
	NewSurface(width, height int) Surface
}
