// Package render replays draw-command batches onto cached per-window
// surfaces and composites them, grouping intersecting floating windows into
// layers with a shared silhouette, shadow, and background blend.
package render

import "math"

// epsilon tolerates float error when comparing pixel coordinates.
const epsilon = 1e-6

// Point is a position in pixel space.
type Point struct {
	X, Y float32
}

// Dimensions is the pixel size of one grid cell.
type Dimensions struct {
	Width  float32
	Height float32
}

// Rect is an axis-aligned pixel rectangle.
type Rect struct {
	Left, Top, Right, Bottom float32
}

// RectXYWH builds a rect from its top-left corner and size.
func RectXYWH(x, y, w, h float32) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

// Width returns the rect's horizontal extent.
func (r Rect) Width() float32 { return r.Right - r.Left }

// Height returns the rect's vertical extent.
func (r Rect) Height() float32 { return r.Bottom - r.Top }

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.Right-r.Left <= 0 || r.Bottom-r.Top <= 0
}

// Intersects reports whether two rects overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// Intersect returns the overlap of two rects and whether it is non-empty.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	out := Rect{
		Left:   max32(r.Left, o.Left),
		Top:    max32(r.Top, o.Top),
		Right:  min32(r.Right, o.Right),
		Bottom: min32(r.Bottom, o.Bottom),
	}
	return out, !out.Empty()
}

// Union returns the smallest rect covering both.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		Left:   min32(r.Left, o.Left),
		Top:    min32(r.Top, o.Top),
		Right:  max32(r.Right, o.Right),
		Bottom: max32(r.Bottom, o.Bottom),
	}
}

// ContainsStrict reports whether p lies strictly inside the rect, excluding
// the boundary (within epsilon).
func (r Rect) ContainsStrict(p Point) bool {
	return coordLess(r.Left, p.X) && coordLess(p.X, r.Right) &&
		coordLess(r.Top, p.Y) && coordLess(p.Y, r.Bottom)
}

// Offset returns the rect translated by (dx, dy).
func (r Rect) Offset(dx, dy float32) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// coordEqual compares pixel coordinates within epsilon.
func coordEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

// coordLess reports a < b outside the epsilon band.
func coordLess(a, b float32) bool {
	return a < b && !coordEqual(a, b)
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
