// Package grid implements the character grid backing a single editor window:
// a dense cell matrix plus a parallel dirty bitmap used to skip redundant
// draw-command emission.
package grid

import "nvgrid/internal/style"

// Cell is a single character cell. Text holds one grapheme cluster; the
// trailing cell of a double-width glyph is written with empty Text so that
// renderers can tell continuation cells from never-written ones via Set.
type Cell struct {
	Text string
	HL   style.ID
	Set  bool
}

// CharacterGrid is a Width x Height matrix of cells stored row-major in a
// flat slice, with a dirty flag per cell.
type CharacterGrid struct {
	Width  int
	Height int

	// ShouldClear asks the renderer to wipe the window surfaces before the
	// next redraw instead of painting over stale content.
	ShouldClear bool

	cells []Cell
	dirty []bool
}

// New returns a grid of the given dimensions with every cell unset and
// every cell marked dirty.
func New(width, height int) *CharacterGrid {
	g := &CharacterGrid{Width: width, Height: height}
	g.cells = make([]Cell, width*height)
	g.dirty = make([]bool, width*height)
	for i := range g.dirty {
		g.dirty[i] = true
	}
	return g
}

// Resize reinitializes the grid at new dimensions. Content is dropped, all
// cells are marked dirty, and ShouldClear is raised; the remote editor
// resends visible content after a resize.
func (g *CharacterGrid) Resize(width, height int) {
	if width == g.Width && height == g.Height {
		return
	}
	g.Width = width
	g.Height = height
	g.cells = make([]Cell, width*height)
	g.dirty = make([]bool, width*height)
	for i := range g.dirty {
		g.dirty[i] = true
	}
	g.ShouldClear = true
}

// Clear resets every cell to unset, marks everything dirty, and raises
// ShouldClear.
func (g *CharacterGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = Cell{}
		g.dirty[i] = true
	}
	g.ShouldClear = true
}

// CellAt returns the cell at (x, y), reporting false when the coordinates
// are out of bounds.
func (g *CharacterGrid) CellAt(x, y int) (Cell, bool) {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return Cell{}, false
	}
	return g.cells[y*g.Width+x], true
}

// SetCellAt stores a cell at (x, y) without touching the dirty bitmap.
// Callers mark dirtiness separately so that pure content moves (scrolls)
// and content writes stay distinguishable.
func (g *CharacterGrid) SetCellAt(x, y int, c Cell) bool {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return false
	}
	g.cells[y*g.Width+x] = c
	return true
}

// Row returns the cells of row y as a slice view, or nil when out of bounds.
func (g *CharacterGrid) Row(y int) []Cell {
	if y < 0 || y >= g.Height {
		return nil
	}
	return g.cells[y*g.Width : (y+1)*g.Width]
}

// MarkDirty flags the cell at (x, y) as changed.
func (g *CharacterGrid) MarkDirty(x, y int) {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return
	}
	g.dirty[y*g.Width+x] = true
}

// Dirty reports whether the cell at (x, y) is flagged as changed.
func (g *CharacterGrid) Dirty(x, y int) bool {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return false
	}
	return g.dirty[y*g.Width+x]
}

// RowDirty reports whether any cell in row y within [left, right) is
// flagged as changed.
func (g *CharacterGrid) RowDirty(y, left, right int) bool {
	if y < 0 || y >= g.Height {
		return false
	}
	left = clamp(left, 0, g.Width)
	right = clamp(right, 0, g.Width)
	for x := left; x < right; x++ {
		if g.dirty[y*g.Width+x] {
			return true
		}
	}
	return false
}

// ClearRowDirty resets the dirty flags of row y within [left, right).
func (g *CharacterGrid) ClearRowDirty(y, left, right int) {
	if y < 0 || y >= g.Height {
		return
	}
	left = clamp(left, 0, g.Width)
	right = clamp(right, 0, g.Width)
	for x := left; x < right; x++ {
		g.dirty[y*g.Width+x] = false
	}
}

// SetAllDirty sets every dirty flag to v.
func (g *CharacterGrid) SetAllDirty(v bool) {
	for i := range g.dirty {
		g.dirty[i] = v
	}
}

// ScrollRegion shifts the cells inside the rectangle rows [top, bottom) and
// columns [left, right) by rows cells up (positive) or down (negative) and
// by cols cells left (positive) or right (negative). Out-of-range bounds
// are clamped to the grid. Cells shifted outside the region are discarded;
// vacated cells keep their previous content until the remote editor resends
// them. The dirty bitmap is untouched: a pure move is not a content change.
//
// The returned flag reports whether the scroll was a pure vertical shift
// (no column component), which renderers can honor with a pixel blit.
func (g *CharacterGrid) ScrollRegion(top, bottom, left, right, rows, cols int) bool {
	top = clamp(top, 0, g.Height)
	bottom = clamp(bottom, 0, g.Height)
	left = clamp(left, 0, g.Width)
	right = clamp(right, 0, g.Width)
	if top >= bottom || left >= right {
		return cols == 0
	}

	yRange := shiftRange(top, bottom, rows)
	xRange := shiftRange(left, right, cols)

	for _, y := range yRange {
		for _, x := range xRange {
			cell, ok := g.CellAt(x, y)
			if !ok {
				continue
			}
			g.SetCellAt(x-cols, y-rows, cell)
		}
	}

	return cols == 0
}

// shiftRange returns the source indexes of a shift by delta over [lo, hi),
// ordered so that reads always happen before the write that would clobber
// them.
func shiftRange(lo, hi, delta int) []int {
	var out []int
	if delta > 0 {
		for i := lo + delta; i < hi; i++ {
			out = append(out, i)
		}
	} else if delta < 0 {
		for i := hi + delta - 1; i >= lo; i-- {
			out = append(out, i)
		}
	} else {
		for i := lo; i < hi; i++ {
			out = append(out, i)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
