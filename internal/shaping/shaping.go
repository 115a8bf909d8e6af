// Package shaping turns cell text into positioned glyph clusters. The grid
// model is strictly monospace, so shaping reduces to grapheme segmentation
// and column-width measurement; the package still sits behind an interface
// so a real text shaper can replace the fixed-advance one.
package shaping

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// CellWidth reports how many grid columns the given cell text occupies.
// Empty text (a double-width continuation cell) is zero columns wide.
func CellWidth(text string) int {
	if text == "" {
		return 0
	}
	return runewidth.StringWidth(text)
}

// Glyph is one grapheme cluster positioned inside a run.
type Glyph struct {
	// Text is the grapheme cluster.
	Text string
	// Column is the cluster's offset in columns from the run start.
	Column int
	// Columns is the cluster's width in columns.
	Columns int
}

// GlyphRun is a shaped fragment of line text.
type GlyphRun struct {
	Glyphs  []Glyph
	Columns int
}

// Shaper lays out fragment text into a glyph run.
type Shaper interface {
	Shape(text string) GlyphRun
}

// Monospace is the fixed-advance shaper: one grapheme cluster per glyph,
// each advancing by its measured column width.
type Monospace struct{}

// Shape implements Shaper.
func (Monospace) Shape(text string) GlyphRun {
	var run GlyphRun
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		w := runewidth.StringWidth(cluster)
		if w < 1 {
			w = 1
		}
		run.Glyphs = append(run.Glyphs, Glyph{Text: cluster, Column: run.Columns, Columns: w})
		run.Columns += w
	}
	return run
}
