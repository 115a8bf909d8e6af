package render

import (
	"math"
	"sort"
)

// The silhouette of a floating-window group is the rectilinear outline of
// the union of its pixel regions. It is built in two passes: collect the
// candidate corners (rect corners plus pairwise intersection corners,
// merged by position and excluding points strictly inside any rect), then
// walk them clockwise preferring to continue straight, only ever stepping
// between corners that share a source rect.

type corner struct {
	p     Point
	rects []int
}

func (c *corner) sharesRect(o *corner) bool {
	for _, i := range c.rects {
		for _, j := range o.rects {
			if i == j {
				return true
			}
		}
	}
	return false
}

func (c *corner) leftOf(o *corner) bool { return coordLess(c.p.X, o.p.X) }
func (c *corner) above(o *corner) bool  { return coordLess(c.p.Y, o.p.Y) }
func (c *corner) sameX(o *corner) bool  { return coordEqual(c.p.X, o.p.X) }
func (c *corner) sameY(o *corner) bool  { return coordEqual(c.p.Y, o.p.Y) }

// buildSilhouette returns the clockwise outline polygon of the regions and
// its bounding rect.
func buildSilhouette(regions []Rect) (Path, Rect) {
	corners := silhouetteCorners(regions)
	points := sortPointsClockwise(corners)

	path := Path{Points: points}
	var bounds Rect
	for i, p := range points {
		r := Rect{Left: p.X, Top: p.Y, Right: p.X, Bottom: p.Y}
		if i == 0 {
			bounds = r
		} else {
			bounds = Rect{
				Left:   min32(bounds.Left, p.X),
				Top:    min32(bounds.Top, p.Y),
				Right:  max32(bounds.Right, p.X),
				Bottom: max32(bounds.Bottom, p.Y),
			}
		}
	}
	return path, bounds
}

// silhouetteCorners merges the corners of every region and of every
// pairwise intersection, drops points strictly inside any region, and
// returns the rest sorted by x then y.
func silhouetteCorners(regions []Rect) []corner {
	type key struct{ x, y int64 }
	quantize := func(p Point) key {
		return key{
			x: int64(math.Round(float64(p.X) / epsilon)),
			y: int64(math.Round(float64(p.Y) / epsilon)),
		}
	}

	merged := make(map[key]*corner)
	add := func(p Point, rects ...int) {
		k := quantize(p)
		c, ok := merged[k]
		if !ok {
			c = &corner{p: p}
			merged[k] = c
		}
		for _, r := range rects {
			found := false
			for _, existing := range c.rects {
				if existing == r {
					found = true
					break
				}
			}
			if !found {
				c.rects = append(c.rects, r)
			}
		}
	}

	for i := range regions {
		for j := range regions {
			if i == j {
				continue
			}
			if overlap, ok := regions[i].Intersect(regions[j]); ok {
				add(Point{overlap.Left, overlap.Top}, i, j)
				add(Point{overlap.Right, overlap.Top}, i, j)
				add(Point{overlap.Right, overlap.Bottom}, i, j)
				add(Point{overlap.Left, overlap.Bottom}, i, j)
			}
		}
	}
	for i, r := range regions {
		add(Point{r.Left, r.Top}, i)
		add(Point{r.Right, r.Top}, i)
		add(Point{r.Right, r.Bottom}, i)
		add(Point{r.Left, r.Bottom}, i)
	}

	corners := make([]corner, 0, len(merged))
	for _, c := range merged {
		inside := false
		for _, r := range regions {
			if r.ContainsStrict(c.p) {
				inside = true
				break
			}
		}
		if !inside {
			corners = append(corners, *c)
		}
	}

	sort.Slice(corners, func(a, b int) bool {
		ca, cb := corners[a], corners[b]
		if !coordEqual(ca.p.X, cb.p.X) {
			return ca.p.X < cb.p.X
		}
		if !coordEqual(ca.p.Y, cb.p.Y) {
			return ca.p.Y < cb.p.Y
		}
		return false
	})
	return corners
}

type moveDirection int

const (
	moveRight moveDirection = iota
	moveUp
	moveDown
	moveLeft
)

// sortPointsClockwise walks the corners into a clockwise outline. The first
// corner (minimum x, then y) is a top-left corner of the outline, so the
// walk starts rightward; at every step the direction preference keeps the
// walk turning clockwise around the outside.
func sortPointsClockwise(corners []corner) []Point {
	if len(corners) == 0 {
		return nil
	}

	used := make([]bool, len(corners))
	used[0] = true
	points := []Point{corners[0].p}

	pivot := &corners[0]
	direction := moveRight
	for {
		next, nextDirection, ok := findNearestPoint(pivot, corners, used, direction)
		if !ok {
			break
		}
		points = append(points, corners[next].p)
		used[next] = true
		pivot = &corners[next]
		direction = nextDirection
	}
	return points
}

// findNearestPoint picks the next unused corner sharing a rect with the
// pivot, trying directions in clockwise preference order relative to the
// previous move: right->R,U,D,L; up->U,R,L,D; down->D,L,R,U; left->L,D,U,R.
func findNearestPoint(pivot *corner, corners []corner, used []bool, previous moveDirection) (int, moveDirection, bool) {
	var prefs []moveDirection
	switch previous {
	case moveRight:
		prefs = []moveDirection{moveRight, moveUp, moveDown, moveLeft}
	case moveUp:
		prefs = []moveDirection{moveUp, moveRight, moveLeft, moveDown}
	case moveDown:
		prefs = []moveDirection{moveDown, moveLeft, moveRight, moveUp}
	case moveLeft:
		prefs = []moveDirection{moveLeft, moveDown, moveUp, moveRight}
	}

	for _, dir := range prefs {
		if idx, ok := tryDirection(pivot, corners, used, dir); ok {
			return idx, dir, true
		}
	}
	return 0, previous, false
}

// tryDirection finds the nearest eligible corner strictly in the given
// direction on the pivot's row or column.
func tryDirection(pivot *corner, corners []corner, used []bool, dir moveDirection) (int, bool) {
	best := -1
	for i := range corners {
		c := &corners[i]
		if used[i] || !pivot.sharesRect(c) {
			continue
		}
		var eligible bool
		switch dir {
		case moveRight:
			eligible = pivot.leftOf(c) && pivot.sameY(c)
		case moveUp:
			eligible = c.above(pivot) && pivot.sameX(c)
		case moveDown:
			eligible = pivot.above(c) && pivot.sameX(c)
		case moveLeft:
			eligible = c.leftOf(pivot) && pivot.sameY(c)
		}
		if !eligible {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		b := &corners[best]
		switch dir {
		case moveRight:
			if coordLess(c.p.X, b.p.X) {
				best = i
			}
		case moveUp:
			if coordLess(b.p.Y, c.p.Y) {
				best = i
			}
		case moveDown:
			if coordLess(c.p.Y, b.p.Y) {
				best = i
			}
		case moveLeft:
			if coordLess(b.p.X, c.p.X) {
				best = i
			}
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}
