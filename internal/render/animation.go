package render

import "math"

// easeOutExpo starts fast and settles exponentially; t is clamped to [0,1].
func easeOutExpo(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return 1 - float32(math.Pow(2, float64(-10*t)))
}

func lerpPoint(a, b Point, t float32) Point {
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// positionAnimation eases a window from its previous position to a new
// target over a fixed duration.
type positionAnimation struct {
	start    Point
	target   Point
	duration float32
	elapsed  float32
	started  bool
}

// SetTarget retargets the animation. The first target snaps into place so
// newly created windows do not fly in from the origin.
func (a *positionAnimation) SetTarget(p Point, duration float32) {
	if !a.started {
		a.started = true
		a.start = p
		a.target = p
		a.elapsed = duration
		a.duration = duration
		return
	}
	if p == a.target {
		return
	}
	a.start = a.Position()
	a.target = p
	a.duration = duration
	a.elapsed = 0
}

// Update advances the animation and reports whether it is still moving.
func (a *positionAnimation) Update(dt float32) bool {
	if a.elapsed >= a.duration {
		return false
	}
	a.elapsed += dt
	return a.elapsed < a.duration
}

// Position returns the current eased position.
func (a *positionAnimation) Position() Point {
	if a.duration <= 0 || a.elapsed >= a.duration {
		return a.target
	}
	return lerpPoint(a.start, a.target, easeOutExpo(a.elapsed/a.duration))
}
