package style

import "charm.land/log/v2"

// Registry interns the styles defined by the remote editor and keeps the
// per-color opacity side table. Opacity settings arrive keyed by packed RGB
// value and must apply both to styles defined before the setting and to
// styles defined after it, so the registry maintains reverse indexes from
// packed color to the ids of the styles using that color.
type Registry struct {
	logger *log.Logger

	styles    map[ID]*Style
	opacities map[uint32]Opacity

	backgroundIndex map[uint32][]ID
	foregroundIndex map[uint32][]ID
}

// NewRegistry returns an empty registry logging through the given logger.
func NewRegistry(logger *log.Logger) *Registry {
	return &Registry{
		logger:          logger.With("component", "styles"),
		styles:          make(map[ID]*Style),
		opacities:       make(map[uint32]Opacity),
		backgroundIndex: make(map[uint32][]ID),
		foregroundIndex: make(map[uint32][]ID),
	}
}

// SetStyle defines or redefines the style for an id. Any opacity settings
// already recorded for the style's colors are applied immediately, and the
// reverse color indexes are updated so later opacity changes reach this
// style too.
func (r *Registry) SetStyle(id ID, s Style) {
	if old, ok := r.styles[id]; ok {
		r.dropFromIndexes(id, old)
	}

	s.BackgroundOpacity = nil
	s.ForegroundOpacity = nil
	if packed, ok := s.PackedBackground(); ok {
		if op, ok := r.opacities[packed]; ok {
			o := op
			s.BackgroundOpacity = &o
		}
		r.backgroundIndex[packed] = append(r.backgroundIndex[packed], id)
	}
	if packed, ok := s.PackedForeground(); ok {
		if op, ok := r.opacities[packed]; ok {
			o := op
			s.ForegroundOpacity = &o
		}
		r.foregroundIndex[packed] = append(r.foregroundIndex[packed], id)
	}

	r.styles[id] = &s
}

// SetOpacity records an opacity setting for a packed RGB color and rewrites
// every already-defined style using that color. Stored *Style values are
// replaced, never mutated, so handles held by in-flight draw commands keep
// the attributes they were built with.
func (r *Registry) SetOpacity(packed uint32, op Opacity) {
	r.opacities[packed] = op

	for _, id := range r.backgroundIndex[packed] {
		if old, ok := r.styles[id]; ok {
			updated := *old
			o := op
			updated.BackgroundOpacity = &o
			r.styles[id] = &updated
		}
	}
	for _, id := range r.foregroundIndex[packed] {
		if old, ok := r.styles[id]; ok {
			updated := *old
			o := op
			updated.ForegroundOpacity = &o
			r.styles[id] = &updated
		}
	}
}

// Resolve returns the interned style for an id. ID 0 resolves to nil, which
// consumers interpret as "default colors, no attributes". An unknown id also
// resolves to nil but logs a warning, matching the recover-and-log posture
// used everywhere protocol input is consumed.
func (r *Registry) Resolve(id ID) *Style {
	if id == 0 {
		return nil
	}
	s, ok := r.styles[id]
	if !ok {
		r.logger.Warn("unknown highlight id, falling back to default style", "id", id)
		return nil
	}
	return s
}

// Defined reports whether an id has been defined.
func (r *Registry) Defined(id ID) bool {
	_, ok := r.styles[id]
	return ok
}

func (r *Registry) dropFromIndexes(id ID, s *Style) {
	if packed, ok := s.PackedBackground(); ok {
		r.backgroundIndex[packed] = removeID(r.backgroundIndex[packed], id)
	}
	if packed, ok := s.PackedForeground(); ok {
		r.foregroundIndex[packed] = removeID(r.foregroundIndex[packed], id)
	}
}

func removeID(ids []ID, id ID) []ID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
