package editor

import (
	"nvgrid/internal/chanutil"
)

// Batcher groups draw commands into per-flush batches and forwards them to
// the renderer. While disabled (during startup, before the remote editor
// has produced a complete first frame) finished batches are held back and
// released in their original order once enabled, so the renderer never
// observes a partial frame or a reordering.
//
// The batcher is confined to the editor goroutine; only the outgoing queue
// is shared with the renderer.
type Batcher struct {
	out     *chanutil.Unbounded[[]DrawCommand]
	batch   []DrawCommand
	queued  [][]DrawCommand
	enabled bool
}

// NewBatcher returns an enabled batcher sending batches to out.
func NewBatcher(out *chanutil.Unbounded[[]DrawCommand]) *Batcher {
	return &Batcher{out: out, enabled: true}
}

// Queue appends a command to the in-progress batch.
func (b *Batcher) Queue(cmd DrawCommand) {
	b.batch = append(b.batch, cmd)
}

// SendBatch finishes the in-progress batch. When enabled it is forwarded
// immediately; otherwise it is held until SetEnabled(true).
func (b *Batcher) SendBatch() {
	if len(b.batch) == 0 {
		return
	}
	batch := b.batch
	b.batch = nil
	if b.enabled {
		b.out.Send(batch)
		return
	}
	b.queued = append(b.queued, batch)
}

// SetEnabled toggles forwarding. Enabling releases every held batch in the
// order it was finished.
func (b *Batcher) SetEnabled(enabled bool) {
	if enabled && !b.enabled {
		for _, batch := range b.queued {
			b.out.Send(batch)
		}
		b.queued = nil
	}
	b.enabled = enabled
}
