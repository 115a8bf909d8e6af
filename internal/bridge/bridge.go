// Package bridge connects to a headless Neovim process over msgpack-RPC and
// turns its redraw notifications into typed events for the editor goroutine.
package bridge

import (
	"context"
	"fmt"

	"charm.land/log/v2"
	"github.com/google/uuid"
	"github.com/neovim/go-client/nvim"

	"nvgrid/internal/chanutil"
	"nvgrid/internal/editor"
)

// Options selects how to reach the remote editor and what UI to attach.
type Options struct {
	// Address dials an already-running instance; when empty a child process
	// is spawned instead.
	Address string
	// Command is the binary to spawn, "nvim" when empty.
	Command string
	// ExtraArgs are appended after the required --embed.
	ExtraArgs []string

	// Width and Height are the initial root grid size in cells.
	Width  int
	Height int
}

// Bridge owns the RPC session. Redraw notifications are parsed on the RPC
// callback goroutine and pushed into an unbounded ordered queue; the consumer
// drains them from Events.
type Bridge struct {
	client  *nvim.Nvim
	events  *chanutil.Unbounded[editor.RedrawEvent]
	logger  *log.Logger
	session string
}

// New spawns or dials the remote editor and registers the redraw handler.
// The UI is not attached yet; call Attach once the consumer is ready.
func New(ctx context.Context, opts Options, logger *log.Logger) (*Bridge, error) {
	session := uuid.NewString()
	logger = logger.With("component", "bridge", "session", session)

	var client *nvim.Nvim
	var err error
	if opts.Address != "" {
		client, err = nvim.Dial(opts.Address)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", opts.Address, err)
		}
	} else {
		command := opts.Command
		if command == "" {
			command = "nvim"
		}
		args := append([]string{"--embed"}, opts.ExtraArgs...)
		client, err = nvim.NewChildProcess(
			nvim.ChildProcessCommand(command),
			nvim.ChildProcessArgs(args...),
			nvim.ChildProcessContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("spawn %s: %w", command, err)
		}
	}

	b := &Bridge{
		client:  client,
		events:  chanutil.NewUnbounded[editor.RedrawEvent](),
		logger:  logger,
		session: session,
	}
	if err := client.RegisterHandler("redraw", b.handleRedraw); err != nil {
		client.Close()
		return nil, fmt.Errorf("register redraw handler: %w", err)
	}
	return b, nil
}

// Attach subscribes to the line-grid UI protocol with per-window grids.
func (b *Bridge) Attach(opts Options) error {
	err := b.client.AttachUI(opts.Width, opts.Height, map[string]interface{}{
		"rgb":           true,
		"ext_linegrid":  true,
		"ext_multigrid": true,
	})
	if err != nil {
		return fmt.Errorf("attach ui: %w", err)
	}
	b.logger.Info("ui attached", "width", opts.Width, "height", opts.Height)
	return nil
}

// Events is the ordered queue of parsed redraw events.
func (b *Bridge) Events() *chanutil.Unbounded[editor.RedrawEvent] {
	return b.events
}

// Input forwards raw key input to the remote editor.
func (b *Bridge) Input(keys string) error {
	_, err := b.client.Input(keys)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	return nil
}

// Serve pumps the RPC connection until it closes or the context is done,
// then closes the event queue so the consumer drains and stops.
func (b *Bridge) Serve(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- b.client.Serve() }()

	var err error
	select {
	case <-ctx.Done():
		b.client.Close()
		<-done
		err = ctx.Err()
	case err = <-done:
	}
	b.events.Close()
	if err != nil {
		return fmt.Errorf("rpc session: %w", err)
	}
	return nil
}

// Close tears down the RPC connection.
func (b *Bridge) Close() error {
	return b.client.Close()
}

func (b *Bridge) handleRedraw(updates ...[]interface{}) {
	for _, update := range updates {
		for _, event := range ParseUpdate(b.logger, update) {
			b.events.Send(event)
		}
	}
}
