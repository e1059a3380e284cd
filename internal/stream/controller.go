package stream

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNilEntry is reported when the stream hands over an empty entry.
	ErrNilEntry = errors.New("file may not be empty or undefined")
	// ErrTerminated is returned for calls made after the run already ended.
	ErrTerminated = errors.New("stream already terminated")
)

// Stage is the fold and finalisation a controller drives.
type Stage interface {
	// Accept folds one entry into the stage. It is called before the entry
	// is re-emitted.
	Accept(entry *FileEntry) error
	// Finalize runs once at end of input.
	Finalize(ctx context.Context) error
}

type state int

const (
	collecting state = iota
	finalizing
	terminated
)

// Controller passes entries through to a Sink while feeding them to a Stage.
type Controller struct {
	stage Stage
	sink  Sink

	mu    sync.Mutex
	state state
}

// NewController creates a controller in the collecting state.
func NewController(stage Stage, sink Sink) *Controller {
	return &Controller{stage: stage, sink: sink}
}

// Write handles one incoming entry. A nil entry or a stage error terminates
// the stream with an error signal.
func (c *Controller) Write(entry *FileEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != collecting {
		return ErrTerminated
	}
	if entry == nil {
		c.fail(ErrNilEntry)
		return ErrNilEntry
	}
	if err := c.stage.Accept(entry); err != nil {
		c.fail(err)
		return err
	}
	c.sink.Emit(entry)
	return nil
}

// End signals end of input: the stage is finalised and the sink receives
// Complete on success or Fail with the finalisation error.
func (c *Controller) End(ctx context.Context) error {
	c.mu.Lock()
	if c.state != collecting {
		c.mu.Unlock()
		return ErrTerminated
	}
	c.state = finalizing
	c.mu.Unlock()

	err := c.stage.Finalize(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(err)
		return err
	}
	c.state = terminated
	c.sink.Complete()
	return nil
}

func (c *Controller) fail(err error) {
	c.state = terminated
	c.sink.Fail(err)
}

// Run writes every entry then ends the stream, stopping early if a write
// terminates it.
func Run(ctx context.Context, c *Controller, entries []*FileEntry) error {
	for _, e := range entries {
		if err := c.Write(e); err != nil {
			return err
		}
	}
	return c.End(ctx)
}
