// Package backend defines the execution-engine surface the replay core
// drives, and provides Local, an in-process reference engine that
// interprets the program instruction set. The replay orchestration never
// depends on Local directly; everything goes through the Client
// interface so other engines can be substituted.
package backend

import (
	"context"
	"errors"
	"time"

	"recomp/internal/literal"
	"recomp/internal/program"
	"recomp/internal/shape"
)

// ErrExecution is returned when the engine fails to run an executable.
var ErrExecution = errors.New("execution failed")

// ErrClientClosed is returned for calls against a closed client.
var ErrClientClosed = errors.New("backend client closed")

// ExecConfig configures a single execution. A fresh value is built for
// every run.
type ExecConfig struct {
	// FetchResult controls whether the result value is materialized and
	// returned. Skipping retrieval is a meaningful speedup when the
	// caller only wants timing.
	FetchResult bool

	// Profile enables detailed per-operation timing collection.
	Profile bool
}

// Profile reports what one execution cost.
type Profile struct {
	// ComputeTime is the wall time the engine spent computing.
	ComputeTime time.Duration

	// OpTimings holds cumulative per-opcode time. Populated only when
	// ExecConfig.Profile was set.
	OpTimings map[string]time.Duration
}

// Handle is an opaque reference to a value resident on the engine. The
// engine owns the underlying memory; the handle only names it.
type Handle struct {
	lit *literal.Literal
}

// NewHandle wraps a literal as an engine-resident value.
func NewHandle(lit *literal.Literal) *Handle {
	return &Handle{lit: lit}
}

// Shape returns the shape of the referenced value.
func (h *Handle) Shape() shape.Shape {
	return h.lit.Shape
}

// Literal returns the referenced value.
func (h *Handle) Literal() *literal.Literal {
	return h.lit
}

// Executable is a loaded program ready to run.
type Executable interface {
	// Name returns the program's name.
	Name() string

	// InputShapes returns the shapes of the unbound parameters, in
	// declared parameter order.
	InputShapes() []shape.Shape
}

// Client is a connection to an execution engine. Implementations must be
// safe for concurrent use: the replay core transfers and executes from
// the main flow while a feed worker pushes to the infeed concurrently.
type Client interface {
	// Load prepares a program for execution.
	Load(prog *program.Program) (Executable, error)

	// Transfer materializes a literal on the engine.
	Transfer(lit *literal.Literal) (*Handle, error)

	// PushToInfeed appends one value to the streaming input channel. It
	// blocks until the engine accepts the value (bounded channel
	// backpressure) or ctx is done.
	PushToInfeed(ctx context.Context, lit *literal.Literal) error

	// Execute runs the executable once against the given argument
	// handles. The result literal is nil when cfg.FetchResult is false.
	Execute(ctx context.Context, exe Executable, args []*Handle, cfg ExecConfig) (*literal.Literal, Profile, error)

	// Close releases the connection. Calls after Close fail with
	// ErrClientClosed.
	Close() error
}

// MakeFakeArguments manufactures one synthetic engine-resident value per
// unbound parameter of the executable, in declared parameter order.
func MakeFakeArguments(client Client, exe Executable) ([]*Handle, error) {
	shapes := exe.InputShapes()
	handles := make([]*Handle, 0, len(shapes))
	for _, s := range shapes {
		h, err := client.Transfer(literal.MakeFake(s))
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}
