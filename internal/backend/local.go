package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"recomp/internal/literal"
	"recomp/internal/program"
	"recomp/internal/shape"
)

// DefaultInfeedCapacity bounds the infeed channel when no capacity is
// configured. A small bound keeps engine memory in check while still
// letting a feed worker stay ahead of the consuming computation.
const DefaultInfeedCapacity = 8

// Local is an in-process execution engine that interprets the program
// instruction set directly. One Local client is shared across a whole
// batch invocation; Transfer/Execute from the main flow and PushToInfeed
// from a feed worker may run concurrently.
type Local struct {
	infeed chan *literal.Literal

	mu     sync.Mutex
	closed bool
}

// NewLocal creates a local engine with the given infeed channel
// capacity. Zero or negative capacity selects DefaultInfeedCapacity.
func NewLocal(infeedCapacity int) *Local {
	if infeedCapacity <= 0 {
		infeedCapacity = DefaultInfeedCapacity
	}
	return &Local{infeed: make(chan *literal.Literal, infeedCapacity)}
}

// localExecutable is a validated program loaded into the local engine.
type localExecutable struct {
	prog   *program.Program
	inputs []shape.Shape
}

func (e *localExecutable) Name() string { return e.prog.Name }

func (e *localExecutable) InputShapes() []shape.Shape { return e.inputs }

// Load validates the program and returns an executable for it.
func (c *Local) Load(prog *program.Program) (Executable, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := prog.Validate(); err != nil {
		return nil, err
	}
	return &localExecutable{prog: prog, inputs: prog.Parameters()}, nil
}

// Transfer copies a literal into the engine and returns a handle to it.
func (c *Local) Transfer(lit *literal.Literal) (*Handle, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return NewHandle(lit.Clone()), nil
}

// PushToInfeed appends one value to the infeed channel, blocking until
// the channel accepts it or ctx is done.
func (c *Local) PushToInfeed(ctx context.Context, lit *literal.Literal) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	select {
	case c.infeed <- lit.Clone():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InfeedDepth reports how many values are queued on the infeed channel.
func (c *Local) InfeedDepth() int {
	return len(c.infeed)
}

// Execute interprets the program once. Infeed instructions pop from the
// infeed channel, blocking until a value arrives or ctx is done.
func (c *Local) Execute(ctx context.Context, exe Executable, args []*Handle, cfg ExecConfig) (*literal.Literal, Profile, error) {
	if err := c.checkOpen(); err != nil {
		return nil, Profile{}, err
	}

	le, ok := exe.(*localExecutable)
	if !ok {
		return nil, Profile{}, fmt.Errorf("%w: executable was not loaded by this engine", ErrExecution)
	}

	if len(args) != len(le.inputs) {
		return nil, Profile{}, fmt.Errorf("%w: %s takes %d argument(s), got %d",
			ErrExecution, le.prog.Name, len(le.inputs), len(args))
	}
	for i, h := range args {
		if !h.Shape().Equal(le.inputs[i]) {
			return nil, Profile{}, fmt.Errorf("%w: argument %d has shape %s, parameter wants %s",
				ErrExecution, i, h.Shape(), le.inputs[i])
		}
	}

	prof := Profile{}
	if cfg.Profile {
		prof.OpTimings = make(map[string]time.Duration)
	}

	start := time.Now()
	values := make([]*literal.Literal, len(le.prog.Instructions))
	for i, inst := range le.prog.Instructions {
		opStart := time.Now()
		v, err := c.evaluate(ctx, inst, values, args)
		if err != nil {
			return nil, Profile{}, err
		}
		values[i] = v
		if cfg.Profile {
			prof.OpTimings[string(inst.Opcode)] += time.Since(opStart)
		}
	}
	prof.ComputeTime = time.Since(start)

	if !cfg.FetchResult {
		return nil, prof, nil
	}
	return values[le.prog.Root()].Clone(), prof, nil
}

// evaluate computes one instruction's value from its operands.
func (c *Local) evaluate(ctx context.Context, inst program.Instruction, values []*literal.Literal, args []*Handle) (*literal.Literal, error) {
	switch inst.Opcode {
	case program.OpParameter:
		return args[inst.Parameter].Literal(), nil

	case program.OpConstant:
		lit, err := literal.Decode(*inst.Literal)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecution, err)
		}
		return lit, nil

	case program.OpInfeed:
		select {
		case lit := <-c.infeed:
			if !lit.Shape.Equal(inst.Shape) {
				return nil, fmt.Errorf("%w: infeed received shape %s, instruction wants %s",
					ErrExecution, lit.Shape, inst.Shape)
			}
			return lit, nil
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: waiting for infeed: %v", ErrExecution, ctx.Err())
		}

	case program.OpAdd, program.OpMultiply:
		a := values[inst.Operands[0]]
		b := values[inst.Operands[1]]
		out := literal.New(inst.Shape)
		n := inst.Shape.NumElements()
		for i := 0; i < n; i++ {
			if inst.Opcode == program.OpAdd {
				out.SetElement(i, a.Element(i)+b.Element(i))
			} else {
				out.SetElement(i, a.Element(i)*b.Element(i))
			}
		}
		return out, nil

	case program.OpNegate:
		a := values[inst.Operands[0]]
		out := literal.New(inst.Shape)
		n := inst.Shape.NumElements()
		for i := 0; i < n; i++ {
			out.SetElement(i, -a.Element(i))
		}
		return out, nil

	case program.OpReduceSum:
		a := values[inst.Operands[0]]
		sum := 0.0
		n := a.Shape.NumElements()
		for i := 0; i < n; i++ {
			sum += a.Element(i)
		}
		out := literal.New(inst.Shape)
		out.SetElement(0, sum)
		return out, nil
	}

	return nil, fmt.Errorf("%w: unknown opcode %q", ErrExecution, inst.Opcode)
}

// Close marks the client closed. Pending infeed values are discarded.
func (c *Local) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Local) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}
