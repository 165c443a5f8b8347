package replay

import (
	"context"
	"sync"

	"recomp/internal/backend"
	"recomp/internal/literal"
	"recomp/internal/program"
	"recomp/internal/shape"
)

// fakeExecutable is a loaded program in the fake engine.
type fakeExecutable struct {
	name   string
	inputs []shape.Shape
}

func (e fakeExecutable) Name() string               { return e.name }
func (e fakeExecutable) InputShapes() []shape.Shape { return e.inputs }

// fakeClient is a scripted backend.Client that records every call, used
// to observe how the orchestration drives the engine.
type fakeClient struct {
	mu sync.Mutex

	transfers []*literal.Literal // literals passed to Transfer, in order
	pushes    int                // completed PushToInfeed calls
	executes  int                // completed Execute calls

	execErrOn int   // fail Execute on this call number (1-based); 0 means never
	execErr   error // error to fail with
	pushErr   error // error returned by every push, when set
	blockPush bool  // pushes block until ctx is done

	pushLimit int           // when > 0, close fed after this many pushes
	fed       chan struct{} // closed when pushLimit is reached
}

func newFakeClient() *fakeClient {
	return &fakeClient{fed: make(chan struct{})}
}

func (f *fakeClient) Load(prog *program.Program) (backend.Executable, error) {
	return fakeExecutable{name: prog.Name, inputs: prog.Parameters()}, nil
}

func (f *fakeClient) Transfer(lit *literal.Literal) (*backend.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = append(f.transfers, lit)
	return backend.NewHandle(lit), nil
}

func (f *fakeClient) PushToInfeed(ctx context.Context, lit *literal.Literal) error {
	if f.blockPush {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.pushErr != nil {
		return f.pushErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes++
	if f.pushLimit > 0 && f.pushes == f.pushLimit {
		close(f.fed)
	}
	return nil
}

// Execute returns a scalar whose value is the call number, so callers
// can tell which run produced the result they got back.
func (f *fakeClient) Execute(ctx context.Context, exe backend.Executable, args []*backend.Handle, cfg backend.ExecConfig) (*literal.Literal, backend.Profile, error) {
	f.mu.Lock()
	f.executes++
	call := f.executes
	f.mu.Unlock()

	if f.execErrOn > 0 && call == f.execErrOn {
		return nil, backend.Profile{}, f.execErr
	}

	if !cfg.FetchResult {
		return nil, backend.Profile{}, nil
	}

	result := literal.New(shape.Of(shape.F64))
	result.SetElement(0, float64(call))
	return result, backend.Profile{}, nil
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) executeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.executes
}

func (f *fakeClient) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pushes
}

func (f *fakeClient) transferCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transfers)
}
