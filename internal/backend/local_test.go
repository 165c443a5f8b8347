package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"recomp/internal/literal"
	"recomp/internal/program"
	"recomp/internal/shape"
)

func mustLiteral(t *testing.T, s shape.Shape, values []float64) *literal.Literal {
	t.Helper()
	l, err := literal.FromFloat64s(s, values)
	if err != nil {
		t.Fatalf("FromFloat64s: %v", err)
	}
	return l
}

func constantRecord(t *testing.T, s shape.Shape, values []float64) *literal.Record {
	t.Helper()
	rec := literal.Encode(mustLiteral(t, s, values))
	return &rec
}

// addProgram computes p0 + c where c is a constant vector.
func addProgram(t *testing.T) *program.Program {
	vec := shape.Of(shape.F32, 2)
	return &program.Program{
		Name: "add-const",
		Instructions: []program.Instruction{
			{Opcode: program.OpParameter, Shape: vec, Parameter: 0},
			{Opcode: program.OpConstant, Shape: vec, Literal: constantRecord(t, vec, []float64{10, 20})},
			{Opcode: program.OpAdd, Shape: vec, Operands: []int{0, 1}},
		},
	}
}

func TestExecute_Add(t *testing.T) {
	client := NewLocal(0)
	defer client.Close()

	exe, err := client.Load(addProgram(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	vec := shape.Of(shape.F32, 2)
	arg, err := client.Transfer(mustLiteral(t, vec, []float64{1, 2}))
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	result, prof, err := client.Execute(context.Background(), exe, []*Handle{arg}, ExecConfig{FetchResult: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := mustLiteral(t, vec, []float64{11, 22})
	if !result.Equal(want) {
		t.Errorf("result = %s, want %s", result, want)
	}
	if prof.ComputeTime < 0 {
		t.Errorf("ComputeTime = %v, want >= 0", prof.ComputeTime)
	}
}

func TestExecute_NegateAndReduce(t *testing.T) {
	client := NewLocal(0)
	defer client.Close()

	vec := shape.Of(shape.F64, 3)
	prog := &program.Program{
		Name: "neg-sum",
		Instructions: []program.Instruction{
			{Opcode: program.OpParameter, Shape: vec, Parameter: 0},
			{Opcode: program.OpNegate, Shape: vec, Operands: []int{0}},
			{Opcode: program.OpReduceSum, Shape: shape.Of(shape.F64), Operands: []int{1}},
		},
	}

	exe, err := client.Load(prog)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	arg, err := client.Transfer(mustLiteral(t, vec, []float64{1, 2, 3}))
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	result, _, err := client.Execute(context.Background(), exe, []*Handle{arg}, ExecConfig{FetchResult: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := result.Element(0); got != -6 {
		t.Errorf("result = %v, want -6", got)
	}
}

func TestExecute_SkipFetch(t *testing.T) {
	client := NewLocal(0)
	defer client.Close()

	exe, err := client.Load(addProgram(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	vec := shape.Of(shape.F32, 2)
	arg, err := client.Transfer(mustLiteral(t, vec, []float64{1, 2}))
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	result, prof, err := client.Execute(context.Background(), exe, []*Handle{arg}, ExecConfig{FetchResult: false})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result != nil {
		t.Errorf("result = %s, want nil with FetchResult off", result)
	}
	if prof.ComputeTime < 0 {
		t.Error("profile missing even though execution happened")
	}
}

func TestExecute_Profile(t *testing.T) {
	client := NewLocal(0)
	defer client.Close()

	exe, err := client.Load(addProgram(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	vec := shape.Of(shape.F32, 2)
	arg, err := client.Transfer(mustLiteral(t, vec, []float64{1, 2}))
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	_, prof, err := client.Execute(context.Background(), exe, []*Handle{arg}, ExecConfig{FetchResult: true, Profile: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(prof.OpTimings) == 0 {
		t.Error("OpTimings empty with Profile enabled")
	}
	if _, ok := prof.OpTimings[string(program.OpAdd)]; !ok {
		t.Error("OpTimings missing the add op")
	}
}

func TestExecute_ArgumentMismatch(t *testing.T) {
	client := NewLocal(0)
	defer client.Close()

	exe, err := client.Load(addProgram(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// No arguments for a one-parameter program.
	_, _, err = client.Execute(context.Background(), exe, nil, ExecConfig{FetchResult: true})
	if !errors.Is(err, ErrExecution) {
		t.Errorf("Execute error = %v, want ErrExecution", err)
	}

	// Wrong shape.
	wrong, err := client.Transfer(mustLiteral(t, shape.Of(shape.F32, 3), []float64{1, 2, 3}))
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	_, _, err = client.Execute(context.Background(), exe, []*Handle{wrong}, ExecConfig{FetchResult: true})
	if !errors.Is(err, ErrExecution) {
		t.Errorf("Execute error = %v, want ErrExecution", err)
	}
}

func TestInfeed_ConsumedInOrder(t *testing.T) {
	client := NewLocal(4)
	defer client.Close()

	vec := shape.Of(shape.S32, 1)
	prog := &program.Program{
		Name: "two-infeeds-sum",
		Instructions: []program.Instruction{
			{Opcode: program.OpInfeed, Shape: vec},
			{Opcode: program.OpInfeed, Shape: vec},
			{Opcode: program.OpAdd, Shape: vec, Operands: []int{0, 1}},
		},
	}

	exe, err := client.Load(prog)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ctx := context.Background()
	if err := client.PushToInfeed(ctx, mustLiteral(t, vec, []float64{7})); err != nil {
		t.Fatalf("PushToInfeed: %v", err)
	}
	if err := client.PushToInfeed(ctx, mustLiteral(t, vec, []float64{5})); err != nil {
		t.Fatalf("PushToInfeed: %v", err)
	}
	if depth := client.InfeedDepth(); depth != 2 {
		t.Errorf("InfeedDepth = %d, want 2", depth)
	}

	result, _, err := client.Execute(ctx, exe, nil, ExecConfig{FetchResult: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := result.Element(0); got != 12 {
		t.Errorf("result = %v, want 12", got)
	}

	// Both queued values were consumed.
	if depth := client.InfeedDepth(); depth != 0 {
		t.Errorf("InfeedDepth after execute = %d, want 0", depth)
	}
}

func TestInfeed_Backpressure(t *testing.T) {
	client := NewLocal(1)
	defer client.Close()

	vec := shape.Of(shape.F32, 1)
	lit := mustLiteral(t, vec, []float64{1})

	// First push fills the channel.
	if err := client.PushToInfeed(context.Background(), lit); err != nil {
		t.Fatalf("PushToInfeed: %v", err)
	}

	// Second push must block until cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.PushToInfeed(ctx, lit)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("PushToInfeed error = %v, want context.DeadlineExceeded", err)
	}
}

func TestExecute_InfeedWaitsCancellable(t *testing.T) {
	client := NewLocal(1)
	defer client.Close()

	vec := shape.Of(shape.F32, 1)
	prog := &program.Program{
		Name: "starved",
		Instructions: []program.Instruction{
			{Opcode: program.OpInfeed, Shape: vec},
		},
	}

	exe, err := client.Load(prog)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err = client.Execute(ctx, exe, nil, ExecConfig{FetchResult: true})
	if !errors.Is(err, ErrExecution) {
		t.Errorf("Execute error = %v, want ErrExecution for starved infeed", err)
	}
}

func TestClosedClient(t *testing.T) {
	client := NewLocal(0)
	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := client.Load(addProgram(t)); !errors.Is(err, ErrClientClosed) {
		t.Errorf("Load after Close error = %v, want ErrClientClosed", err)
	}
}

func TestMakeFakeArguments(t *testing.T) {
	client := NewLocal(0)
	defer client.Close()

	exe, err := client.Load(addProgram(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	handles, err := MakeFakeArguments(client, exe)
	if err != nil {
		t.Fatalf("MakeFakeArguments: %v", err)
	}
	if len(handles) != 1 {
		t.Fatalf("got %d handles, want 1", len(handles))
	}
	if !handles[0].Shape().Equal(shape.Of(shape.F32, 2)) {
		t.Errorf("handle shape = %v, want f32[2]", handles[0].Shape())
	}
}
