package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"recomp/internal/literal"
	"recomp/internal/program"
	"recomp/internal/shape"
)

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	vec := shape.Of(shape.F32, 2)

	arg, err := literal.FromFloat64s(vec, []float64{1, 2})
	if err != nil {
		t.Fatalf("FromFloat64s: %v", err)
	}
	result, err := literal.FromFloat64s(vec, []float64{-1, -2})
	if err != nil {
		t.Fatalf("FromFloat64s: %v", err)
	}
	resultRec := literal.Encode(result)

	return &Snapshot{
		Program: program.Program{
			Name: "negate",
			Instructions: []program.Instruction{
				{Opcode: program.OpParameter, Shape: vec, Parameter: 0},
				{Opcode: program.OpNegate, Shape: vec, Operands: []int{0}},
			},
		},
		Arguments: []literal.Record{literal.Encode(arg)},
		Result:    &resultRec,
	}
}

func TestReadWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "negate.snapshot")

	snap := testSnapshot(t)
	if err := WriteFile(path, snap); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if loaded.Program.Name != "negate" {
		t.Errorf("Program.Name = %q, want %q", loaded.Program.Name, "negate")
	}
	if len(loaded.Arguments) != 1 {
		t.Errorf("len(Arguments) = %d, want 1", len(loaded.Arguments))
	}
	if loaded.Result == nil {
		t.Error("Result = nil, want recorded result")
	}
	if loaded.Digest() != snap.Digest() {
		t.Error("digest changed across a write/read round trip")
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.snapshot"))
	if !errors.Is(err, ErrNotSnapshot) {
		t.Errorf("ReadFile error = %v, want ErrNotSnapshot", err)
	}
}

func TestReadFile_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage")
	if err := os.WriteFile(path, []byte("this is not a snapshot"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadFile(path)
	if !errors.Is(err, ErrNotSnapshot) {
		t.Errorf("ReadFile error = %v, want ErrNotSnapshot", err)
	}
}

func TestReadFile_InvalidProgram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snapshot")
	// Valid JSON, but the program has no instructions.
	if err := os.WriteFile(path, []byte(`{"program":{"name":"empty","instructions":[]}}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadFile(path)
	if !errors.Is(err, ErrNotSnapshot) {
		t.Errorf("ReadFile error = %v, want ErrNotSnapshot", err)
	}
}

func TestDigest_SensitiveToContent(t *testing.T) {
	a := testSnapshot(t)
	b := testSnapshot(t)
	b.Program.Name = "other"

	if a.Digest() == b.Digest() {
		t.Error("different snapshots produced the same digest")
	}
}
