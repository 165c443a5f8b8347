// Package snapshot reads and writes captured computation snapshots: a
// program definition, the argument values recorded at capture time, and
// optionally the result that was produced. A snapshot is immutable once
// loaded and owned by the replay invocation that loaded it.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"recomp/internal/literal"
	"recomp/internal/program"
)

// ErrNotSnapshot is returned when a file cannot be read or does not
// contain a valid snapshot.
var ErrNotSnapshot = errors.New("not a computation snapshot")

// Snapshot is a captured computation: the program plus optionally its
// recorded arguments and expected result. Arguments stay in their
// portable record form until the provisioner decodes them.
type Snapshot struct {
	Program   program.Program  `json:"program"`
	Arguments []literal.Record `json:"arguments,omitempty"`
	Result    *literal.Record  `json:"result,omitempty"`
}

// ReadFile loads and validates a snapshot from a file.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSnapshot, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSnapshot, err)
	}

	if err := snap.Program.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSnapshot, err)
	}

	return &snap, nil
}

// WriteFile stores a snapshot, creating parent directories as needed.
func WriteFile(path string, snap *Snapshot) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Digest returns a deterministic fingerprint of the snapshot's content,
// in "sha256:hex" form.
func (s *Snapshot) Digest() string {
	// json.Marshal over structs (no maps) is deterministic: fields are
	// emitted in declaration order.
	data, _ := json.Marshal(s)
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}
