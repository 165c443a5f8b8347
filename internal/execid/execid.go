// Package execid computes deterministic replay identities. An identity
// fingerprints "what exactly was replayed": the snapshot's content
// digest combined with the replay options in canonical form. The same
// snapshot replayed with the same options always produces the same ID.
package execid

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
)

// ReplayIdentity is the fingerprint of one replay invocation.
type ReplayIdentity struct {
	ExecutionID    string `json:"executionId"`    // final fingerprint hash
	SnapshotDigest string `json:"snapshotDigest"` // content digest of the snapshot
	OptionsHash    string `json:"optionsHash"`    // hash of the canonical options form
}

// Compute generates the replay identity for a snapshot digest and an
// options value. Options are serialized to canonical JSON (struct fields
// marshal in declaration order, so the form is deterministic).
func Compute(snapshotDigest string, options any) (ReplayIdentity, error) {
	optJSON, err := json.Marshal(options)
	if err != nil {
		return ReplayIdentity{}, err
	}
	optionsHash := hashString(string(optJSON))

	return ReplayIdentity{
		ExecutionID:    hashString(snapshotDigest + optionsHash),
		SnapshotDigest: snapshotDigest,
		OptionsHash:    optionsHash,
	}, nil
}

// ToJSON serializes the identity to pretty-printed JSON.
func (r ReplayIdentity) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteToFile writes the identity to the specified path.
func (r ReplayIdentity) WriteToFile(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	jsonBytes, err := r.ToJSON()
	if err != nil {
		return err
	}

	return os.WriteFile(path, jsonBytes, 0644)
}

// Short returns just the executionId string.
func (r ReplayIdentity) Short() string {
	return r.ExecutionID
}

// hashString computes SHA-256 of a string and returns sha256:hex format.
func hashString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return "sha256:" + hex.EncodeToString(hash[:])
}
