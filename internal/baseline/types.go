// Package baseline stores named known-good replay results for later
// drift comparison. Each baseline is one JSON file on disk.
package baseline

import "time"

// Baseline captures a replay result worth comparing future replays to.
type Baseline struct {
	Name           string    `json:"name"`           // baseline identifier
	ExecutionID    string    `json:"executionId"`    // replay fingerprint
	SnapshotDigest string    `json:"snapshotDigest"` // content digest of the replayed snapshot
	ResultShape    string    `json:"resultShape"`    // shape of the final result
	ResultText     string    `json:"resultText"`     // rendered final result
	Timestamp      time.Time `json:"timestamp"`      // when the baseline was saved
}

// Summary is a lightweight view for listing baselines.
type Summary struct {
	Name        string    `json:"name"`
	ResultShape string    `json:"resultShape"`
	Timestamp   time.Time `json:"timestamp"`
}
