// Package drift compares a fresh replay result against a stored
// baseline. Drift is reported as warnings only: it never blocks or fails
// the replay.
package drift

import (
	"time"

	"recomp/internal/baseline"
)

// Field identifies what part of the replay drifted.
type Field string

const (
	FieldSnapshot    Field = "snapshot"     // snapshot content digest changed
	FieldResultShape Field = "result shape" // final result shape changed
	FieldResult      Field = "result"       // final result values changed
)

// Change records one drifted field.
type Change struct {
	Field         Field  `json:"field"`
	BaselineValue string `json:"baselineValue"`
	CurrentValue  string `json:"currentValue"`
}

// Report contains the full drift analysis.
type Report struct {
	HasDrift     bool      `json:"hasDrift"`
	BaselineName string    `json:"baselineName"`
	BaselineTime time.Time `json:"baselineTime"`
	Changes      []Change  `json:"changes"`
}

// Detect compares the current replay against a baseline.
func Detect(b baseline.Baseline, current baseline.Baseline) Report {
	report := Report{
		BaselineName: b.Name,
		BaselineTime: b.Timestamp,
		Changes:      []Change{},
	}

	// Identical fingerprints cannot have drifted.
	if b.ExecutionID == current.ExecutionID && b.ResultText == current.ResultText {
		return report
	}

	if b.SnapshotDigest != current.SnapshotDigest {
		report.Changes = append(report.Changes, Change{
			Field:         FieldSnapshot,
			BaselineValue: b.SnapshotDigest,
			CurrentValue:  current.SnapshotDigest,
		})
	}

	if b.ResultShape != current.ResultShape {
		report.Changes = append(report.Changes, Change{
			Field:         FieldResultShape,
			BaselineValue: b.ResultShape,
			CurrentValue:  current.ResultShape,
		})
	} else if b.ResultText != current.ResultText {
		report.Changes = append(report.Changes, Change{
			Field:         FieldResult,
			BaselineValue: b.ResultText,
			CurrentValue:  current.ResultText,
		})
	}

	report.HasDrift = len(report.Changes) > 0
	return report
}
