package replay

import (
	"encoding/json"
	"fmt"
	"strings"

	"recomp/internal/literal"
)

// Outcome is what one successful replay produced.
type Outcome struct {
	// Path is the snapshot file that was replayed.
	Path string

	// Program is the replayed program's name.
	Program string

	// Result is the final run's output, or nil when result retrieval was
	// skipped.
	Result *literal.Literal

	// Expected is the snapshot's recorded expected result, or nil when
	// none was recorded.
	Expected *literal.Literal
}

// Report renders the outcome for human consumption: one line with the
// computed result's shape and values, and a second "was" line when the
// snapshot recorded an expected result. No equality check happens here;
// comparison is left to whoever reads the output. Returns "" when no
// result was retrieved.
func (o *Outcome) Report() string {
	if o.Result == nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s :: %s:%s", o.Path, o.Program, o.Result.Shape, o.Result)
	if o.Expected != nil {
		fmt.Fprintf(&sb, "\nwas %s:%s", o.Expected.Shape, o.Expected)
	}
	return sb.String()
}

// reportValue is the JSON rendering of one literal.
type reportValue struct {
	Shape string `json:"shape"`
	Value string `json:"value"`
}

// reportJSON is the JSON rendering of an outcome.
type reportJSON struct {
	File    string       `json:"file"`
	Program string       `json:"program"`
	Result  *reportValue `json:"result,omitempty"`
	Was     *reportValue `json:"was,omitempty"`
}

// FormatJSON renders the outcome as JSON for scripted consumption.
func (o *Outcome) FormatJSON() (string, error) {
	r := reportJSON{File: o.Path, Program: o.Program}
	if o.Result != nil {
		r.Result = &reportValue{Shape: o.Result.Shape.String(), Value: o.Result.String()}
	}
	if o.Expected != nil {
		r.Was = &reportValue{Shape: o.Expected.Shape.String(), Value: o.Expected.String()}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
