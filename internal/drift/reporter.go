package drift

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatCLI formats a drift report for terminal output.
func FormatCLI(report Report) string {
	if !report.HasDrift {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "result drift detected against baseline '%s':\n", report.BaselineName)

	for _, change := range report.Changes {
		fmt.Fprintf(&sb, "  ~ %s: %s -> %s\n", change.Field, change.BaselineValue, change.CurrentValue)
	}

	sb.WriteString("\nReplay continues.\n")
	return sb.String()
}

// FormatJSON formats a drift report as JSON.
func FormatJSON(report Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
