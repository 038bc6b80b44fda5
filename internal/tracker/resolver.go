package tracker

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"paper-analytics/internal/types"
	apperrors "paper-analytics/pkg/errors"
	"paper-analytics/pkg/util"
)

// OutputField names a logical result and the bag keys that may carry it,
// highest priority first.
type OutputField struct {
	Name string
	Keys []string
}

var (
	SheetURLField = OutputField{
		Name: "sheet_url",
		Keys: []string{"google_sheet_url", "sheet_url", "results_url", "output_url", "analysis_sheet_url"},
	}
	CountField = OutputField{
		Name: "count",
		Keys: []string{"paper_count", "count", "total_papers", "results_count"},
	}
	TableField = OutputField{
		Name: "table",
		Keys: []string{"table_content"},
	}
)

const (
	softFailureMessage       = "The workflow finished but its results are incomplete or unclear. Please try again."
	genericFailureMessage    = "The workflow failed."
	terminatedFailureMessage = "The workflow was terminated before it finished."
)

// Resolve returns the value of the first key whose value is present and
// non-empty, together with that key.
func Resolve(outputs types.OutputBag, keys []string) (any, string, bool) {
	for _, key := range keys {
		v, ok := outputs[key]
		if !ok || isEmpty(v) {
			continue
		}
		return v, key, true
	}
	return nil, "", false
}

// Resolve looks the field up in outputs.
func (f OutputField) Resolve(outputs types.OutputBag) (any, bool) {
	v, _, ok := Resolve(outputs, f.Keys)
	return v, ok
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// ResolveOutcome classifies a terminal status for phase.
func ResolveOutcome(phase types.Phase, status types.RunStatus) types.RunOutcome {
	switch status.State {
	case types.RunStateFailed, types.RunStateTerminated:
		return hardFailure(failureMessage(status))
	case types.RunStateDone:
	default:
		return hardFailure(fmt.Sprintf("unexpected non-terminal state %s", status.State))
	}

	var out types.RunOutcome
	if v, ok := SheetURLField.Resolve(status.Outputs); ok {
		out.SheetURL = stringify(v)
	}
	if v, ok := CountField.Resolve(status.Outputs); ok {
		out.Count, out.HasCount = toCount(v)
	}
	if v, ok := TableField.Resolve(status.Outputs); ok {
		out.Rows, _ = toRows(v)
	}

	resolved := false
	switch phase {
	case types.PhaseDiscovery:
		resolved = out.Rows != nil && out.HasCount
	case types.PhaseExtraction:
		resolved = out.SheetURL != ""
	}
	if !resolved {
		out.Kind = types.OutcomeSoftFailure
		out.ErrorMessage = softFailureMessage
		out.Err = apperrors.New(apperrors.CodeRunIncomplete, softFailureMessage)
		return out
	}
	out.Kind = types.OutcomeSuccess
	return out
}

func hardFailure(msg string) types.RunOutcome {
	return types.RunOutcome{
		Kind:         types.OutcomeHardFailure,
		ErrorMessage: msg,
		Err:          apperrors.New(apperrors.CodeRunFailed, msg),
	}
}

// failureMessage takes the first log entry carrying an error or a "failed"
// status.
func failureMessage(status types.RunStatus) string {
	for _, entry := range status.Log {
		if msg := strings.TrimSpace(entry.Error); msg != "" {
			return msg
		}
		if strings.EqualFold(strings.TrimSpace(entry.Status), "failed") {
			if entry.NodeName != "" {
				return fmt.Sprintf("Step %q failed", entry.NodeName)
			}
			return genericFailureMessage
		}
	}
	if status.State == types.RunStateTerminated {
		return terminatedFailureMessage
	}
	return genericFailureMessage
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func toCount(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 || t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case int:
		return t, t >= 0
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil && n >= 0
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil && n >= 0
	default:
		return 0, false
	}
}

// toRows accepts an array of arrays, or a string holding one as JSON,
// possibly wrapped in prose or a fenced block.
func toRows(v any) ([][]string, bool) {
	if s, ok := v.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(util.ExtractJsonFromText(s)), &decoded); err != nil {
			return nil, false
		}
		v = decoded
	}
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	rows := make([][]string, 0, len(list))
	for _, item := range list {
		cells, ok := item.([]any)
		if !ok {
			return nil, false
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			if c != nil {
				row[i] = stringify(c)
			}
		}
		rows = append(rows, row)
	}
	return rows, true
}
