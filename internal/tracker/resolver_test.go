package tracker

import (
	"testing"

	"paper-analytics/internal/types"
	apperrors "paper-analytics/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePriorityAndEmptiness(t *testing.T) {
	testCases := []struct {
		name    string
		outputs types.OutputBag
		wantKey string
		wantOK  bool
	}{
		{
			name:    "first key wins",
			outputs: types.OutputBag{"google_sheet_url": "a", "sheet_url": "b"},
			wantKey: "google_sheet_url",
			wantOK:  true,
		},
		{
			name:    "empty string skipped",
			outputs: types.OutputBag{"google_sheet_url": "  ", "results_url": "c"},
			wantKey: "results_url",
			wantOK:  true,
		},
		{
			name:    "nil skipped",
			outputs: types.OutputBag{"google_sheet_url": nil, "analysis_sheet_url": "d"},
			wantKey: "analysis_sheet_url",
			wantOK:  true,
		},
		{
			name:    "empty list skipped",
			outputs: types.OutputBag{"sheet_url": []any{}, "output_url": "e"},
			wantKey: "output_url",
			wantOK:  true,
		},
		{
			name:    "unknown keys ignored",
			outputs: types.OutputBag{"url": "x"},
			wantOK:  false,
		},
		{
			name:    "nil bag",
			outputs: nil,
			wantOK:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, key, ok := Resolve(tc.outputs, SheetURLField.Keys)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantKey, key)
		})
	}
}

func TestResolveOutcomeDiscoverySuccess(t *testing.T) {
	status := types.RunStatus{
		State: types.RunStateDone,
		Outputs: types.OutputBag{
			"table_content": []any{
				[]any{"1", "Concrete fatigue", "A. Author", "Abstract", "https://doi.org/x"},
				[]any{"2", "Cement curing", nil},
			},
			"paper_count": "4",
		},
	}

	out := ResolveOutcome(types.PhaseDiscovery, status)

	assert.Equal(t, types.OutcomeSuccess, out.Kind)
	assert.NoError(t, out.Err)
	assert.True(t, out.HasCount)
	assert.Equal(t, 4, out.Count)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "Concrete fatigue", out.Rows[0][1])
	assert.Equal(t, "", out.Rows[1][2])
}

func TestResolveOutcomeDiscoveryAcceptsJSONTableAndNumericCount(t *testing.T) {
	status := types.RunStatus{
		State: types.RunStateDone,
		Outputs: types.OutputBag{
			"table_content": `[["1","T","A","Abs","L"]]`,
			"total_papers":  float64(1),
		},
	}

	out := ResolveOutcome(types.PhaseDiscovery, status)

	assert.Equal(t, types.OutcomeSuccess, out.Kind)
	assert.Equal(t, 1, out.Count)
	assert.Len(t, out.Rows, 1)
}

func TestResolveOutcomeSoftFailures(t *testing.T) {
	testCases := []struct {
		name    string
		phase   types.Phase
		outputs types.OutputBag
	}{
		{name: "discovery empty bag", phase: types.PhaseDiscovery, outputs: types.OutputBag{}},
		{name: "discovery count without table", phase: types.PhaseDiscovery, outputs: types.OutputBag{"count": "3"}},
		{name: "discovery table without count", phase: types.PhaseDiscovery, outputs: types.OutputBag{"table_content": []any{[]any{"1"}}}},
		{name: "discovery unparseable count", phase: types.PhaseDiscovery, outputs: types.OutputBag{"table_content": []any{[]any{"1"}}, "count": "many"}},
		{name: "extraction no url", phase: types.PhaseExtraction, outputs: types.OutputBag{"paper_count": "2"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := ResolveOutcome(tc.phase, types.RunStatus{State: types.RunStateDone, Outputs: tc.outputs})
			assert.Equal(t, types.OutcomeSoftFailure, out.Kind)
			assert.Contains(t, out.ErrorMessage, "incomplete")
			assert.True(t, apperrors.Is(out.Err, apperrors.CodeRunIncomplete))
		})
	}
}

func TestResolveOutcomeExtractionSuccess(t *testing.T) {
	out := ResolveOutcome(types.PhaseExtraction, types.RunStatus{
		State:   types.RunStateDone,
		Outputs: types.OutputBag{"results_url": "https://sheets.example/abc"},
	})

	assert.Equal(t, types.OutcomeSuccess, out.Kind)
	assert.Equal(t, "https://sheets.example/abc", out.SheetURL)
}

func TestResolveOutcomeHardFailureMessages(t *testing.T) {
	testCases := []struct {
		name   string
		status types.RunStatus
		want   string
	}{
		{
			name: "first error wins",
			status: types.RunStatus{State: types.RunStateFailed, Log: []types.LogEntry{
				{NodeName: "search"},
				{NodeName: "extract", Error: "timeout"},
				{NodeName: "compile", Error: "later"},
			}},
			want: "timeout",
		},
		{
			name: "failed status without error",
			status: types.RunStatus{State: types.RunStateFailed, Log: []types.LogEntry{
				{NodeName: "Sheet Writer", Status: "FAILED"},
			}},
			want: `Step "Sheet Writer" failed`,
		},
		{
			name:   "generic failure",
			status: types.RunStatus{State: types.RunStateFailed},
			want:   genericFailureMessage,
		},
		{
			name:   "terminated",
			status: types.RunStatus{State: types.RunStateTerminated, Log: []types.LogEntry{{NodeName: "x"}}},
			want:   terminatedFailureMessage,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := ResolveOutcome(types.PhaseExtraction, tc.status)
			assert.Equal(t, types.OutcomeHardFailure, out.Kind)
			assert.Equal(t, tc.want, out.ErrorMessage)
			assert.True(t, apperrors.Is(out.Err, apperrors.CodeRunFailed))
			assert.Equal(t, tc.want, apperrors.GetMessage(out.Err))
		})
	}
}

func TestResolveOutcomeAcceptsFencedTable(t *testing.T) {
	status := types.RunStatus{
		State: types.RunStateDone,
		Outputs: types.OutputBag{
			"table_content": "```json\n[[\"1\",\"T\",\"A\",\"Abs\",\"L\"],[\"2\",\"U\"]]\n```",
			"results_count": "2",
		},
	}

	out := ResolveOutcome(types.PhaseDiscovery, status)

	assert.Equal(t, types.OutcomeSuccess, out.Kind)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "U", out.Rows[1][1])
}
