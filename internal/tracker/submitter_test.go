package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"paper-analytics/internal/mocks"
	"paper-analytics/internal/types"
	apperrors "paper-analytics/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testEndpoints = Endpoints{Discovery: "https://engine.test/discovery", Extraction: "https://engine.test/extraction"}

func newTestSubmitter(engine Engine, now time.Time) *Submitter {
	s := NewSubmitter(engine, testEndpoints)
	s.now = func() time.Time { return now }
	return s
}

func TestSubmitDiscovery(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	payload := types.DiscoveryPayload{Keyword: "concrete", YearsBack: 5}

	engine := new(mocks.MockEngine)
	engine.On("StartRun", mock.Anything, testEndpoints.Discovery, payload).Return("run-1", nil).Once()

	h, err := newTestSubmitter(engine, now).SubmitDiscovery(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, types.RunHandle{RunID: "run-1", Phase: types.PhaseDiscovery, CreatedAt: now}, h)
	engine.AssertExpectations(t)
}

func TestSubmitExtraction(t *testing.T) {
	payload := types.ExtractionPayload{Titles: []string{"A", "B"}, Links: []string{"la", ""}}

	engine := new(mocks.MockEngine)
	engine.On("StartRun", mock.Anything, testEndpoints.Extraction, payload).Return("run-2", nil).Once()

	h, err := newTestSubmitter(engine, time.Now()).SubmitExtraction(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, types.PhaseExtraction, h.Phase)
	assert.Equal(t, "run-2", h.RunID)
}

func TestSubmitExtractionRejectsMisalignedLists(t *testing.T) {
	engine := new(mocks.MockEngine)

	_, err := newTestSubmitter(engine, time.Now()).SubmitExtraction(context.Background(), types.ExtractionPayload{
		Titles: []string{"A"},
		Links:  []string{},
	})

	assert.Equal(t, apperrors.CodeInvalidParams, apperrors.GetCode(err))
	engine.AssertNotCalled(t, "StartRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitFailures(t *testing.T) {
	testCases := []struct {
		name     string
		runID    string
		err      error
		wantCode int
	}{
		{name: "missing run id", runID: "", wantCode: apperrors.CodeMissingRunID},
		{name: "blank run id", runID: "  ", wantCode: apperrors.CodeMissingRunID},
		{name: "plain transport error", err: errors.New("dial tcp: refused"), wantCode: apperrors.CodeSubmitFailed},
		{name: "submission error kept", err: apperrors.ErrMissingRunID, wantCode: apperrors.CodeMissingRunID},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine := new(mocks.MockEngine)
			engine.On("StartRun", mock.Anything, mock.Anything, mock.Anything).Return(tc.runID, tc.err).Once()

			h, err := newTestSubmitter(engine, time.Now()).SubmitDiscovery(context.Background(), types.DiscoveryPayload{Keyword: "k", YearsBack: 1})

			require.Error(t, err)
			assert.True(t, apperrors.IsSubmissionError(err))
			assert.Equal(t, tc.wantCode, apperrors.GetCode(err))
			assert.Empty(t, h.RunID)
		})
	}
}

func TestSubmitWithoutEndpoint(t *testing.T) {
	engine := new(mocks.MockEngine)
	s := NewSubmitter(engine, Endpoints{})

	_, err := s.SubmitDiscovery(context.Background(), types.DiscoveryPayload{Keyword: "k", YearsBack: 1})

	assert.True(t, apperrors.IsSubmissionError(err))
	engine.AssertNotCalled(t, "StartRun", mock.Anything, mock.Anything, mock.Anything)
}
