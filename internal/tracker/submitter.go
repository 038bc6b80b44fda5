package tracker

import (
	"context"
	"strings"
	"time"

	"paper-analytics/internal/types"
	apperrors "paper-analytics/pkg/errors"
)

// Engine is the remote workflow engine as seen by the tracker.
type Engine interface {
	StartRun(ctx context.Context, endpoint string, payload any) (string, error)
	StatusFetcher
}

// Endpoints are the engine URLs that start each phase's workflow.
type Endpoints struct {
	Discovery  string
	Extraction string
}

// Submitter starts runs on the engine and stamps the returned handle with
// its phase and local creation time.
type Submitter struct {
	engine    Engine
	endpoints Endpoints
	now       func() time.Time
}

func NewSubmitter(engine Engine, endpoints Endpoints) *Submitter {
	return &Submitter{
		engine:    engine,
		endpoints: endpoints,
		now:       time.Now,
	}
}

// SubmitDiscovery starts the search workflow.
func (s *Submitter) SubmitDiscovery(ctx context.Context, payload types.DiscoveryPayload) (types.RunHandle, error) {
	return s.submit(ctx, types.PhaseDiscovery, s.endpoints.Discovery, payload)
}

// SubmitExtraction starts the analysis workflow. Titles and Links are
// parallel lists.
func (s *Submitter) SubmitExtraction(ctx context.Context, payload types.ExtractionPayload) (types.RunHandle, error) {
	if len(payload.Titles) != len(payload.Links) {
		return types.RunHandle{}, apperrors.New(apperrors.CodeInvalidParams, "titles and links must have equal length")
	}
	return s.submit(ctx, types.PhaseExtraction, s.endpoints.Extraction, payload)
}

// submit issues exactly one request. Any failure is a submission error and
// nothing is retained.
func (s *Submitter) submit(ctx context.Context, phase types.Phase, endpoint string, payload any) (types.RunHandle, error) {
	if strings.TrimSpace(endpoint) == "" {
		return types.RunHandle{}, apperrors.New(apperrors.CodeSubmitFailed, "no endpoint configured for "+phase.String())
	}
	runID, err := s.engine.StartRun(ctx, endpoint, payload)
	if err != nil {
		if apperrors.IsSubmissionError(err) {
			return types.RunHandle{}, err
		}
		return types.RunHandle{}, apperrors.Wrap(apperrors.CodeSubmitFailed, "Workflow submission failed", err)
	}
	if strings.TrimSpace(runID) == "" {
		return types.RunHandle{}, apperrors.ErrMissingRunID
	}
	return types.RunHandle{
		RunID:     runID,
		Phase:     phase,
		CreatedAt: s.now(),
	}, nil
}
