// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"paper-analytics/internal/types"

	"github.com/stretchr/testify/mock"
)

// MockEngine is a mock implementation of tracker.Engine
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) StartRun(ctx context.Context, endpoint string, payload any) (string, error) {
	args := m.Called(ctx, endpoint, payload)
	return args.String(0), args.Error(1)
}

func (m *MockEngine) RunStatus(ctx context.Context, runID string) (*types.RunStatus, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RunStatus), args.Error(1)
}

// MockSubmitter is a mock implementation of workflow.Submitter
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) SubmitDiscovery(ctx context.Context, payload types.DiscoveryPayload) (types.RunHandle, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(types.RunHandle), args.Error(1)
}

func (m *MockSubmitter) SubmitExtraction(ctx context.Context, payload types.ExtractionPayload) (types.RunHandle, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(types.RunHandle), args.Error(1)
}
