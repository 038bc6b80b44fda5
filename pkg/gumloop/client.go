package gumloop

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"paper-analytics/internal/types"
	"paper-analytics/log"
	apperrors "paper-analytics/pkg/errors"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client talks to the workflow engine's webhook and run-status endpoints.
// Auth: header Authorization: "Bearer <token>" on every call.
type Client struct {
	StatusURL string
	UserID    string

	http *resty.Client
}

type Options struct {
	StatusURL string
	Token     string
	UserID    string
	Timeout   time.Duration
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := resty.New().
		SetTimeout(timeout).
		SetAuthToken(strings.TrimSpace(opts.Token)).
		SetHeader("Accept", "application/json")

	return &Client{
		StatusURL: strings.TrimSpace(opts.StatusURL),
		UserID:    strings.TrimSpace(opts.UserID),
		http:      httpClient,
	}
}

type startRunResp struct {
	RunID string `json:"run_id"`
}

type logItem struct {
	NodeName string `json:"node_name"`
	Error    string `json:"error"`
	Status   string `json:"status"`
}

type runStatusResp struct {
	State     string          `json:"state"`
	CreatedTs string          `json:"created_ts"`
	Log       []logItem       `json:"log"`
	Outputs   types.OutputBag `json:"outputs"`
}

// StartRun posts payload as JSON to endpoint and returns the new run id.
func (c *Client) StartRun(ctx context.Context, endpoint string, payload any) (string, error) {
	if c == nil {
		return "", apperrors.New(apperrors.CodeSubmitFailed, "workflow client is nil")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(endpoint)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeSubmitFailed, "Workflow submission failed", err)
	}
	if resp.IsError() {
		return "", apperrors.WrapWithDetail(apperrors.CodeSubmitFailed, "Workflow submission failed",
			fmt.Sprintf("status=%d body=%s", resp.StatusCode(), truncate(resp.String(), 512)), nil)
	}

	var out startRunResp
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return "", apperrors.WrapWithDetail(apperrors.CodeSubmitFailed, "Workflow submission returned malformed JSON",
			truncate(resp.String(), 512), err)
	}
	runID := strings.TrimSpace(out.RunID)
	if runID == "" {
		return "", apperrors.WrapWithDetail(apperrors.CodeMissingRunID, "Workflow response did not include a run id",
			truncate(resp.String(), 512), nil)
	}

	log.GetLogger().Info("workflow run started", zap.String("endpoint", endpoint), zap.String("run_id", runID))
	return runID, nil
}

// RunStatus fetches the current state of runID.
func (c *Client) RunStatus(ctx context.Context, runID string) (*types.RunStatus, error) {
	if c == nil {
		return nil, apperrors.New(apperrors.CodePollFailed, "workflow client is nil")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"run_id":  runID,
			"user_id": c.UserID,
		}).
		Get(c.StatusURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePollFailed, "Run status request failed", err)
	}
	if resp.IsError() {
		return nil, apperrors.WrapWithDetail(apperrors.CodePollFailed, "Run status request failed",
			fmt.Sprintf("status=%d body=%s", resp.StatusCode(), truncate(resp.String(), 512)), nil)
	}

	var out runStatusResp
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, apperrors.Wrap(apperrors.CodePollFailed, "Run status returned malformed JSON", err)
	}
	return out.toRunStatus(), nil
}

func (r runStatusResp) toRunStatus() *types.RunStatus {
	entries := make([]types.LogEntry, 0, len(r.Log))
	for _, item := range r.Log {
		entries = append(entries, types.LogEntry{
			NodeName: item.NodeName,
			Error:    item.Error,
			Status:   item.Status,
		})
	}
	createdAt, _ := ParseTimestamp(r.CreatedTs)
	return &types.RunStatus{
		State:     types.ParseRunState(r.State),
		CreatedAt: createdAt,
		Log:       entries,
		Outputs:   r.Outputs,
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp accepts the engine's created_ts. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
