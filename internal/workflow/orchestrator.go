// Package workflow drives the two-phase search and extraction flow on top of
// the tracker primitives.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"paper-analytics/internal/tracker"
	"paper-analytics/internal/types"
	"paper-analytics/log"
	apperrors "paper-analytics/pkg/errors"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

var errReset = apperrors.New(apperrors.CodeInvalidTransition, "Workflow was reset while submitting")

type Submitter interface {
	SubmitDiscovery(ctx context.Context, payload types.DiscoveryPayload) (types.RunHandle, error)
	SubmitExtraction(ctx context.Context, payload types.ExtractionPayload) (types.RunHandle, error)
}

type Poller interface {
	Start(handle types.RunHandle, h tracker.Handlers)
	Stop()
}

// Windows is the expected run duration per phase, used for progress.
type Windows struct {
	Discovery  time.Duration
	Extraction time.Duration
}

func (w Windows) For(phase types.Phase) time.Duration {
	if phase == types.PhaseExtraction {
		return w.Extraction
	}
	return w.Discovery
}

// Listener receives every published View. It is called with the
// orchestrator locked and must neither block nor call back into it.
type Listener func(View)

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func WithListener(l Listener) Option {
	return func(o *Orchestrator) {
		o.listener = l
	}
}

type query struct {
	keyword   string
	yearsBack int
}

// Orchestrator owns the workflow state and at most one active run.
type Orchestrator struct {
	submitter Submitter
	poller    Poller
	windows   Windows
	now       func() time.Time
	listener  Listener

	runMu sync.Mutex // orders poller hand-off against Reset

	mu           sync.Mutex
	state        State
	generation   uint64
	progress     types.ProgressSnapshot
	pollFailures int
	notice       *Notice
	query        query
	submitCancel context.CancelFunc
}

func New(submitter Submitter, poller Poller, windows Windows, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		submitter: submitter,
		poller:    poller,
		windows:   windows,
		now:       time.Now,
		state:     Input{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

// Observe calls fn with the current view under the publish lock, so no view
// is published between the snapshot and fn returning. The Listener rules
// apply to fn.
func (o *Orchestrator) Observe(fn func(View)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(o.viewLocked())
}

// SubmitDiscovery starts the search run. It is only valid from Input.
func (o *Orchestrator) SubmitDiscovery(ctx context.Context, keyword string, yearsBack int) error {
	keyword = strings.TrimSpace(keyword)

	o.mu.Lock()
	if _, ok := o.state.(Input); !ok {
		o.mu.Unlock()
		return apperrors.ErrInvalidTransition
	}
	if keyword == "" || yearsBack <= 0 {
		o.notice = &Notice{Level: NoticeWarning, Code: apperrors.CodeInvalidParams, Title: "Missing information", Message: "Enter a research topic and choose a time range."}
		o.publishLocked()
		o.mu.Unlock()
		return apperrors.WrapWithDetail(apperrors.CodeInvalidParams, apperrors.ErrInvalidParams.Message,
			"keyword and a positive years_back are required", nil)
	}

	o.query = query{keyword: keyword, yearsBack: yearsBack}
	o.state = Processing{}
	o.resetRunLocked()
	gen, subCtx := o.beginSubmitLocked(ctx)
	o.publishLocked()
	o.mu.Unlock()

	log.GetLogger().Info("[Workflow] submitting discovery run",
		zap.String("keyword", keyword), zap.Int("years_back", yearsBack))

	handle, err := o.submitter.SubmitDiscovery(subCtx, types.DiscoveryPayload{Keyword: keyword, YearsBack: yearsBack})
	return o.afterSubmit(gen, handle, err, Input{})
}

// SelectPapers starts the extraction run for the given paper ids. It is only
// valid from Selection; an empty or unknown selection is rejected without
// contacting the engine.
func (o *Orchestrator) SelectPapers(ctx context.Context, ids []string) error {
	o.mu.Lock()
	sel, ok := o.state.(Selection)
	if !ok {
		o.mu.Unlock()
		return apperrors.ErrInvalidTransition
	}

	ids = lo.Uniq(lo.FilterMap(ids, func(id string, _ int) (string, bool) {
		id = strings.TrimSpace(id)
		return id, id != ""
	}))
	if len(ids) == 0 {
		o.notice = &Notice{Level: NoticeWarning, Code: apperrors.CodeEmptySelection, Title: "No papers selected", Message: "Select at least one paper to continue."}
		o.publishLocked()
		o.mu.Unlock()
		return apperrors.ErrEmptySelection
	}

	byID := lo.KeyBy(sel.Papers, func(p types.Paper) string { return p.ID })
	unknown := lo.Filter(ids, func(id string, _ int) bool {
		_, found := byID[id]
		return !found
	})
	if len(unknown) > 0 {
		o.mu.Unlock()
		return apperrors.WrapWithDetail(apperrors.CodeInvalidParams, apperrors.ErrInvalidParams.Message,
			"unknown paper ids: "+strings.Join(unknown, ", "), nil)
	}

	selected := lo.Map(ids, func(id string, _ int) types.Paper { return byID[id] })
	o.state = ExtractionProcessing{Selection: sel, Selected: selected}
	o.resetRunLocked()
	gen, subCtx := o.beginSubmitLocked(ctx)
	o.publishLocked()
	o.mu.Unlock()

	payload := types.ExtractionPayload{
		Titles: lo.Map(selected, func(p types.Paper, _ int) string { return p.Title }),
		Links:  lo.Map(selected, func(p types.Paper, _ int) string { return p.Link }),
	}
	log.GetLogger().Info("[Workflow] submitting extraction run", zap.Int("papers", len(selected)))

	handle, err := o.submitter.SubmitExtraction(subCtx, payload)
	return o.afterSubmit(gen, handle, err, sel)
}

// Reset returns to Input from any state. Once it returns no run of this
// orchestrator is being polled and nothing submitted earlier can change the
// state.
func (o *Orchestrator) Reset() {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	o.mu.Lock()
	if o.submitCancel != nil {
		o.submitCancel()
		o.submitCancel = nil
	}
	o.generation++
	o.state = Input{}
	o.query = query{}
	o.notice = nil
	o.resetRunLocked()
	o.publishLocked()
	o.mu.Unlock()

	o.poller.Stop()
}

func (o *Orchestrator) resetRunLocked() {
	o.progress = types.ProgressSnapshot{StageLabel: tracker.StartingLabel}
	o.pollFailures = 0
	o.notice = nil
}

func (o *Orchestrator) beginSubmitLocked(ctx context.Context) (uint64, context.Context) {
	o.generation++
	subCtx, cancel := context.WithCancel(ctx)
	o.submitCancel = cancel
	return o.generation, subCtx
}

// afterSubmit installs the new run or rolls back to prev.
func (o *Orchestrator) afterSubmit(gen uint64, handle types.RunHandle, err error, prev State) error {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		if err != nil {
			return err
		}
		log.GetLogger().Info("[Workflow] dropping run submitted before reset", zap.String("run_id", handle.RunID))
		return errReset
	}
	if o.submitCancel != nil {
		o.submitCancel()
		o.submitCancel = nil
	}

	if err != nil {
		o.state = prev
		o.resetRunLocked()
		o.notice = &Notice{Level: NoticeError, Code: apperrors.GetCode(err), Title: "Submission failed", Message: apperrors.GetMessage(err)}
		o.publishLocked()
		o.mu.Unlock()
		log.GetLogger().Error("[Workflow] submission failed", zap.Error(err))
		return err
	}

	switch s := o.state.(type) {
	case Processing:
		s.Handle = handle
		o.state = s
	case ExtractionProcessing:
		s.Handle = handle
		o.state = s
	}
	o.publishLocked()
	o.mu.Unlock()

	o.poller.Start(handle, o.handlers(gen, handle))
	return nil
}

func (o *Orchestrator) handlers(gen uint64, handle types.RunHandle) tracker.Handlers {
	return tracker.Handlers{
		OnTick: func(status types.RunStatus) {
			o.onTick(gen, handle, status)
		},
		OnTerminal: func(status types.RunStatus) {
			o.onTerminal(gen, handle, status)
		},
		OnError: func(_ error, consecutive int) {
			o.mu.Lock()
			defer o.mu.Unlock()
			if gen != o.generation {
				return
			}
			o.pollFailures = consecutive
			o.publishLocked()
		},
	}
}

func (o *Orchestrator) onTick(gen uint64, handle types.RunHandle, status types.RunStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return
	}

	pct := tracker.Estimate(status.State, status.CreatedAt, o.now(), o.windows.For(handle.Phase))
	if pct < o.progress.Percentage {
		pct = o.progress.Percentage
	}
	o.progress = types.ProgressSnapshot{
		Percentage: pct,
		StageLabel: tracker.Classify(status.Log, tracker.StagesFor(handle.Phase)),
	}
	o.pollFailures = 0
	o.publishLocked()
}

func (o *Orchestrator) onTerminal(gen uint64, handle types.RunHandle, status types.RunStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return
	}

	outcome := tracker.ResolveOutcome(handle.Phase, status)
	log.GetLogger().Info("[Workflow] run finished",
		zap.String("run_id", handle.RunID),
		zap.String("phase", handle.Phase.String()),
		zap.String("state", string(status.State)),
		zap.String("outcome", outcome.Kind.String()),
		zap.NamedError("reason", outcome.Err))

	o.submitCancel = nil
	o.pollFailures = 0

	switch s := o.state.(type) {
	case Processing:
		if outcome.Kind == types.OutcomeSuccess {
			o.state = Selection{
				PaperCount: outcome.Count,
				Rows:       outcome.Rows,
				Papers:     types.PapersFromRows(outcome.Rows),
				SheetURL:   outcome.SheetURL,
			}
			o.progress = types.ProgressSnapshot{Percentage: 100, StageLabel: "Complete"}
			o.notice = &Notice{
				Level:   NoticeSuccess,
				Title:   "Papers found",
				Message: fmt.Sprintf("Found %d relevant papers for %q.", outcome.Count, o.query.keyword),
			}
		} else {
			o.state = Input{}
			o.notice = failureNotice(outcome, "Search failed")
		}
	case ExtractionProcessing:
		if outcome.Kind == types.OutcomeSuccess {
			o.state = ExtractionDone{SheetURL: outcome.SheetURL, Selection: s.Selection, Selected: s.Selected}
			o.progress = types.ProgressSnapshot{Percentage: 100, StageLabel: "Complete"}
			o.notice = &Notice{Level: NoticeSuccess, Title: "Analysis complete", Message: "Your analysis sheet is ready."}
		} else {
			o.state = s.Selection
			o.notice = failureNotice(outcome, "Analysis failed")
		}
	default:
		return
	}
	o.publishLocked()
}

func failureNotice(outcome types.RunOutcome, title string) *Notice {
	code := apperrors.GetCode(outcome.Err)
	if outcome.Kind == types.OutcomeSoftFailure {
		return &Notice{Level: NoticeWarning, Code: code, Title: "Incomplete results", Message: outcome.ErrorMessage}
	}
	return &Notice{Level: NoticeError, Code: code, Title: title, Message: outcome.ErrorMessage}
}

func (o *Orchestrator) publishLocked() {
	if o.listener != nil {
		o.listener(o.viewLocked())
	}
}

func (o *Orchestrator) viewLocked() View {
	v := View{
		Step:         o.state.Step(),
		PollFailures: o.pollFailures,
		Keyword:      o.query.keyword,
		YearsBack:    o.query.yearsBack,
		Notice:       o.notice,
	}
	progress := o.progress

	switch s := o.state.(type) {
	case Processing:
		v.Phase = types.PhaseDiscovery.String()
		v.RunID = s.Handle.RunID
		v.Progress = &progress
	case Selection:
		v.PaperCount = s.PaperCount
		v.Papers = s.Papers
		v.SheetURL = s.SheetURL
	case ExtractionProcessing:
		v.Phase = types.PhaseExtraction.String()
		v.RunID = s.Handle.RunID
		v.Progress = &progress
		v.PaperCount = s.Selection.PaperCount
		v.Selected = s.Selected
	case ExtractionDone:
		v.PaperCount = s.Selection.PaperCount
		v.Selected = s.Selected
		v.SheetURL = s.SheetURL
	}
	return v
}
