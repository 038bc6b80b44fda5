package workflow

import "paper-analytics/internal/types"

type Step string

const (
	StepInput                Step = "input"
	StepProcessing           Step = "processing"
	StepSelection            Step = "selection"
	StepExtractionProcessing Step = "extraction_processing"
	StepExtractionDone       Step = "extraction_done"
)

// State is one of Input, Processing, Selection, ExtractionProcessing or
// ExtractionDone.
type State interface {
	Step() Step
	isState()
}

type Input struct{}

// Processing is the discovery run in flight. Handle is zero until the
// submission has returned.
type Processing struct {
	Handle types.RunHandle
}

// Selection holds the discovered papers awaiting a choice.
type Selection struct {
	PaperCount int
	Rows       [][]string
	Papers     []types.Paper
	SheetURL   string
}

// ExtractionProcessing keeps the Selection it came from so a failed run can
// return to it.
type ExtractionProcessing struct {
	Handle    types.RunHandle
	Selection Selection
	Selected  []types.Paper
}

type ExtractionDone struct {
	SheetURL  string
	Selection Selection
	Selected  []types.Paper
}

func (Input) Step() Step                { return StepInput }
func (Processing) Step() Step           { return StepProcessing }
func (Selection) Step() Step            { return StepSelection }
func (ExtractionProcessing) Step() Step { return StepExtractionProcessing }
func (ExtractionDone) Step() Step       { return StepExtractionDone }

func (Input) isState()                {}
func (Processing) isState()           {}
func (Selection) isState()            {}
func (ExtractionProcessing) isState() {}
func (ExtractionDone) isState()       {}

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is the user-facing message left by the latest transition. Code is
// the apperrors code behind a warning or error and zero on success.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Code    int         `json:"code,omitempty"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

// View is the serializable snapshot published to listeners.
type View struct {
	Step         Step                    `json:"step"`
	Phase        string                  `json:"phase,omitempty"`
	RunID        string                  `json:"run_id,omitempty"`
	Progress     *types.ProgressSnapshot `json:"progress,omitempty"`
	PollFailures int                     `json:"poll_failures"`
	Keyword      string                  `json:"keyword,omitempty"`
	YearsBack    int                     `json:"years_back,omitempty"`
	PaperCount   int                     `json:"paper_count,omitempty"`
	Papers       []types.Paper           `json:"papers,omitempty"`
	Selected     []types.Paper           `json:"selected,omitempty"`
	SheetURL     string                  `json:"sheet_url,omitempty"`
	Notice       *Notice                 `json:"notice,omitempty"`
}
