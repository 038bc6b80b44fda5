package tracker

import (
	"strings"

	"paper-analytics/internal/types"
)

const (
	StartingLabel   = "Workflow starting..."
	ProcessingLabel = "Processing..."
)

// StageRule maps a node-name keyword to a progress label. Keywords are
// lowercase and matched case-insensitively.
type StageRule struct {
	Keyword string
	Label   string
}

// StageTable is evaluated in order; the first keyword contained in the node
// name wins.
type StageTable []StageRule

// DiscoveryStages labels the search run's nodes.
var DiscoveryStages = StageTable{
	{Keyword: "search", Label: "Scanning academic databases..."},
	{Keyword: "scholar", Label: "Scanning academic databases..."},
	{Keyword: "filter", Label: "Filtering by publication date..."},
	{Keyword: "date", Label: "Filtering by publication date..."},
	{Keyword: "extract", Label: "Extracting data..."},
	{Keyword: "compile", Label: "Compiling results..."},
	{Keyword: "sheet", Label: "Writing results to sheet..."},
	{Keyword: "output", Label: "Finalizing results..."},
}

// ExtractionStages labels the analysis run's nodes.
var ExtractionStages = StageTable{
	{Keyword: "download", Label: "Downloading papers..."},
	{Keyword: "pdf", Label: "Reading paper PDFs..."},
	{Keyword: "web", Label: "Reading paper pages..."},
	{Keyword: "extract", Label: "Extracting data..."},
	{Keyword: "analy", Label: "Analyzing papers..."},
	{Keyword: "summar", Label: "Summarizing findings..."},
	{Keyword: "compile", Label: "Compiling results..."},
	{Keyword: "sheet", Label: "Writing analysis sheet..."},
	{Keyword: "graph", Label: "Generating graphs..."},
}

// StagesFor returns the table used while a run of phase is active.
func StagesFor(phase types.Phase) StageTable {
	if phase == types.PhaseExtraction {
		return ExtractionStages
	}
	return DiscoveryStages
}

// Classify derives a human-readable activity label from the latest log entry.
func Classify(log []types.LogEntry, table StageTable) string {
	if len(log) == 0 {
		return StartingLabel
	}
	name := strings.ToLower(strings.TrimSpace(log[len(log)-1].NodeName))
	if name == "" {
		return ProcessingLabel
	}
	for _, rule := range table {
		if strings.Contains(name, rule.Keyword) {
			return rule.Label
		}
	}
	return ProcessingLabel
}
