package types

import "fmt"

const (
	defaultPaperTitle    = "Untitled Paper"
	defaultPaperAuthor   = "Unknown Author"
	defaultPaperAbstract = "No abstract available"
)

// Paper is one row of the discovery table.
type Paper struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Abstract string `json:"abstract"`
	Link     string `json:"link,omitempty"`
}

// PapersFromRows maps raw table rows into papers. Column 0 is the engine's row
// label; title, author, abstract and link follow in that order.
func PapersFromRows(rows [][]string) []Paper {
	papers := make([]Paper, 0, len(rows))
	for i, row := range rows {
		papers = append(papers, Paper{
			ID:       fmt.Sprintf("paper_%d", i),
			Title:    cell(row, 1, defaultPaperTitle),
			Author:   cell(row, 2, defaultPaperAuthor),
			Abstract: cell(row, 3, defaultPaperAbstract),
			Link:     cell(row, 4, ""),
		})
	}
	return papers
}

func cell(row []string, idx int, fallback string) string {
	if idx < len(row) && row[idx] != "" {
		return row[idx]
	}
	return fallback
}
