package dto

import "paper-analytics/internal/workflow"

type CreateSessionResData struct {
	SessionId string        `json:"session_id"`
	View      workflow.View `json:"view"`
}

// SearchReq starts the discovery run. Validation is left to the workflow so
// that a rejected search still leaves a notice on the session.
type SearchReq struct {
	Keyword   string `json:"keyword"`
	YearsBack int    `json:"years_back"`
}

type SelectReq struct {
	PaperIds []string `json:"paper_ids"`
}

type ListSessionsResData struct {
	SessionIds []string `json:"session_ids"`
}

type HealthResData struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
