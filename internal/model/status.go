package model

// StatusEventType names a submission status change.
type StatusEventType string

const (
	StatusBusy     StatusEventType = "busy"
	StatusProgress StatusEventType = "progress"
	StatusIdle     StatusEventType = "idle"
)

// StatusEvent is published while a form is being submitted. Clients use it
// to draw the loading overlay and progress.
type StatusEvent struct {
	Event   StatusEventType `json:"event"`
	FormID  string          `json:"form_id"`
	Busy    bool            `json:"busy"`
	Done    int             `json:"done"`
	Total   int             `json:"total"`
	Student string          `json:"student,omitempty"`
	Status  OutcomeStatus   `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
}
