package model

import "encoding/json"

// MarksheetCreateRequest is the POST /marksheets body: the template fields
// merged with one student's identity.
type MarksheetCreateRequest struct {
	TemplateFields
	StuName   string `json:"stu_name"`
	ToAddress string `json:"toAddress"`
	RollNo    RollNo `json:"rollno"`
}

// NewMarksheetCreateRequest merges base with the identity fields of s.
func NewMarksheetCreateRequest(base TemplateFields, s Student) MarksheetCreateRequest {
	return MarksheetCreateRequest{
		TemplateFields: base,
		StuName:        s.Name,
		ToAddress:      s.Address,
		RollNo:         s.RollNo,
	}
}

// OutcomeStatus is the per-student result of a bulk submission.
type OutcomeStatus string

const (
	OutcomeCreated OutcomeStatus = "created"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// StudentOutcome records what happened to one student of the roster.
type StudentOutcome struct {
	RollNo      RollNo          `json:"rollno"`
	StudentName string          `json:"stu_name"`
	Status      OutcomeStatus   `json:"status"`
	Error       string          `json:"error,omitempty"`
	Marksheet   json.RawMessage `json:"marksheet,omitempty"`
}

// SubmitResult summarizes a bulk submission. Created marksheets are never
// rolled back, so a failed submission may still have Created > 0.
type SubmitResult struct {
	ClassName string           `json:"class_name"`
	Total     int              `json:"total"`
	Created   int              `json:"created"`
	Failed    int              `json:"failed"`
	Outcomes  []StudentOutcome `json:"outcomes"`
	Message   string           `json:"message"`
}
