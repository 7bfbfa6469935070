package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/marksheet-builder/internal/backend"
	"github.com/stemsi/marksheet-builder/internal/model"
	"github.com/stemsi/marksheet-builder/internal/validator"
)

// FallbackErrorMessage is shown when a failure carries no backend message.
const FallbackErrorMessage = "Failed to create template"

var (
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrPartialFailure       = errors.New("some marksheets were not created")
)

// MarksheetBackend is the part of the backend the orchestrator needs.
type MarksheetBackend interface {
	StudentsByTemplate(ctx context.Context, className, userID string) ([]model.Student, error)
	CreateMarksheet(ctx context.Context, req model.MarksheetCreateRequest) (json.RawMessage, error)
}

// ValidationError lists the required fields a template is missing.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("template incomplete: %d invalid field(s)", len(e.Fields))
}

// SubmitError is a failed submission. Message is what the user is shown:
// the backend's message or FallbackErrorMessage.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// SubmitInput is one bulk submission request.
type SubmitInput struct {
	FormID uuid.UUID
	UserID string
	Form   model.TemplateForm
	// ContinueOnError keeps going after a failed student and reports every
	// failure. By default the first failure aborts the run.
	ContinueOnError bool
}

// SubmissionService creates one marksheet per student of the selected class.
type SubmissionService struct {
	backend MarksheetBackend
	tracker *StatusTracker
	log     zerolog.Logger
}

// NewSubmissionService creates a SubmissionService.
func NewSubmissionService(b MarksheetBackend, tracker *StatusTracker, log zerolog.Logger) *SubmissionService {
	return &SubmissionService{
		backend: b,
		tracker: tracker,
		log:     log.With().Str("component", "submission_service").Logger(),
	}
}

// Submit fetches the roster of in.Form.Class and posts one marksheet per
// student, one request at a time, in roster order.
//
// Marksheets already created are never rolled back: when student k fails,
// students 1..k-1 keep their marksheets, k+1..N are skipped and the returned
// result records all of it alongside the error. The class is not checked
// against the user's current template names.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (*model.SubmitResult, error) {
	if fields := validator.ValidateTemplate(in.Form); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	if !s.tracker.TryAcquire(in.FormID) {
		return nil, ErrSubmissionInProgress
	}
	s.tracker.Publish(in.FormID, model.StatusEvent{Event: model.StatusBusy, Busy: true})

	result := &model.SubmitResult{}
	defer func() {
		s.tracker.Release(in.FormID)
		s.tracker.Publish(in.FormID, model.StatusEvent{
			Event:   model.StatusIdle,
			Done:    result.Created + result.Failed,
			Total:   result.Total,
			Message: result.Message,
		})
	}()

	className, base := in.Form.Split()
	result.ClassName = className

	log := s.log.With().
		Str("form_id", in.FormID.String()).
		Str("user_id", in.UserID).
		Str("class", className).
		Logger()

	students, err := s.backend.StudentsByTemplate(ctx, className, in.UserID)
	if err != nil {
		log.Error().Err(err).Msg("error fetching class roster")
		result.Message = userMessage(err)
		return result, &SubmitError{Message: result.Message, Err: err}
	}

	result.Total = len(students)
	result.Outcomes = make([]model.StudentOutcome, len(students))
	for i, st := range students {
		result.Outcomes[i] = model.StudentOutcome{
			RollNo:      st.RollNo,
			StudentName: st.Name,
			Status:      model.OutcomeSkipped,
		}
	}

	var firstErr error
	for i, st := range students {
		if err := ctx.Err(); err != nil {
			processed := result.Created + result.Failed
			log.Warn().Err(err).Int("processed", processed).Msg("bulk submission interrupted")
			result.Message = fmt.Sprintf("Stopped after %d of %d students for class %s: %d created, %d failed",
				processed, result.Total, className, result.Created, result.Failed)
			return result, &SubmitError{Message: result.Message, Err: err}
		}
		out := &result.Outcomes[i]

		created, err := s.backend.CreateMarksheet(ctx, model.NewMarksheetCreateRequest(base, st))
		if err != nil {
			log.Error().Err(err).Str("rollno", st.RollNo.String()).Msg("error creating marksheet")
			out.Status = model.OutcomeFailed
			out.Error = userMessage(err)
			result.Failed++
			s.publishProgress(in.FormID, result, out)

			if firstErr == nil {
				firstErr = err
			}
			if !in.ContinueOnError {
				result.Message = out.Error
				return result, &SubmitError{Message: out.Error, Err: err}
			}
			continue
		}

		out.Status = model.OutcomeCreated
		out.Marksheet = created
		result.Created++
		s.publishProgress(in.FormID, result, out)
	}

	if result.Failed > 0 {
		result.Message = fmt.Sprintf("%d marksheets created, %d failed for class %s", result.Created, result.Failed, className)
		return result, &SubmitError{Message: result.Message, Err: fmt.Errorf("%w: %w", ErrPartialFailure, firstErr)}
	}

	result.Message = fmt.Sprintf("%d marksheets created successfully for class %s", result.Total, className)
	log.Info().Int("created", result.Created).Msg("bulk submission finished")
	return result, nil
}

// IsBusy reports whether formID is being submitted.
func (s *SubmissionService) IsBusy(formID uuid.UUID) bool {
	return s.tracker.IsBusy(formID)
}

// Subscribe streams status events of formID; see StatusTracker.Subscribe.
func (s *SubmissionService) Subscribe(formID uuid.UUID) (<-chan model.StatusEvent, func()) {
	return s.tracker.Subscribe(formID)
}

func (s *SubmissionService) publishProgress(formID uuid.UUID, result *model.SubmitResult, out *model.StudentOutcome) {
	s.tracker.Publish(formID, model.StatusEvent{
		Event:   model.StatusProgress,
		Busy:    true,
		Done:    result.Created + result.Failed,
		Total:   result.Total,
		Student: out.StudentName,
		Status:  out.Status,
		Message: out.Error,
	})
}

// userMessage returns the backend's error message, or the generic fallback
// for transport failures and errors without a message.
func userMessage(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return FallbackErrorMessage
}
