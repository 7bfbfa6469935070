package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/marksheet-builder/internal/backend"
	"github.com/stemsi/marksheet-builder/internal/model"
)

type fakeBackend struct {
	roster    []model.Student
	rosterErr error
	// failAt maps a 1-based call number to the error CreateMarksheet returns.
	failAt map[int]error

	rosterClass string
	rosterUser  string
	requests    []model.MarksheetCreateRequest
	onCreate    func()
}

func (f *fakeBackend) StudentsByTemplate(_ context.Context, className, userID string) ([]model.Student, error) {
	f.rosterClass, f.rosterUser = className, userID
	return f.roster, f.rosterErr
}

func (f *fakeBackend) CreateMarksheet(_ context.Context, req model.MarksheetCreateRequest) (json.RawMessage, error) {
	f.requests = append(f.requests, req)
	if f.onCreate != nil {
		f.onCreate()
	}
	if err, ok := f.failAt[len(f.requests)]; ok {
		return nil, err
	}
	return json.RawMessage(fmt.Sprintf(`{"_id":"m%d"}`, len(f.requests))), nil
}

func roster(n int) []model.Student {
	out := make([]model.Student, n)
	for i := range out {
		out[i] = model.Student{
			Name:     fmt.Sprintf("Student %d", i+1),
			Address:  fmt.Sprintf("%d Temple Road", i+1),
			RollNo:   model.RollNoInt(i + 1),
			TempName: "III IT A",
		}
	}
	return out
}

func validForm() model.TemplateForm {
	return model.TemplateForm{
		TemplateFields: model.TemplateFields{
			TemplateName: "PT1",
			College:      "Test College",
			Year:         "III",
			OddEven:      model.SemesterOdd,
			Sem:          "V",
			Date:         "2024-09-02",
			ClassSem:     "III IT A / V",
			Subjects:     []model.Subject{{Name: "Networks", Code: "IT501"}, {Name: "Compilers", Code: "IT502"}},
			TotalMark:    "100",
			PassingMark:  "50",
		},
		Class: "III IT A",
	}
}

func newSubmission(b MarksheetBackend) (*SubmissionService, *StatusTracker) {
	tracker := NewStatusTracker()
	return NewSubmissionService(b, tracker, zerolog.Nop()), tracker
}

func TestSubmitCreatesOneMarksheetPerStudent(t *testing.T) {
	fb := &fakeBackend{roster: roster(3)}
	svc, tracker := newSubmission(fb)
	formID := uuid.New()
	fb.onCreate = func() { assert.True(t, tracker.IsBusy(formID)) }

	form := validForm()
	result, err := svc.Submit(context.Background(), SubmitInput{FormID: formID, UserID: "u1", Form: form})
	require.NoError(t, err)

	assert.Equal(t, "III IT A", fb.rosterClass)
	assert.Equal(t, "u1", fb.rosterUser)
	require.Len(t, fb.requests, 3)
	for i, req := range fb.requests {
		st := fb.roster[i]
		assert.Equal(t, form.TemplateFields, req.TemplateFields)
		assert.Equal(t, st.Name, req.StuName)
		assert.Equal(t, st.Address, req.ToAddress)
		assert.Equal(t, st.RollNo, req.RollNo)
	}

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, "3 marksheets created successfully for class III IT A", result.Message)
	for _, out := range result.Outcomes {
		assert.Equal(t, model.OutcomeCreated, out.Status)
		assert.NotEmpty(t, out.Marksheet)
	}
	assert.False(t, tracker.IsBusy(formID))
}

func TestSubmitAbortsOnFirstFailure(t *testing.T) {
	const n, k = 5, 2
	fb := &fakeBackend{
		roster: roster(n),
		failAt: map[int]error{k: &backend.APIError{StatusCode: http.StatusConflict, Message: "Marksheet already exists"}},
	}
	svc, tracker := newSubmission(fb)
	formID := uuid.New()

	result, err := svc.Submit(context.Background(), SubmitInput{FormID: formID, UserID: "u1", Form: validForm()})

	var subErr *SubmitError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "Marksheet already exists", subErr.Message)
	assert.Len(t, fb.requests, k, "students after the failing one must not be sent")

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, model.OutcomeCreated, result.Outcomes[0].Status)
	assert.Equal(t, model.OutcomeFailed, result.Outcomes[1].Status)
	for _, out := range result.Outcomes[k:] {
		assert.Equal(t, model.OutcomeSkipped, out.Status)
	}
	assert.False(t, tracker.IsBusy(formID))
}

func TestSubmitFailureOnEveryPosition(t *testing.T) {
	const n = 4
	for k := 1; k <= n; k++ {
		fb := &fakeBackend{roster: roster(n), failAt: map[int]error{k: errors.New("connection reset")}}
		svc, tracker := newSubmission(fb)
		formID := uuid.New()

		_, err := svc.Submit(context.Background(), SubmitInput{FormID: formID, UserID: "u1", Form: validForm()})
		require.Error(t, err)
		assert.Len(t, fb.requests, k)
		assert.False(t, tracker.IsBusy(formID))
	}
}

func TestSubmitFallbackMessage(t *testing.T) {
	fb := &fakeBackend{
		roster: roster(2),
		failAt: map[int]error{1: &backend.APIError{StatusCode: http.StatusInternalServerError}},
	}
	svc, _ := newSubmission(fb)

	result, err := svc.Submit(context.Background(), SubmitInput{FormID: uuid.New(), UserID: "u1", Form: validForm()})

	var subErr *SubmitError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, FallbackErrorMessage, subErr.Message)
	assert.Equal(t, FallbackErrorMessage, result.Message)
}

func TestSubmitRosterFailure(t *testing.T) {
	fb := &fakeBackend{rosterErr: &backend.APIError{StatusCode: http.StatusNotFound, Message: "No students found"}}
	svc, tracker := newSubmission(fb)
	formID := uuid.New()

	_, err := svc.Submit(context.Background(), SubmitInput{FormID: formID, UserID: "u1", Form: validForm()})

	var subErr *SubmitError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "No students found", subErr.Message)
	assert.Empty(t, fb.requests)
	assert.False(t, tracker.IsBusy(formID))
}

func TestSubmitEmptyRoster(t *testing.T) {
	svc, _ := newSubmission(&fakeBackend{})

	result, err := svc.Submit(context.Background(), SubmitInput{FormID: uuid.New(), UserID: "u1", Form: validForm()})
	require.NoError(t, err)
	assert.Equal(t, "0 marksheets created successfully for class III IT A", result.Message)
}

func TestSubmitContinueOnError(t *testing.T) {
	fb := &fakeBackend{
		roster: roster(4),
		failAt: map[int]error{
			2: &backend.APIError{StatusCode: http.StatusBadRequest, Message: "bad rollno"},
			3: errors.New("timeout"),
		},
	}
	svc, _ := newSubmission(fb)

	result, err := svc.Submit(context.Background(), SubmitInput{
		FormID:          uuid.New(),
		UserID:          "u1",
		Form:            validForm(),
		ContinueOnError: true,
	})

	require.ErrorIs(t, err, ErrPartialFailure)
	assert.Len(t, fb.requests, 4)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, "bad rollno", result.Outcomes[1].Error)
	assert.Equal(t, FallbackErrorMessage, result.Outcomes[2].Error)
	assert.Equal(t, "2 marksheets created, 2 failed for class III IT A", result.Message)
}

func TestSubmitStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fb := &fakeBackend{roster: roster(4)}
	fb.onCreate = func() {
		if len(fb.requests) == 1 {
			cancel()
		}
	}
	svc, tracker := newSubmission(fb)
	formID := uuid.New()

	result, err := svc.Submit(ctx, SubmitInput{
		FormID:          formID,
		UserID:          "u1",
		Form:            validForm(),
		ContinueOnError: true,
	})

	var subErr *SubmitError
	require.ErrorAs(t, err, &subErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, fb.requests, 1)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, model.OutcomeCreated, result.Outcomes[0].Status)
	for _, out := range result.Outcomes[1:] {
		assert.Equal(t, model.OutcomeSkipped, out.Status)
		assert.Empty(t, out.Error)
	}
	assert.Equal(t, "Stopped after 1 of 4 students for class III IT A: 1 created, 0 failed", result.Message)
	assert.False(t, tracker.IsBusy(formID))
}

func TestSubmitRejectsConcurrentRun(t *testing.T) {
	fb := &fakeBackend{roster: roster(1)}
	svc, tracker := newSubmission(fb)
	formID := uuid.New()
	require.True(t, tracker.TryAcquire(formID))

	_, err := svc.Submit(context.Background(), SubmitInput{FormID: formID, UserID: "u1", Form: validForm()})
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.Empty(t, fb.requests)
	assert.True(t, tracker.IsBusy(formID), "the running submission keeps its flag")
}

func TestSubmitValidatesRequiredFields(t *testing.T) {
	fb := &fakeBackend{roster: roster(1)}
	svc, tracker := newSubmission(fb)
	formID := uuid.New()

	form := validForm()
	form.Class = ""
	form.Subjects[1].Code = ""

	_, err := svc.Submit(context.Background(), SubmitInput{FormID: formID, UserID: "u1", Form: form})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields, "class")
	assert.Contains(t, valErr.Fields, "subjects[1].code")
	assert.Empty(t, fb.requests)
	assert.False(t, tracker.IsBusy(formID))
}

func TestSubmitDoesNotRecheckClassAgainstOptions(t *testing.T) {
	fb := &fakeBackend{roster: roster(1)}
	svc, _ := newSubmission(fb)

	form := validForm()
	form.Class = "Deleted Class"

	_, err := svc.Submit(context.Background(), SubmitInput{FormID: uuid.New(), UserID: "u1", Form: form})
	require.NoError(t, err)
	assert.Equal(t, "Deleted Class", fb.rosterClass)
}

func TestSubmitPublishesStatusEvents(t *testing.T) {
	fb := &fakeBackend{roster: roster(2)}
	svc, _ := newSubmission(fb)
	formID := uuid.New()

	events, cancel := svc.Subscribe(formID)
	defer cancel()

	_, err := svc.Submit(context.Background(), SubmitInput{FormID: formID, UserID: "u1", Form: validForm()})
	require.NoError(t, err)

	var got []model.StatusEvent
	for len(got) < 4 {
		got = append(got, <-events)
	}

	assert.Equal(t, model.StatusBusy, got[0].Event)
	assert.True(t, got[0].Busy)
	assert.Equal(t, model.StatusProgress, got[1].Event)
	assert.Equal(t, 1, got[1].Done)
	assert.Equal(t, 2, got[2].Done)
	assert.Equal(t, model.StatusIdle, got[3].Event)
	assert.False(t, got[3].Busy)
	assert.Equal(t, formID.String(), got[3].FormID)
}
