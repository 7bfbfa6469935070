package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/marksheet-builder/internal/form"
	"github.com/stemsi/marksheet-builder/internal/model"
	"github.com/stemsi/marksheet-builder/internal/response"
	"github.com/stemsi/marksheet-builder/internal/service"
	"github.com/stemsi/marksheet-builder/internal/validator"
)

// FormHandler edits template drafts and submits them.
type FormHandler struct {
	store       *form.Store
	submissions *service.SubmissionService
	log         zerolog.Logger
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(store *form.Store, submissions *service.SubmissionService, log zerolog.Logger) *FormHandler {
	return &FormHandler{
		store:       store,
		submissions: submissions,
		log:         log.With().Str("component", "form_handler").Logger(),
	}
}

// FormView is a draft as returned by the API.
type FormView struct {
	FormID string             `json:"form_id"`
	Form   model.TemplateForm `json:"form"`
	Busy   bool               `json:"busy"`
}

// FieldUpdateRequest sets one field. Value may be sent as a JSON string or
// number.
type FieldUpdateRequest struct {
	Name  string           `json:"name" binding:"required"`
	Value model.FlexString `json:"value"`
}

// SubmitRequest starts a bulk submission of a draft.
type SubmitRequest struct {
	UserID          string `json:"user_id" binding:"required"`
	ContinueOnError bool   `json:"continue_on_error"`
}

// CreateForm godoc
// POST /api/v1/forms
// Opens a new draft filled with the default values.
func (h *FormHandler) CreateForm(c *gin.Context) {
	id, snap := h.store.Create()
	response.Success(c, http.StatusCreated, FormView{FormID: id.String(), Form: snap})
}

// GetForm godoc
// GET /api/v1/forms/:id
func (h *FormHandler) GetForm(c *gin.Context) {
	id, ok := formID(c)
	if !ok {
		return
	}
	snap, err := h.store.Get(id)
	if err != nil {
		h.failForm(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.view(id, snap))
}

// DeleteForm godoc
// DELETE /api/v1/forms/:id
// Discards a draft. A draft that is being submitted cannot be discarded.
func (h *FormHandler) DeleteForm(c *gin.Context) {
	id, ok := formID(c)
	if !ok {
		return
	}
	if h.submissions.IsBusy(id) {
		response.Fail(c, http.StatusConflict, response.ErrSubmissionInProgress)
		return
	}
	if err := h.store.Delete(id); err != nil {
		h.failForm(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "form discarded"})
}

// SetField godoc
// PATCH /api/v1/forms/:id/fields
// Merges {name, value} into the draft.
func (h *FormHandler) SetField(c *gin.Context) {
	id, ok := formID(c)
	if !ok {
		return
	}
	var req FieldUpdateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.update(c, id, func(f *form.Form) error {
		return f.SetField(req.Name, req.Value.String())
	})
}

// AddSubject godoc
// POST /api/v1/forms/:id/subjects
// Appends an empty subject row.
func (h *FormHandler) AddSubject(c *gin.Context) {
	id, ok := formID(c)
	if !ok {
		return
	}
	h.update(c, id, func(f *form.Form) error {
		f.AddSubject()
		return nil
	})
}

// SetSubjectField godoc
// PATCH /api/v1/forms/:id/subjects/:index
// Sets "name" or "code" of one subject row.
func (h *FormHandler) SetSubjectField(c *gin.Context) {
	id, ok := formID(c)
	if !ok {
		return
	}
	index, ok := subjectIndex(c)
	if !ok {
		return
	}
	var req FieldUpdateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.update(c, id, func(f *form.Form) error {
		return f.SetSubjectField(index, req.Name, req.Value.String())
	})
}

// RemoveSubject godoc
// DELETE /api/v1/forms/:id/subjects/:index
// Removes one subject row without confirmation.
func (h *FormHandler) RemoveSubject(c *gin.Context) {
	id, ok := formID(c)
	if !ok {
		return
	}
	index, ok := subjectIndex(c)
	if !ok {
		return
	}
	h.update(c, id, func(f *form.Form) error {
		return f.RemoveSubject(index)
	})
}

// Submit godoc
// POST /api/v1/forms/:id/submit
// Creates one marksheet per student of the selected class. The request
// blocks until every student has been processed or the first failure.
func (h *FormHandler) Submit(c *gin.Context) {
	id, ok := formID(c)
	if !ok {
		return
	}
	var req SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.store.Get(id)
	if err != nil {
		h.failForm(c, err)
		return
	}

	// A client disconnect must not stop a run halfway through the roster.
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.submissions.Submit(ctx, service.SubmitInput{
		FormID:          id,
		UserID:          req.UserID,
		Form:            snap,
		ContinueOnError: req.ContinueOnError,
	})
	if err != nil {
		var valErr *service.ValidationError
		var subErr *service.SubmitError
		switch {
		case errors.As(err, &valErr):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, valErr.Fields)
		case errors.Is(err, service.ErrSubmissionInProgress):
			response.Fail(c, http.StatusConflict, response.ErrSubmissionInProgress)
		case errors.As(err, &subErr):
			response.FailWithData(c, http.StatusBadGateway, response.ErrSubmissionFailed, subErr.Message, result)
		default:
			h.log.Error().Err(err).Str("form_id", id.String()).Msg("submit failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, result)
}

func (h *FormHandler) update(c *gin.Context, id uuid.UUID, fn func(f *form.Form) error) {
	snap, err := h.store.Update(id, fn)
	if err != nil {
		h.failForm(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.view(id, snap))
}

func (h *FormHandler) view(id uuid.UUID, snap model.TemplateForm) FormView {
	return FormView{FormID: id.String(), Form: snap, Busy: h.submissions.IsBusy(id)}
}

func (h *FormHandler) failForm(c *gin.Context, err error) {
	switch {
	case errors.Is(err, form.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, form.ErrUnknownField):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrUnknownField, err.Error(), nil)
	case errors.Is(err, form.ErrInvalidNumber):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidNumber, err.Error(), nil)
	case errors.Is(err, form.ErrSubjectIndex):
		response.Fail(c, http.StatusBadRequest, response.ErrSubjectIndex)
	default:
		h.log.Error().Err(err).Msg("form operation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func formID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func subjectIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrSubjectIndex)
		return 0, false
	}
	return index, true
}
