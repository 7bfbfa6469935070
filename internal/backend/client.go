// Package backend is the HTTP client for the marksheet backend that owns
// students and marksheets.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/marksheet-builder/internal/model"
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

// APIError is a non-2xx answer from the backend. Message is the "message"
// field of the error payload, empty when the backend sent none.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *APIError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Client talks to the backend. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a Client for baseURL. A zero timeout means requests are
// bounded only by their context.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "backend_client").Logger(),
	}
}

// StudentsByUser lists every student owned by userID.
// GET /students/stu/{userId}
func (c *Client) StudentsByUser(ctx context.Context, userID string) ([]model.Student, error) {
	var students []model.Student
	path := "/students/stu/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// StudentsByTemplate lists the roster of one class (template name) of userID.
// GET /students/stu_by_template/{className}/{userId}
func (c *Client) StudentsByTemplate(ctx context.Context, className, userID string) ([]model.Student, error) {
	var students []model.Student
	path := "/students/stu_by_template/" + url.PathEscape(className) + "/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// CreateMarksheet creates one marksheet and returns the record the backend
// echoed back.
// POST /marksheets
func (c *Client) CreateMarksheet(ctx context.Context, req model.MarksheetCreateRequest) (json.RawMessage, error) {
	var created json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/marksheets", req, &created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.Message
}
