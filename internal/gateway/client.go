// Package gateway implements the typed HTTP boundary to the remote
// MedAssist service.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"medassist/internal/domain"
	"medassist/internal/logging"
	"medassist/internal/ports"
)

// Client talks to the MedAssist service over REST. It performs no retries
// and no caching; every failure collapses to ports.ErrRequestFailed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logging.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(log *logging.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a gateway client for the given API base URL,
// e.g. "http://localhost:8000/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		log:        logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createSessionBody struct {
	Title string `json:"title"`
}

type updateSessionBody struct {
	Title string `json:"title"`
}

type suggestionsBody struct {
	SessionID int64 `json:"session_id"`
}

type transcribeResponse struct {
	Text         string `json:"text"`
	TranscriptID int64  `json:"transcript_id"`
}

// CreateSession creates a new consultation session.
func (c *Client) CreateSession(ctx context.Context, title string) (domain.Session, error) {
	var session domain.Session
	err := c.doJSON(ctx, http.MethodPost, "/sessions", createSessionBody{Title: title}, &session)
	return session, err
}

// ListSessions returns all sessions, newest first (server-ordered).
func (c *Client) ListSessions(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session
	err := c.doJSON(ctx, http.MethodGet, "/sessions", nil, &sessions)
	return sessions, err
}

// GetSession returns one session with its transcripts and suggestions.
func (c *Client) GetSession(ctx context.Context, id int64) (domain.SessionDetail, error) {
	var detail domain.SessionDetail
	err := c.doJSON(ctx, http.MethodGet, "/sessions/"+strconv.FormatInt(id, 10), nil, &detail)
	return detail, err
}

// UpdateSessionTitle renames a session.
func (c *Client) UpdateSessionTitle(ctx context.Context, id int64, title string) (domain.Session, error) {
	var session domain.Session
	err := c.doJSON(ctx, http.MethodPut, "/sessions/"+strconv.FormatInt(id, 10), updateSessionBody{Title: title}, &session)
	return session, err
}

// DeleteSession deletes a session; the server cascades to its transcripts
// and suggestions.
func (c *Client) DeleteSession(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/sessions/"+strconv.FormatInt(id, 10), nil, nil)
}

// Transcribe uploads a finalized recording and returns the stored transcript.
func (c *Client) Transcribe(ctx context.Context, artifact domain.AudioArtifact, sessionID int64) (domain.Transcript, error) {
	filename := artifact.Filename
	if filename == "" {
		filename = "recording.wav"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("%w: %v", ports.ErrRequestFailed, err)
	}
	if _, err := part.Write(artifact.Data); err != nil {
		return domain.Transcript{}, fmt.Errorf("%w: %v", ports.ErrRequestFailed, err)
	}
	if err := writer.WriteField("session_id", strconv.FormatInt(sessionID, 10)); err != nil {
		return domain.Transcript{}, fmt.Errorf("%w: %v", ports.ErrRequestFailed, err)
	}
	if err := writer.Close(); err != nil {
		return domain.Transcript{}, fmt.Errorf("%w: %v", ports.ErrRequestFailed, err)
	}

	payload, err := c.do(ctx, http.MethodPost, "/transcribe", &body, writer.FormDataContentType())
	if err != nil {
		return domain.Transcript{}, err
	}

	var resp transcribeResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return domain.Transcript{}, fmt.Errorf("%w: decode transcribe response: %v", ports.ErrRequestFailed, err)
	}

	return domain.Transcript{ID: resp.TranscriptID, SessionID: sessionID, Text: resp.Text}, nil
}

// RequestSuggestions runs the suggestion pipeline against the session's
// latest transcript and returns the stored batch.
func (c *Client) RequestSuggestions(ctx context.Context, sessionID int64) ([]domain.Suggestion, error) {
	var resp struct {
		Suggestions []domain.Suggestion `json:"suggestions"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/suggestions", suggestionsBody{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// SubmitFeedback records the clinician's decision on one suggestion.
func (c *Client) SubmitFeedback(ctx context.Context, feedback domain.Feedback) error {
	return c.doJSON(ctx, http.MethodPost, "/feedback", feedback, nil)
}

// ExportSession fetches the consultation report PDF.
func (c *Client) ExportSession(ctx context.Context, id int64) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/sessions/"+strconv.FormatInt(id, 10)+"/export", nil, "")
}

// ExportDischarge fetches the discharge summary PDF.
func (c *Client) ExportDischarge(ctx context.Context, id int64) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/sessions/"+strconv.FormatInt(id, 10)+"/discharge", nil, "")
}

func (c *Client) doJSON(ctx context.Context, method string, path string, in any, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ports.ErrRequestFailed, err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	payload, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ports.ErrRequestFailed, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrRequestFailed, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("gateway request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %v", ports.ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ports.ErrRequestFailed, err)
	}

	c.log.Debug("gateway request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s returned %d", ports.ErrRequestFailed, method, path, resp.StatusCode)
	}
	return payload, nil
}
