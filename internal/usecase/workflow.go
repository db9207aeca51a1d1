package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"medassist/internal/domain"
	"medassist/internal/ports"
)

var (
	ErrNoActiveSession = errors.New("no active session")
	ErrNoTranscript    = errors.New("no transcript available")
	ErrEmptyTitle      = errors.New("session title must not be empty")
)

// WorkflowController owns the active session, the current transcript and the
// suggestion set, and sequences the consultation workflow against the gateway.
//
// Responses can complete out of issue order, so every state-applying
// operation takes a monotonically increasing sequence number when issued;
// a completion older than the last applied one is discarded. The last
// successfully applied result is authoritative.
type WorkflowController struct {
	gateway      ports.Gateway
	events       ports.EventSink
	defaultTitle string

	mu            sync.Mutex
	state         domain.WorkflowState
	session       *domain.Session
	transcript    string
	hasTranscript bool
	suggestions   []domain.Suggestion
	issued        uint64
	applied       uint64
}

func NewWorkflowController(gateway ports.Gateway, events ports.EventSink, defaultTitle string) *WorkflowController {
	if strings.TrimSpace(defaultTitle) == "" {
		defaultTitle = "New Consultation"
	}
	return &WorkflowController{
		gateway:      gateway,
		events:       events,
		defaultTitle: defaultTitle,
		state:        domain.WorkflowStateUninitialized,
	}
}

// NewSession creates a fresh consultation with the default title and makes
// it the active session. The returned id is the caller's resumption
// reference.
func (c *WorkflowController) NewSession(ctx context.Context) (domain.Session, error) {
	seq, prev := c.begin()

	session, err := c.gateway.CreateSession(ctx, c.defaultTitle)
	if err != nil {
		c.rollback(prev)
		c.events.SessionError(domain.ErrorCodeSession, err.Error())
		return domain.Session{}, err
	}

	c.mu.Lock()
	if seq < c.applied {
		c.mu.Unlock()
		return session, nil
	}
	c.applied = seq
	c.state = domain.WorkflowStateReady
	s := session
	c.session = &s
	c.transcript = ""
	c.hasTranscript = false
	c.suggestions = nil
	c.mu.Unlock()

	c.events.SessionChanged(session)
	c.events.SuggestionsUpdated(nil)
	return session, nil
}

// ResumeSession loads an existing session and seeds the transcript from the
// last element of its transcript history.
func (c *WorkflowController) ResumeSession(ctx context.Context, id int64) (domain.SessionDetail, error) {
	seq, prev := c.begin()

	detail, err := c.gateway.GetSession(ctx, id)
	if err != nil {
		c.rollback(prev)
		c.events.SessionError(domain.ErrorCodeSession, err.Error())
		return domain.SessionDetail{}, err
	}

	if c.applyDetail(seq, detail) {
		c.events.SessionChanged(detail.Session)
		if len(detail.Transcripts) > 0 {
			c.events.TranscriptReady(detail.Transcripts[len(detail.Transcripts)-1].Text)
		}
		c.events.SuggestionsUpdated(copySuggestions(detail.Suggestions))
	}
	return detail, nil
}

// TranscriptReady installs a new authoritative transcript. Prior suggestions
// were generated against the previous transcript, so the set is cleared
// unconditionally.
func (c *WorkflowController) TranscriptReady(text string) error {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return ErrNoActiveSession
	}
	c.issued++
	c.applied = c.issued
	c.transcript = text
	c.hasTranscript = true
	c.suggestions = nil
	c.mu.Unlock()

	c.events.TranscriptReady(text)
	c.events.SuggestionsUpdated(nil)
	return nil
}

// RequestSuggestions asks the service for a fresh suggestion batch against
// the latest transcript. On success the set is replaced wholesale; on
// failure prior state is left untouched.
func (c *WorkflowController) RequestSuggestions(ctx context.Context) ([]domain.Suggestion, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	if !c.hasTranscript {
		c.mu.Unlock()
		return nil, ErrNoTranscript
	}
	sessionID := c.session.ID
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	suggestions, err := c.gateway.RequestSuggestions(ctx, sessionID)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeSuggestions, err.Error())
		return nil, err
	}

	c.mu.Lock()
	if seq < c.applied {
		c.mu.Unlock()
		return suggestions, nil
	}
	c.applied = seq
	c.suggestions = copySuggestions(suggestions)
	c.mu.Unlock()

	c.events.SuggestionsUpdated(copySuggestions(suggestions))
	return suggestions, nil
}

// Reconcile re-fetches the full session after a feedback decision so the
// view reflects server-confirmed state rather than a local patch.
func (c *WorkflowController) Reconcile(ctx context.Context) error {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return ErrNoActiveSession
	}
	sessionID := c.session.ID
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	detail, err := c.gateway.GetSession(ctx, sessionID)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeSession, err.Error())
		return err
	}

	if c.applyDetail(seq, detail) {
		c.events.SuggestionsUpdated(copySuggestions(detail.Suggestions))
	}
	return nil
}

// RenameSession updates the active session's title, the one session field
// the client may mutate.
func (c *WorkflowController) RenameSession(ctx context.Context, title string) (domain.Session, error) {
	if strings.TrimSpace(title) == "" {
		c.events.SessionError(domain.ErrorCodeValidation, "session title must not be empty")
		return domain.Session{}, ErrEmptyTitle
	}

	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return domain.Session{}, ErrNoActiveSession
	}
	sessionID := c.session.ID
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	session, err := c.gateway.UpdateSessionTitle(ctx, sessionID, title)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeSession, err.Error())
		return domain.Session{}, err
	}

	c.mu.Lock()
	if seq >= c.applied && c.session != nil && c.session.ID == session.ID {
		c.applied = seq
		s := session
		c.session = &s
	}
	c.mu.Unlock()

	c.events.SessionChanged(session)
	return session, nil
}

// ExportSession fetches the consultation report PDF for the active session.
// Failure mutates nothing.
func (c *WorkflowController) ExportSession(ctx context.Context) ([]byte, error) {
	return c.export(ctx, c.gateway.ExportSession)
}

// ExportDischarge fetches the discharge summary PDF for the active session.
func (c *WorkflowController) ExportDischarge(ctx context.Context) ([]byte, error) {
	return c.export(ctx, c.gateway.ExportDischarge)
}

func (c *WorkflowController) export(ctx context.Context, fetch func(context.Context, int64) ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	sessionID := c.session.ID
	c.mu.Unlock()

	document, err := fetch(ctx, sessionID)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeExport, err.Error())
		return nil, err
	}
	return document, nil
}

// Snapshot returns a copy of the workflow's current read surface.
func (c *WorkflowController) Snapshot() domain.WorkflowSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := domain.WorkflowSnapshot{
		State:         c.state,
		Transcript:    c.transcript,
		HasTranscript: c.hasTranscript,
		Suggestions:   copySuggestions(c.suggestions),
	}
	if c.session != nil {
		s := *c.session
		snapshot.Session = &s
	}
	return snapshot
}

func (c *WorkflowController) begin() (seq uint64, prev domain.WorkflowState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev = c.state
	c.state = domain.WorkflowStateLoading
	c.issued++
	return c.issued, prev
}

func (c *WorkflowController) rollback(prev domain.WorkflowState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == domain.WorkflowStateLoading {
		c.state = prev
	}
}

func (c *WorkflowController) applyDetail(seq uint64, detail domain.SessionDetail) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.applied {
		return false
	}
	c.applied = seq
	c.state = domain.WorkflowStateReady
	s := detail.Session
	c.session = &s
	if len(detail.Transcripts) > 0 {
		c.transcript = detail.Transcripts[len(detail.Transcripts)-1].Text
		c.hasTranscript = true
	} else {
		c.transcript = ""
		c.hasTranscript = false
	}
	c.suggestions = copySuggestions(detail.Suggestions)
	return true
}

func copySuggestions(in []domain.Suggestion) []domain.Suggestion {
	if in == nil {
		return nil
	}
	out := make([]domain.Suggestion, len(in))
	copy(out, in)
	return out
}
