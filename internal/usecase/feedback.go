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
	ErrEmptyNote       = errors.New("modification note is empty")
	ErrSubmitInFlight  = errors.New("feedback submission already in progress")
	ErrAlreadyResolved = errors.New("suggestion is already resolved")
	ErrNotPending      = errors.New("suggestion is not pending")
	ErrNotReviewing    = errors.New("suggestion is not being edited")
)

// FeedbackController drives the clinician's review of one suggestion:
// pending -> reviewing (edit buffer) -> pending, and pending/reviewing ->
// submitting -> terminal. Submission is single-flight; on failure the
// pre-submit state is restored so the clinician can retry.
type FeedbackController struct {
	gateway ports.Gateway
	events  ports.EventSink

	mu         sync.Mutex
	suggestion domain.Suggestion
	review     domain.ReviewState
	note       string
}

func NewFeedbackController(gateway ports.Gateway, events ports.EventSink, suggestion domain.Suggestion) *FeedbackController {
	review := domain.ReviewStatePending
	if suggestion.Status.Resolved() {
		review = domain.ReviewStateTerminal
	}
	return &FeedbackController{
		gateway:    gateway,
		events:     events,
		suggestion: suggestion,
		review:     review,
	}
}

// Accept submits an accepted decision. Valid only while pending.
func (c *FeedbackController) Accept(ctx context.Context) error {
	return c.submit(ctx, domain.FeedbackAccepted, "", domain.ReviewStatePending)
}

// Reject submits a rejected decision. Valid from pending or reviewing; a
// reviewing reject carries the current edit buffer as the note.
func (c *FeedbackController) Reject(ctx context.Context) error {
	c.mu.Lock()
	note := ""
	if c.review == domain.ReviewStateReviewing {
		note = strings.TrimSpace(c.note)
	}
	c.mu.Unlock()
	return c.submit(ctx, domain.FeedbackRejected, note, domain.ReviewStatePending, domain.ReviewStateReviewing)
}

// SaveModification submits a modified decision with the edit buffer as the
// doctor note. An empty buffer is rejected before any network call.
func (c *FeedbackController) SaveModification(ctx context.Context) error {
	c.mu.Lock()
	note := strings.TrimSpace(c.note)
	c.mu.Unlock()
	if note == "" {
		c.events.SessionError(domain.ErrorCodeValidation, "modification note must not be empty")
		return ErrEmptyNote
	}
	return c.submit(ctx, domain.FeedbackModified, note, domain.ReviewStateReviewing)
}

// ToggleEdit switches between pending and reviewing. Leaving the edit
// sub-state discards the buffer. Never contacts the gateway.
func (c *FeedbackController) ToggleEdit() (domain.ReviewState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.review {
	case domain.ReviewStatePending:
		c.review = domain.ReviewStateReviewing
	case domain.ReviewStateReviewing:
		c.review = domain.ReviewStatePending
		c.note = ""
	case domain.ReviewStateSubmitting:
		return c.review, ErrSubmitInFlight
	default:
		return c.review, ErrAlreadyResolved
	}
	return c.review, nil
}

// SetNote updates the edit buffer. Only meaningful while reviewing.
func (c *FeedbackController) SetNote(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.review != domain.ReviewStateReviewing {
		return ErrNotReviewing
	}
	c.note = text
	return nil
}

// State returns the review state.
func (c *FeedbackController) State() domain.ReviewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.review
}

// Suggestion returns the controller's current view of the suggestion.
func (c *FeedbackController) Suggestion() domain.Suggestion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suggestion
}

// Note returns the current edit buffer.
func (c *FeedbackController) Note() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.note
}

func (c *FeedbackController) submit(ctx context.Context, status domain.FeedbackStatus, note string, validFrom ...domain.ReviewState) error {
	c.mu.Lock()
	switch c.review {
	case domain.ReviewStateSubmitting:
		c.mu.Unlock()
		return ErrSubmitInFlight
	case domain.ReviewStateTerminal:
		c.mu.Unlock()
		return ErrAlreadyResolved
	}

	allowed := false
	for _, state := range validFrom {
		if c.review == state {
			allowed = true
			break
		}
	}
	if !allowed {
		state := c.review
		c.mu.Unlock()
		if state == domain.ReviewStateReviewing {
			return ErrNotPending
		}
		return ErrNotReviewing
	}

	previous := c.review
	c.review = domain.ReviewStateSubmitting
	suggestionID := c.suggestion.ID
	c.mu.Unlock()

	err := c.gateway.SubmitFeedback(ctx, domain.Feedback{
		SuggestionID: suggestionID,
		Status:       status,
		DoctorNote:   note,
	})

	c.mu.Lock()
	if err != nil {
		// Roll back; no partial mutation is visible and the clinician can retry.
		c.review = previous
		c.mu.Unlock()
		c.events.SessionError(domain.ErrorCodeFeedback, err.Error())
		return err
	}

	c.suggestion.Status = status
	c.suggestion.DoctorNote = note
	c.review = domain.ReviewStateTerminal
	c.note = ""
	c.mu.Unlock()
	return nil
}
