package ports

import (
	"context"
	"errors"
	"io"

	"medassist/internal/domain"
)

// ErrRequestFailed is returned for every gateway failure, transport or server.
// The client does not distinguish error subtypes; retries are user-initiated.
var ErrRequestFailed = errors.New("request failed")

// Gateway is the typed boundary to the remote MedAssist service. It performs
// no retries and no caching; failures are surfaced verbatim as ErrRequestFailed.
type Gateway interface {
	CreateSession(ctx context.Context, title string) (domain.Session, error)
	ListSessions(ctx context.Context) ([]domain.Session, error)
	GetSession(ctx context.Context, id int64) (domain.SessionDetail, error)
	UpdateSessionTitle(ctx context.Context, id int64, title string) (domain.Session, error)
	DeleteSession(ctx context.Context, id int64) error
	Transcribe(ctx context.Context, artifact domain.AudioArtifact, sessionID int64) (domain.Transcript, error)
	RequestSuggestions(ctx context.Context, sessionID int64) ([]domain.Suggestion, error)
	SubmitFeedback(ctx context.Context, feedback domain.Feedback) error
	ExportSession(ctx context.Context, id int64) ([]byte, error)
	ExportDischarge(ctx context.Context, id int64) ([]byte, error)
}

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session. Stop must release the capture
// device and is safe to call more than once.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture acquires the microphone for one recording.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// EventSink emits controller state and errors to the UI.
type EventSink interface {
	CaptureStateChanged(state domain.CaptureState, reason domain.StateReason)
	TranscriptReady(text string)
	SessionChanged(session domain.Session)
	SuggestionsUpdated(suggestions []domain.Suggestion)
	SessionError(code domain.ErrorCode, detail string)
}
