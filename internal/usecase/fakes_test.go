package usecase

import (
	"context"
	"errors"
	"io"
	"sync"

	"medassist/internal/domain"
	"medassist/internal/ports"
)

type fakeGateway struct {
	mu sync.Mutex

	createSessionFn func(title string) (domain.Session, error)
	listSessionsFn  func() ([]domain.Session, error)
	getSessionFn    func(id int64) (domain.SessionDetail, error)
	updateTitleFn   func(id int64, title string) (domain.Session, error)
	deleteSessionFn func(id int64) error
	transcribeFn    func(artifact domain.AudioArtifact, sessionID int64) (domain.Transcript, error)
	suggestionsFn   func(sessionID int64) ([]domain.Suggestion, error)
	feedbackFn      func(fb domain.Feedback) error
	exportFn        func(id int64) ([]byte, error)
	dischargeFn     func(id int64) ([]byte, error)

	createCalls      int
	getCalls         int
	deleteCalls      int
	transcribeCalls  int
	suggestionCalls  int
	feedbackCalls    int
	lastCreatedTitle string
	lastFeedback     domain.Feedback
	lastArtifact     domain.AudioArtifact
	lastSessionID    int64
}

func (f *fakeGateway) CreateSession(_ context.Context, title string) (domain.Session, error) {
	f.mu.Lock()
	f.createCalls++
	f.lastCreatedTitle = title
	fn := f.createSessionFn
	f.mu.Unlock()
	if fn != nil {
		return fn(title)
	}
	return domain.Session{ID: 1, Title: title}, nil
}

func (f *fakeGateway) ListSessions(_ context.Context) ([]domain.Session, error) {
	f.mu.Lock()
	fn := f.listSessionsFn
	f.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return nil, nil
}

func (f *fakeGateway) GetSession(_ context.Context, id int64) (domain.SessionDetail, error) {
	f.mu.Lock()
	f.getCalls++
	fn := f.getSessionFn
	f.mu.Unlock()
	if fn != nil {
		return fn(id)
	}
	return domain.SessionDetail{Session: domain.Session{ID: id}}, nil
}

func (f *fakeGateway) UpdateSessionTitle(_ context.Context, id int64, title string) (domain.Session, error) {
	f.mu.Lock()
	fn := f.updateTitleFn
	f.mu.Unlock()
	if fn != nil {
		return fn(id, title)
	}
	return domain.Session{ID: id, Title: title}, nil
}

func (f *fakeGateway) DeleteSession(_ context.Context, id int64) error {
	f.mu.Lock()
	f.deleteCalls++
	fn := f.deleteSessionFn
	f.mu.Unlock()
	if fn != nil {
		return fn(id)
	}
	return nil
}

func (f *fakeGateway) Transcribe(_ context.Context, artifact domain.AudioArtifact, sessionID int64) (domain.Transcript, error) {
	f.mu.Lock()
	f.transcribeCalls++
	f.lastArtifact = artifact
	f.lastSessionID = sessionID
	fn := f.transcribeFn
	f.mu.Unlock()
	if fn != nil {
		return fn(artifact, sessionID)
	}
	return domain.Transcript{ID: 1, SessionID: sessionID, Text: "transcript"}, nil
}

func (f *fakeGateway) RequestSuggestions(_ context.Context, sessionID int64) ([]domain.Suggestion, error) {
	f.mu.Lock()
	f.suggestionCalls++
	f.lastSessionID = sessionID
	fn := f.suggestionsFn
	f.mu.Unlock()
	if fn != nil {
		return fn(sessionID)
	}
	return nil, nil
}

func (f *fakeGateway) SubmitFeedback(_ context.Context, fb domain.Feedback) error {
	f.mu.Lock()
	f.feedbackCalls++
	f.lastFeedback = fb
	fn := f.feedbackFn
	f.mu.Unlock()
	if fn != nil {
		return fn(fb)
	}
	return nil
}

func (f *fakeGateway) ExportSession(_ context.Context, id int64) ([]byte, error) {
	f.mu.Lock()
	fn := f.exportFn
	f.mu.Unlock()
	if fn != nil {
		return fn(id)
	}
	return []byte("%PDF"), nil
}

func (f *fakeGateway) ExportDischarge(_ context.Context, id int64) ([]byte, error) {
	f.mu.Lock()
	fn := f.dischargeFn
	f.mu.Unlock()
	if fn != nil {
		return fn(id)
	}
	return []byte("%PDF"), nil
}

func (f *fakeGateway) snapshotFeedback() (int, domain.Feedback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.feedbackCalls, f.lastFeedback
}

type stateEvent struct {
	state  domain.CaptureState
	reason domain.StateReason
}

type errEvent struct {
	code   domain.ErrorCode
	detail string
}

type fakeEventSink struct {
	mu sync.Mutex

	states      []stateEvent
	transcripts []string
	sessions    []domain.Session
	suggestions [][]domain.Suggestion
	errors      []errEvent
}

func (f *fakeEventSink) CaptureStateChanged(state domain.CaptureState, reason domain.StateReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, stateEvent{state: state, reason: reason})
}

func (f *fakeEventSink) TranscriptReady(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcripts = append(f.transcripts, text)
}

func (f *fakeEventSink) SessionChanged(session domain.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, session)
}

func (f *fakeEventSink) SuggestionsUpdated(suggestions []domain.Suggestion) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestions = append(f.suggestions, suggestions)
}

func (f *fakeEventSink) SessionError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errEvent{code: code, detail: detail})
}

func (f *fakeEventSink) snapshotStates() []stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]stateEvent, len(f.states))
	copy(out, f.states)
	return out
}

func (f *fakeEventSink) snapshotErrors() []errEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]errEvent, len(f.errors))
	copy(out, f.errors)
	return out
}

func (f *fakeEventSink) snapshotSuggestionUpdates() [][]domain.Suggestion {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]domain.Suggestion, len(f.suggestions))
	copy(out, f.suggestions)
	return out
}

type fakeAudioCapture struct {
	mu       sync.Mutex
	sessions []ports.AudioSession
	err      error
	calls    int
}

func (f *fakeAudioCapture) Start(_ context.Context, _ ports.AudioConfig) (ports.AudioSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls > len(f.sessions) {
		return nil, errors.New("no audio session configured")
	}
	return f.sessions[f.calls-1], nil
}

type fakeAudioSession struct {
	mu        sync.Mutex
	chunks    [][]byte
	index     int
	stopCalls int
	stopErr   error
}

func (f *fakeAudioSession) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index >= len(f.chunks) {
		return 0, io.EOF
	}
	n := copy(p, f.chunks[f.index])
	f.index++
	return n, nil
}

func (f *fakeAudioSession) Close() error { return nil }

func (f *fakeAudioSession) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	return f.stopErr
}

func (f *fakeAudioSession) stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls
}
