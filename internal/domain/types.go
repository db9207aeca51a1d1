package domain

import "time"

// SuggestionType classifies an AI-generated clinical suggestion.
type SuggestionType string

const (
	SuggestionTypeDiagnosis SuggestionType = "diagnosis"
	SuggestionTypeTest      SuggestionType = "test"
	SuggestionTypeDrug      SuggestionType = "drug"
	SuggestionTypeRedFlag   SuggestionType = "red_flag"
)

// Confidence is the model's self-reported confidence for a suggestion.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// FeedbackStatus is the clinician's decision on one suggestion.
type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "pending"
	FeedbackAccepted FeedbackStatus = "accepted"
	FeedbackModified FeedbackStatus = "modified"
	FeedbackRejected FeedbackStatus = "rejected"
)

// Resolved reports whether the status is a terminal clinician decision.
func (s FeedbackStatus) Resolved() bool {
	switch s {
	case FeedbackAccepted, FeedbackModified, FeedbackRejected:
		return true
	default:
		return false
	}
}

// CaptureState models the microphone capture lifecycle.
type CaptureState string

const (
	CaptureStateIdle       CaptureState = "idle"
	CaptureStateRecording  CaptureState = "recording"
	CaptureStateFinalizing CaptureState = "finalizing"
	CaptureStateError      CaptureState = "error"
)

// ReviewState models the per-suggestion feedback lifecycle on the client.
type ReviewState string

const (
	ReviewStatePending    ReviewState = "pending"
	ReviewStateReviewing  ReviewState = "reviewing"
	ReviewStateSubmitting ReviewState = "submitting"
	ReviewStateTerminal   ReviewState = "terminal"
)

// WorkflowState models the active-session lifecycle.
type WorkflowState string

const (
	WorkflowStateUninitialized WorkflowState = "uninitialized"
	WorkflowStateLoading       WorkflowState = "loading"
	WorkflowStateReady         WorkflowState = "ready"
)

// StateReason provides a structured reason for state transitions.
type StateReason string

const (
	ReasonRecordingStarted    StateReason = "recording_started"
	ReasonTranscribing        StateReason = "transcribing"
	ReasonTranscriptReady     StateReason = "transcript_ready"
	ReasonRecordingDiscarded  StateReason = "recording_discarded"
	ReasonTranscriptionFailed StateReason = "transcription_failed"
	ReasonDeviceUnavailable   StateReason = "device_unavailable"
	ReasonSessionCreated      StateReason = "session_created"
	ReasonSessionLoaded       StateReason = "session_loaded"
	ReasonSessionLoadFailed   StateReason = "session_load_failed"
	ReasonSuggestionsReady    StateReason = "suggestions_ready"
	ReasonSuggestionsFailed   StateReason = "suggestions_failed"
	ReasonFeedbackRecorded    StateReason = "feedback_recorded"
)

// ErrorCode identifies non-fatal client errors surfaced to the UI.
type ErrorCode string

const (
	ErrorCodeStartup       ErrorCode = "startup"
	ErrorCodeDevice        ErrorCode = "device"
	ErrorCodeTranscription ErrorCode = "transcription"
	ErrorCodeSession       ErrorCode = "session"
	ErrorCodeSuggestions   ErrorCode = "suggestions"
	ErrorCodeFeedback      ErrorCode = "feedback"
	ErrorCodeExport        ErrorCode = "export"
	ErrorCodeValidation    ErrorCode = "validation"
	ErrorCodeClipboard     ErrorCode = "clipboard"
)

// Session is one clinician-patient consultation record.
type Session struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Transcript is the text produced from one captured recording.
type Transcript struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Suggestion is one AI-generated recommendation awaiting clinician review.
type Suggestion struct {
	ID         int64          `json:"id"`
	SessionID  int64          `json:"session_id"`
	Type       SuggestionType `json:"type"`
	Confidence Confidence     `json:"confidence"`
	Content    string         `json:"content"`
	SourceDocs string         `json:"source_docs,omitempty"`
	Status     FeedbackStatus `json:"status"`
	DoctorNote string         `json:"doctor_note,omitempty"`
}

// Feedback is the clinician's decision on one suggestion, submitted once.
type Feedback struct {
	SuggestionID int64          `json:"suggestion_id"`
	Status       FeedbackStatus `json:"status"`
	DoctorNote   string         `json:"doctor_note,omitempty"`
}

// SessionDetail is the full server-side view of one session.
type SessionDetail struct {
	Session     Session      `json:"session"`
	Transcripts []Transcript `json:"transcripts"`
	Suggestions []Suggestion `json:"suggestions"`
}

// AudioArtifact is a finalized recording handed off to transcription. It only
// exists between stopping a recording and the transcription request completing.
type AudioArtifact struct {
	Data     []byte
	MIMEType string
	Filename string
}

// WorkflowSnapshot is the read surface the workflow controller exposes to the UI.
type WorkflowSnapshot struct {
	State         WorkflowState `json:"state"`
	Session       *Session      `json:"session,omitempty"`
	Transcript    string        `json:"transcript"`
	HasTranscript bool          `json:"hasTranscript"`
	Suggestions   []Suggestion  `json:"suggestions"`
}

// CaptureStatus summarizes the capture controller for the UI.
type CaptureStatus struct {
	State   CaptureState `json:"state"`
	Active  bool         `json:"active"`
	Message string       `json:"message,omitempty"`
}
