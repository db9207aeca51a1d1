package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"medassist/internal/bootstrap"
	"medassist/internal/config"
	"medassist/internal/domain"
	"medassist/internal/usecase"
)

const (
	eventCapture     = "medassist:capture"
	eventSession     = "medassist:session"
	eventTranscript  = "medassist:transcript"
	eventSuggestions = "medassist:suggestions"
	eventError       = "medassist:error"
)

// App is the Wails application root. It binds the controllers to the
// frontend and forwards their events.
type App struct {
	ctx context.Context

	capture  *usecase.CaptureController
	workflow *usecase.WorkflowController
	history  *usecase.HistoryController
	cfg      config.Config
	bootErr  error

	feedbackMu sync.Mutex
	feedback   map[int64]*usecase.FeedbackController

	services bootstrap.Services
}

func NewApp() *App {
	return &App{feedback: map[int64]*usecase.FeedbackController{}}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.services = services
	a.cfg = services.Config
	a.capture = services.Capture
	a.workflow = services.Workflow
	a.history = services.History
	a.CaptureStateChanged(domain.CaptureStateIdle, "")
}

// NewSession creates a fresh consultation and makes it active.
func (a *App) NewSession() (domain.Session, error) {
	if err := a.requireReady(); err != nil {
		return domain.Session{}, err
	}
	a.dropFeedbackControllers()
	return a.workflow.NewSession(a.ctx)
}

// ResumeSession loads an existing consultation by id.
func (a *App) ResumeSession(id int64) (domain.WorkflowSnapshot, error) {
	if err := a.requireReady(); err != nil {
		return domain.WorkflowSnapshot{}, err
	}
	a.dropFeedbackControllers()
	if _, err := a.workflow.ResumeSession(a.ctx, id); err != nil {
		return domain.WorkflowSnapshot{}, err
	}
	return a.workflow.Snapshot(), nil
}

// RenameSession updates the active session's title.
func (a *App) RenameSession(title string) (domain.Session, error) {
	if err := a.requireReady(); err != nil {
		return domain.Session{}, err
	}
	return a.workflow.RenameSession(a.ctx, title)
}

// GetWorkflow returns the current workflow read surface.
func (a *App) GetWorkflow() domain.WorkflowSnapshot {
	if a.workflow == nil {
		return domain.WorkflowSnapshot{State: domain.WorkflowStateUninitialized}
	}
	return a.workflow.Snapshot()
}

// StartRecording acquires the microphone and begins a recording.
func (a *App) StartRecording() (domain.CaptureStatus, error) {
	if err := a.requireReady(); err != nil {
		return domain.CaptureStatus{}, err
	}
	if a.workflow.Snapshot().Session == nil {
		return domain.CaptureStatus{}, usecase.ErrNoActiveSession
	}
	if err := a.capture.Start(a.ctx); err != nil {
		return domain.CaptureStatus{}, err
	}
	return a.capture.Status(), nil
}

// StopRecording finalizes the recording, transcribes it, and installs the
// transcript as the workflow's authoritative text.
func (a *App) StopRecording() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	snapshot := a.workflow.Snapshot()
	if snapshot.Session == nil {
		return "", usecase.ErrNoActiveSession
	}

	transcript, err := a.capture.Stop(a.ctx, snapshot.Session.ID)
	if err != nil {
		return "", err
	}
	if err := a.workflow.TranscriptReady(transcript.Text); err != nil {
		return "", err
	}
	a.dropFeedbackControllers()
	return transcript.Text, nil
}

// AbortRecording discards an in-progress recording.
func (a *App) AbortRecording() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.capture.Abort(); err != nil {
		if errors.Is(err, usecase.ErrNotRecording) {
			return nil
		}
		return err
	}
	return nil
}

// GetCaptureState returns the current capture status.
func (a *App) GetCaptureState() domain.CaptureStatus {
	if a.capture == nil {
		if a.bootErr != nil {
			return domain.CaptureStatus{State: domain.CaptureStateError, Message: a.bootErr.Error()}
		}
		return domain.CaptureStatus{State: domain.CaptureStateIdle}
	}
	return a.capture.Status()
}

// RequestSuggestions generates a fresh suggestion batch from the latest
// transcript.
func (a *App) RequestSuggestions() ([]domain.Suggestion, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	suggestions, err := a.workflow.RequestSuggestions(a.ctx)
	if err != nil {
		return nil, err
	}
	a.dropFeedbackControllers()
	return suggestions, nil
}

// AcceptSuggestion records an accepted decision for one suggestion.
func (a *App) AcceptSuggestion(id int64) error {
	return a.resolveSuggestion(id, func(fc *usecase.FeedbackController) error {
		return fc.Accept(a.ctx)
	})
}

// RejectSuggestion records a rejected decision for one suggestion.
func (a *App) RejectSuggestion(id int64) error {
	return a.resolveSuggestion(id, func(fc *usecase.FeedbackController) error {
		return fc.Reject(a.ctx)
	})
}

// ModifySuggestion records a modified decision carrying the doctor's note.
func (a *App) ModifySuggestion(id int64, note string) error {
	return a.resolveSuggestion(id, func(fc *usecase.FeedbackController) error {
		if fc.State() == domain.ReviewStatePending {
			if _, err := fc.ToggleEdit(); err != nil {
				return err
			}
		}
		if err := fc.SetNote(note); err != nil {
			return err
		}
		return fc.SaveModification(a.ctx)
	})
}

// ListSessions returns all sessions, newest first.
func (a *App) ListSessions() ([]domain.Session, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	sessions, err := a.history.Load(a.ctx)
	if err != nil {
		a.SessionError(domain.ErrorCodeSession, err.Error())
		return nil, err
	}
	return sessions, nil
}

// DeleteSession removes a session after server acknowledgement. It does not
// touch an unrelated active workflow.
func (a *App) DeleteSession(id int64) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.history.Delete(a.ctx, id); err != nil {
		a.SessionError(domain.ErrorCodeSession, err.Error())
		return err
	}
	return nil
}

// ExportSession saves the consultation report PDF to a user-chosen path.
// Returns the path, or empty if the dialog was cancelled.
func (a *App) ExportSession() (string, error) {
	return a.exportDocument(a.workflow.ExportSession, "session")
}

// ExportDischarge saves the discharge summary PDF to a user-chosen path.
func (a *App) ExportDischarge() (string, error) {
	return a.exportDocument(a.workflow.ExportDischarge, "discharge")
}

// CopyTranscript places the current transcript on the system clipboard.
func (a *App) CopyTranscript() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	snapshot := a.workflow.Snapshot()
	if !snapshot.HasTranscript {
		return usecase.ErrNoTranscript
	}
	if err := runtime.ClipboardSetText(a.ctx, snapshot.Transcript); err != nil {
		a.SessionError(domain.ErrorCodeClipboard, "transcript could not be copied to the clipboard")
		return err
	}
	return nil
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}
	return map[string]string{
		"apiBase":      a.cfg.API.BaseURL,
		"audioInput":   a.cfg.Audio.InputDevice,
		"audioFormat":  a.cfg.Audio.InputFormat,
		"defaultTitle": a.cfg.Session.DefaultTitle,
	}
}

func (a *App) exportDocument(fetch func(context.Context) ([]byte, error), kind string) (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	snapshot := a.workflow.Snapshot()
	if snapshot.Session == nil {
		return "", usecase.ErrNoActiveSession
	}

	document, err := fetch(a.ctx)
	if err != nil {
		return "", err
	}

	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		DefaultFilename: fmt.Sprintf("%s_%d.pdf", kind, snapshot.Session.ID),
	})
	if err != nil {
		a.SessionError(domain.ErrorCodeExport, err.Error())
		return "", err
	}
	if path == "" {
		return "", nil
	}
	if err := os.WriteFile(path, document, 0o600); err != nil {
		a.SessionError(domain.ErrorCodeExport, err.Error())
		return "", err
	}
	return path, nil
}

func (a *App) resolveSuggestion(id int64, decide func(*usecase.FeedbackController) error) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	fc, err := a.feedbackFor(id)
	if err != nil {
		return err
	}
	if err := decide(fc); err != nil {
		return err
	}

	// Server-confirmed state replaces the local decision wholesale.
	if err := a.workflow.Reconcile(a.ctx); err != nil {
		return err
	}
	a.dropFeedbackControllers()
	return nil
}

func (a *App) feedbackFor(id int64) (*usecase.FeedbackController, error) {
	a.feedbackMu.Lock()
	defer a.feedbackMu.Unlock()

	if fc, ok := a.feedback[id]; ok {
		return fc, nil
	}
	for _, s := range a.workflow.Snapshot().Suggestions {
		if s.ID == id {
			fc := usecase.NewFeedbackController(a.services.Gateway, a, s)
			a.feedback[id] = fc
			return fc, nil
		}
	}
	return nil, fmt.Errorf("unknown suggestion %d", id)
}

func (a *App) dropFeedbackControllers() {
	a.feedbackMu.Lock()
	a.feedback = map[int64]*usecase.FeedbackController{}
	a.feedbackMu.Unlock()
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.workflow == nil || a.capture == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// CaptureStateChanged emits capture lifecycle updates to the frontend.
func (a *App) CaptureStateChanged(state domain.CaptureState, reason domain.StateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventCapture, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": stateReasonMessage(reason),
	})
}

// TranscriptReady emits the authoritative transcript text.
func (a *App) TranscriptReady(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTranscript, map[string]string{"text": text})
}

// SessionChanged emits the active session after create/resume/rename.
func (a *App) SessionChanged(session domain.Session) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSession, session)
}

// SuggestionsUpdated emits the replaced suggestion set.
func (a *App) SuggestionsUpdated(suggestions []domain.Suggestion) {
	if a.ctx == nil {
		return
	}
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}
	runtime.EventsEmit(a.ctx, eventSuggestions, suggestions)
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func stateReasonMessage(reason domain.StateReason) string {
	switch reason {
	case domain.ReasonRecordingStarted:
		return "Recording in progress"
	case domain.ReasonTranscribing:
		return "Recording stopped. Transcribing..."
	case domain.ReasonTranscriptReady:
		return "Transcript ready"
	case domain.ReasonRecordingDiscarded:
		return "Recording discarded"
	case domain.ReasonTranscriptionFailed:
		return "Transcription failed"
	case domain.ReasonDeviceUnavailable:
		return "Microphone unavailable"
	case domain.ReasonSessionCreated:
		return "New consultation started"
	case domain.ReasonSessionLoaded:
		return "Consultation loaded"
	case domain.ReasonSessionLoadFailed:
		return "Failed to load consultation"
	case domain.ReasonSuggestionsReady:
		return "Suggestions ready"
	case domain.ReasonSuggestionsFailed:
		return "Failed to generate suggestions"
	case domain.ReasonFeedbackRecorded:
		return "Feedback recorded"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeDevice:
		return "Microphone access was denied or the device is unavailable"
	case domain.ErrorCodeTranscription:
		return "Transcription failed. Please try again"
	case domain.ErrorCodeSession:
		return "Session request failed"
	case domain.ErrorCodeSuggestions:
		return "Failed to generate suggestions. Please try again"
	case domain.ErrorCodeFeedback:
		return "Failed to submit feedback. Please try again"
	case domain.ErrorCodeExport:
		return "Export failed"
	case domain.ErrorCodeValidation:
		return "Invalid input"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
