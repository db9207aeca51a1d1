package bootstrap

import (
	"testing"
	"time"

	"medassist/internal/domain"
)

func TestBuildSuccess(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	services, err := Build(noopEventSink{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if services.Capture == nil || services.Workflow == nil || services.History == nil {
		t.Fatalf("expected all controllers wired: %+v", services)
	}
	if services.Gateway == nil {
		t.Fatalf("expected gateway")
	}
	if services.Log == nil {
		t.Fatalf("expected logger")
	}
}

func TestBuildAppliesConfigOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MEDASSIST_API_TIMEOUT_MS", "3000")
	t.Setenv("MEDASSIST_DEFAULT_SESSION_TITLE", "Urgent Care Visit")

	services, err := Build(noopEventSink{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if services.Config.API.Timeout != 3*time.Second {
		t.Fatalf("unexpected timeout: %s", services.Config.API.Timeout)
	}
	if services.Config.Session.DefaultTitle != "Urgent Care Visit" {
		t.Fatalf("unexpected default title: %q", services.Config.Session.DefaultTitle)
	}
}

type noopEventSink struct{}

func (noopEventSink) CaptureStateChanged(_ domain.CaptureState, _ domain.StateReason) {}
func (noopEventSink) TranscriptReady(_ string)                                        {}
func (noopEventSink) SessionChanged(_ domain.Session)                                 {}
func (noopEventSink) SuggestionsUpdated(_ []domain.Suggestion)                        {}
func (noopEventSink) SessionError(_ domain.ErrorCode, _ string)                       {}
