package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"medassist/internal/domain"
	"medassist/internal/ports"
)

var (
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)

// CaptureConfig controls recording behavior.
type CaptureConfig struct {
	Audio     ports.AudioConfig
	MIMEType  string
	ChunkSize int
}

// CaptureController owns the microphone for the duration of one recording.
// It accumulates audio chunks in arrival order, and on stop hands the
// assembled artifact to the gateway for transcription. The device is
// released on every exit path before the upload is attempted.
type CaptureController struct {
	capture ports.AudioCapture
	gateway ports.Gateway
	events  ports.EventSink
	cfg     CaptureConfig

	mu      sync.Mutex
	state   domain.CaptureState
	current *activeRecording
}

func NewCaptureController(
	capture ports.AudioCapture,
	gateway ports.Gateway,
	events ports.EventSink,
	cfg CaptureConfig,
) *CaptureController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.MIMEType == "" {
		cfg.MIMEType = "audio/wav"
	}
	return &CaptureController{
		capture: capture,
		gateway: gateway,
		events:  events,
		cfg:     cfg,
		state:   domain.CaptureStateIdle,
	}
}

// Start acquires the capture device and begins accumulating chunks.
// Starting while a recording is active is rejected; the device is never
// shared between two recording attempts.
func (c *CaptureController) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != domain.CaptureStateIdle {
		c.mu.Unlock()
		return ErrAlreadyRecording
	}
	// Reserve the slot before the (slow) device acquisition.
	c.state = domain.CaptureStateRecording
	c.mu.Unlock()

	session, err := c.capture.Start(ctx, c.cfg.Audio)
	if err != nil {
		c.mu.Lock()
		c.state = domain.CaptureStateIdle
		c.mu.Unlock()
		c.events.CaptureStateChanged(domain.CaptureStateError, domain.ReasonDeviceUnavailable)
		c.events.SessionError(domain.ErrorCodeDevice, err.Error())
		return fmt.Errorf("acquire capture device: %w", err)
	}

	recording := &activeRecording{
		session:  session,
		pumpDone: make(chan struct{}),
	}

	c.mu.Lock()
	c.current = recording
	c.mu.Unlock()

	go c.pumpChunks(recording)

	c.events.CaptureStateChanged(domain.CaptureStateRecording, domain.ReasonRecordingStarted)
	return nil
}

// Stop finalizes the recording and submits it for transcription. The device
// is released before the upload, so a gateway failure can never leak the
// microphone. The artifact is discarded either way; there is no retry of a
// stale recording.
func (c *CaptureController) Stop(ctx context.Context, sessionID int64) (domain.Transcript, error) {
	c.mu.Lock()
	if c.state != domain.CaptureStateRecording || c.current == nil {
		c.mu.Unlock()
		return domain.Transcript{}, ErrNotRecording
	}
	recording := c.current
	c.state = domain.CaptureStateFinalizing
	c.mu.Unlock()

	c.events.CaptureStateChanged(domain.CaptureStateFinalizing, domain.ReasonTranscribing)

	if err := recording.session.Stop(); err != nil {
		c.events.SessionError(domain.ErrorCodeDevice, "capture device did not stop cleanly")
	}
	<-recording.pumpDone

	artifact := recording.artifact(c.cfg.MIMEType)

	transcript, err := c.gateway.Transcribe(ctx, artifact, sessionID)
	if err != nil {
		c.finish(recording, domain.CaptureStateError, domain.ReasonTranscriptionFailed)
		c.events.SessionError(domain.ErrorCodeTranscription, err.Error())
		return domain.Transcript{}, err
	}

	c.finish(recording, domain.CaptureStateIdle, domain.ReasonTranscriptReady)
	return transcript, nil
}

// Abort discards an in-progress recording without transcription.
func (c *CaptureController) Abort() error {
	c.mu.Lock()
	if c.state == domain.CaptureStateIdle || c.current == nil {
		c.mu.Unlock()
		return ErrNotRecording
	}
	recording := c.current
	c.mu.Unlock()

	_ = recording.session.Stop()
	<-recording.pumpDone

	c.finish(recording, domain.CaptureStateIdle, domain.ReasonRecordingDiscarded)
	return nil
}

// Status returns the current capture status.
func (c *CaptureController) Status() domain.CaptureStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CaptureStatus{
		State:  c.state,
		Active: c.state != domain.CaptureStateIdle,
	}
}

func (c *CaptureController) finish(recording *activeRecording, state domain.CaptureState, reason domain.StateReason) {
	c.mu.Lock()
	if c.current == recording {
		c.current = nil
	}
	c.state = domain.CaptureStateIdle
	c.mu.Unlock()

	c.events.CaptureStateChanged(state, reason)
}

// pumpChunks reads fixed-size chunks from the device session and appends
// them in arrival order. Order is the correctness invariant here: the
// artifact is the concatenation of chunks exactly as they arrived.
func (c *CaptureController) pumpChunks(recording *activeRecording) {
	defer close(recording.pumpDone)

	buf := make([]byte, c.cfg.ChunkSize)
	for {
		n, err := recording.session.Read(buf)
		if n > 0 {
			recording.append(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
				c.events.SessionError(domain.ErrorCodeDevice, fmt.Sprintf("audio capture error: %v", err))
			}
			return
		}
	}
}

type activeRecording struct {
	session  ports.AudioSession
	pumpDone chan struct{}

	mu     sync.Mutex
	chunks [][]byte
}

func (r *activeRecording) append(chunk []byte) {
	copied := append([]byte(nil), chunk...)
	r.mu.Lock()
	r.chunks = append(r.chunks, copied)
	r.mu.Unlock()
}

func (r *activeRecording) artifact(mimeType string) domain.AudioArtifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.AudioArtifact{
		Data:     bytes.Join(r.chunks, nil),
		MIMEType: mimeType,
		Filename: "recording.wav",
	}
}
