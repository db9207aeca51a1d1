package bootstrap

import (
	"net/http"

	"medassist/internal/audio"
	"medassist/internal/config"
	"medassist/internal/gateway"
	"medassist/internal/logging"
	"medassist/internal/ports"
	"medassist/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Capture  *usecase.CaptureController
	Workflow *usecase.WorkflowController
	History  *usecase.HistoryController
	Gateway  ports.Gateway
	Config   config.Config
	Log      *logging.Logger
}

// Build wires all backend dependencies for the current runtime.
func Build(events ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	log := logging.New(cfg.Log.Level)

	client := gateway.NewClient(
		cfg.API.BaseURL,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		gateway.WithLogger(log),
	)

	capture := usecase.NewCaptureController(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		client,
		events,
		usecase.CaptureConfig{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			MIMEType:  audio.MIMEType,
			ChunkSize: cfg.Audio.ChunkSize,
		},
	)

	workflow := usecase.NewWorkflowController(client, events, cfg.Session.DefaultTitle)
	history := usecase.NewHistoryController(client)

	return Services{
		Capture:  capture,
		Workflow: workflow,
		History:  history,
		Gateway:  client,
		Config:   cfg,
		Log:      log,
	}, nil
}
