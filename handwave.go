// Package handwave wires a sensor, the control pipeline, the wave and the
// instruments into one running piece.
package handwave

import (
	"context"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/noriah/handwave/feature"
	"github.com/noriah/handwave/input"
	"github.com/noriah/handwave/processor"
	"github.com/pkg/errors"
)

// Run starts the pipeline and the input session and blocks until ctx ends.
// An input that fails to start or dies while running is replaced by an idle
// source, so the wave keeps breathing.
func Run(cfg *Config, ctx context.Context) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	// tag every line of this run
	runID := uuid.New().String()[:8]
	logger = log.New(logger.Writer(), logger.Prefix()+runID+" ", logger.Flags())

	if cfg.SetupFunc != nil {
		if err := cfg.SetupFunc(); err != nil {
			return err
		}
	}

	if cfg.CleanupFunc != nil {
		defer cfg.CleanupFunc()
	}

	var source feature.Swap

	pipeline, err := processor.New(processor.Config{
		Tuning:    cfg.Tuning,
		Extractor: &source,
		Output:    cfg.Output,
		Player:    cfg.Player,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.StartFunc != nil {
		if ctx, err = cfg.StartFunc(ctx); err != nil {
			return err
		}
	}

	ctx = pipeline.Start(ctx)
	defer pipeline.Stop()

	logger.Printf("started, backend %q", cfg.Backend)

	go func() {
		err := runInput(ctx, cfg, &source, logger)
		if err == nil || ctx.Err() != nil {
			return
		}

		source.Set(feature.Idle{})
		logger.Printf("input: %v", err)

		if cfg.NoticeFunc != nil {
			cfg.NoticeFunc("input unavailable, running idle: " + errors.Cause(err).Error())
		}
	}()

	<-ctx.Done()

	logger.Println("stopped")

	return nil
}

// runInput starts the backend session, points source at an extractor for
// it and reads until ctx ends or the session fails.
func runInput(ctx context.Context, cfg *Config, source *feature.Swap, logger *log.Logger) error {
	backend, err := input.InitBackend(cfg.Backend)
	if err != nil {
		return err
	}
	defer backend.Close()

	sessConfig := input.SessionConfig{
		FrameSize:  cfg.FrameSize,
		SampleSize: cfg.SampleSize,
		SampleRate: cfg.SampleRate,
		Width:      cfg.Width,
		Height:     cfg.Height,
		FrameRate:  cfg.CaptureRate,
		Command:    cfg.Command,
	}

	if sessConfig.Device, err = input.GetDevice(backend, cfg.Device); err != nil {
		return err
	}

	session, err := backend.Start(sessConfig)
	if err != nil {
		return errors.Wrap(err, "failed to start the input backend")
	}
	defer session.Stop()

	extractor, err := NewExtractor(cfg, session)
	if err != nil {
		return err
	}

	source.Set(extractor)
	logger.Printf("reading %s from %v", backend.Kind(), sessConfig.Device)

	if err := session.Start(ctx); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "input session failed")
	}

	if ctx.Err() == nil {
		return errors.New("input session ended")
	}

	return nil
}

// NewExtractor picks the feature extractor for what the session delivers.
func NewExtractor(cfg *Config, session input.Session) (feature.Extractor, error) {
	t := cfg.Tuning

	switch s := session.(type) {
	case input.LandmarkSource:
		return feature.NewHands(t.Hands, t.Mapper.SideSplit, t.Mapper.SideBand, s.Landmarks()), nil

	case input.FrameSource:
		return feature.NewMotion(t.Motion, s.Frames(), t.Hands.StaleAfter), nil

	case input.SampleSource:
		return feature.NewAudio(t.Audio, cfg.SampleRate, s.Samples(), t.Hands.StaleAfter), nil
	}

	return nil, errors.Errorf("no extractor for session type %T", session)
}
