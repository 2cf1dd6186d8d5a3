package handwave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/noriah/handwave/control"
	"github.com/noriah/handwave/feature"
	"github.com/noriah/handwave/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/noriah/handwave/input/sim"
)

type testOutput struct {
	mu     sync.Mutex
	states []control.State
}

func (to *testOutput) Write(s control.State, _ float64) error {
	to.mu.Lock()
	defer to.mu.Unlock()
	to.states = append(to.states, s)
	return nil
}

func (to *testOutput) active() int {
	to.mu.Lock()
	defer to.mu.Unlock()

	n := 0
	for _, s := range to.states {
		if s.Active {
			n++
		}
	}
	return n
}

func TestValidate(t *testing.T) {
	cfg := NewZeroConfig()
	require.NoError(t, cfg.Validate())

	for name, mod := range map[string]func(*Config){
		"rate below size": func(c *Config) { c.SampleRate = 100; c.SampleSize = 1024 },
		"tiny samples":    func(c *Config) { c.SampleSize = 2 },
		"huge samples":    func(c *Config) { c.SampleSize = 1 << 20; c.SampleRate = 1 << 21 },
		"three channels":  func(c *Config) { c.FrameSize = 3 },
		"no channels":     func(c *Config) { c.FrameSize = 0 },
		"negative width":  func(c *Config) { c.Width = -1 },
		"bad tuning":      func(c *Config) { c.Tuning.Smoothing.PositionActive = 2 },
	} {
		c := NewZeroConfig()
		mod(&c)
		assert.Error(t, c.Validate(), name)
	}
}

type landmarkSession struct{ out input.Latest[input.Landmarks] }

func (s *landmarkSession) Start(context.Context) error               { return nil }
func (s *landmarkSession) Stop() error                               { return nil }
func (s *landmarkSession) Landmarks() *input.Latest[input.Landmarks] { return &s.out }

type frameSession struct{ out input.Latest[input.Frame] }

func (s *frameSession) Start(context.Context) error        { return nil }
func (s *frameSession) Stop() error                        { return nil }
func (s *frameSession) Frames() *input.Latest[input.Frame] { return &s.out }

type sampleSession struct{ out input.Latest[[]input.Sample] }

func (s *sampleSession) Start(context.Context) error            { return nil }
func (s *sampleSession) Stop() error                            { return nil }
func (s *sampleSession) Samples() *input.Latest[[]input.Sample] { return &s.out }

type bareSession struct{}

func (bareSession) Start(context.Context) error { return nil }
func (bareSession) Stop() error                 { return nil }

func TestNewExtractor(t *testing.T) {
	cfg := NewZeroConfig()

	ex, err := NewExtractor(&cfg, &landmarkSession{})
	require.NoError(t, err)
	assert.IsType(t, &feature.Hands{}, ex)

	ex, err = NewExtractor(&cfg, &frameSession{})
	require.NoError(t, err)
	assert.IsType(t, &feature.Motion{}, ex)

	ex, err = NewExtractor(&cfg, &sampleSession{})
	require.NoError(t, err)
	assert.IsType(t, &feature.Audio{}, ex)

	_, err = NewExtractor(&cfg, bareSession{})
	assert.Error(t, err)
}

func TestRunWithSimulatedHands(t *testing.T) {
	out := &testOutput{}

	cfg := NewZeroConfig()
	cfg.Backend = "sim"
	cfg.CaptureRate = 60
	cfg.Output = out

	var setup, cleanup bool
	cfg.SetupFunc = func() error { setup = true; return nil }
	cfg.CleanupFunc = func() error { cleanup = true; return nil }

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, Run(&cfg, ctx))

	assert.True(t, setup)
	assert.True(t, cleanup)
	assert.Greater(t, out.active(), 0)
}

func TestRunFallsBackToIdle(t *testing.T) {
	out := &testOutput{}
	notices := make(chan string, 1)

	cfg := NewZeroConfig()
	cfg.Backend = "no-such-backend"
	cfg.Output = out
	cfg.NoticeFunc = func(msg string) { notices <- msg }

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, Run(&cfg, ctx))

	select {
	case msg := <-notices:
		assert.Contains(t, msg, "running idle")
	default:
		t.Fatal("no notice")
	}

	out.mu.Lock()
	defer out.mu.Unlock()
	assert.NotEmpty(t, out.states)
}

func TestRunStartFuncEndsRun(t *testing.T) {
	cfg := NewZeroConfig()
	cfg.Backend = "sim"
	cfg.StartFunc = func(ctx context.Context) (context.Context, error) {
		ctx, cancel := context.WithCancel(ctx)
		time.AfterFunc(100*time.Millisecond, cancel)
		return ctx, nil
	}

	done := make(chan error, 1)
	go func() { done <- Run(&cfg, context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not end with the start context")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := NewZeroConfig()
	cfg.FrameSize = 0
	assert.Error(t, Run(&cfg, context.Background()))
}
