// Package stdinput reads raw float32le samples piped into stdin.
package stdinput

import (
	"context"
	"encoding/binary"
	"io"
	"os"
	"sync"
	"time"

	"github.com/noriah/handwave/input"
	"github.com/noriah/handwave/input/common/execread"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("stdin", StdinBackend{})
}

type StdinBackend struct{}

func (b StdinBackend) Init() error {
	return nil
}

func (b StdinBackend) Close() error {
	return nil
}

func (b StdinBackend) Kind() input.Kind {
	return input.KindSamples
}

func (b StdinBackend) Devices() ([]input.Device, error) {
	return []input.Device{StdInputDevice{}}, nil
}

func (b StdinBackend) DefaultDevice() (input.Device, error) {
	return StdInputDevice{}, nil
}

func (b StdinBackend) Start(config input.SessionConfig) (input.Session, error) {
	return NewStdinSession(config, os.Stdin), nil
}

type StdInputDevice struct{}

func (d StdInputDevice) String() string {
	return "stdin"
}

// Session reads interleaved float32le frames from a reader.
type Session struct {
	cfg     input.SessionConfig
	samples int
	r       io.Reader

	out input.Latest[[]input.Sample]

	stopOnce sync.Once
	done     chan struct{}
}

var _ input.SampleSource = (*Session)(nil)

func NewStdinSession(cfg input.SessionConfig, r io.Reader) *Session {
	if cfg.FrameSize < 1 {
		cfg.FrameSize = 1
	}

	return &Session{
		cfg:     cfg,
		samples: cfg.SampleSize * cfg.FrameSize,
		r:       r,
		done:    make(chan struct{}),
	}
}

func (s *Session) Samples() *input.Latest[[]input.Sample] {
	return &s.out
}

// Start reads until the reader ends, ctx is done or Stop is called. A
// blocked read on stdin cannot be interrupted, so the session returns as
// soon as the next buffer arrives.
func (s *Session) Start(ctx context.Context) error {
	reader := execread.FloatReader{Order: binary.LittleEndian}

	raw := make([]byte, s.samples*4)
	interleaved := make([]float64, s.samples)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		default:
		}

		if _, err := io.ReadFull(s.r, raw); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return errors.New("stdin closed")
			}
			return errors.Wrap(err, "failed to read stdin")
		}

		reader.Reset(raw)
		for n := range interleaved {
			interleaved[n] = reader.Next()
		}

		buf := make([]input.Sample, s.cfg.SampleSize)
		input.MixDown(buf, interleaved, s.cfg.FrameSize)

		s.out.Store(buf, time.Now())
	}
}

func (s *Session) Stop() error {
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}
