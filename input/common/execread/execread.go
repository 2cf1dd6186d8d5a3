// Package execread provides a shared session that reads samples from the
// stdout of an external command.
package execread

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/noriah/handwave/input"
	"github.com/pkg/errors"
)

// Session is a session that reads floating-point audio values from a Cmd.
type Session struct {
	// OnStart is called when the session starts. Nil by default.
	OnStart func(ctx context.Context, cmd *exec.Cmd) error

	// Stderr receives the command's stderr. Nil discards it, the terminal
	// belongs to the display.
	Stderr io.Writer

	argv []string
	cfg  input.SessionConfig

	samples int // multiplied

	f32mode bool

	out input.Latest[[]input.Sample]

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ input.SampleSource = (*Session)(nil)

// NewSession creates a new execread session. It never returns an error.
func NewSession(argv []string, f32mode bool, cfg input.SessionConfig) *Session {
	if len(argv) < 1 {
		panic("argv has no arg0")
	}

	if cfg.FrameSize < 1 {
		cfg.FrameSize = 1
	}

	return &Session{
		argv:    argv,
		cfg:     cfg,
		f32mode: f32mode,
		samples: cfg.SampleSize * cfg.FrameSize,
	}
}

// Samples returns the mailbox holding the latest mono buffer.
func (s *Session) Samples() *input.Latest[[]input.Sample] {
	return &s.out
}

// StartCommand starts argv with its stdout piped back as an *os.File, so
// callers can set read deadlines on it.
func StartCommand(ctx context.Context, argv []string, stderr io.Writer) (*exec.Cmd, *os.File, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stderr = stderr

	o, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get stdout pipe")
	}

	// We need o as an *os.File for SetReadDeadline.
	of, ok := o.(*os.File)
	if !ok {
		o.Close()
		return nil, nil, errors.New("stdout pipe is not an *os.File (bug)")
	}

	if err := cmd.Start(); err != nil {
		o.Close()
		return nil, nil, errors.Wrap(err, "failed to start "+argv[0])
	}

	return cmd, of, nil
}

func (s *Session) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	cmd, o, err := StartCommand(ctx, s.argv, s.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		cancel()
		o.Close()
		cmd.Wait()
	}()

	if s.OnStart != nil {
		if err := s.OnStart(ctx, cmd); err != nil {
			return err
		}
	}

	reader := FloatReader{
		Order: binary.LittleEndian,
		F64:   !s.f32mode,
	}

	bufsz := s.samples
	if !s.f32mode {
		bufsz *= 2
	}

	raw := make([]byte, bufsz*4)
	interleaved := make([]float64, s.samples)

	// We double this as a workaround because sampleDuration is less than the
	// actual time that ReadFull blocks for some reason, probably because the
	// process decides to discard audio when it overflows.
	sampleDuration := time.Duration(
		float64(s.cfg.SampleSize) / s.cfg.SampleRate * float64(time.Second))
	// We also keep track of whether the deadline was hit once so we can half
	// the sample duration. This smooths out the jitter.
	var readExpired bool

	for {
		// Set us a read deadline. If the deadline is reached, we'll store
		// silence.
		timeout := sampleDuration
		if !readExpired {
			timeout *= 6
		}
		if err := o.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return errors.Wrap(err, "failed to set read deadline")
		}

		_, err := io.ReadFull(o, raw)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return ctx.Err()
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
				return errors.Errorf("%s exited", s.argv[0])
			case errors.Is(err, os.ErrDeadlineExceeded):
				readExpired = true
			default:
				return err
			}
		} else {
			readExpired = false
		}

		buf := make([]input.Sample, s.cfg.SampleSize)

		if !readExpired {
			reader.Reset(raw)
			for n := range interleaved {
				interleaved[n] = reader.Next()
			}
			input.MixDown(buf, interleaved, s.cfg.FrameSize)
		}

		s.out.Store(buf, time.Now())

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// Stop cancels a running Start. It is safe to call more than once.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	return nil
}

// FloatReader decodes packed floats.
type FloatReader struct {
	Order binary.ByteOrder
	F64   bool

	buf []byte
}

func (f *FloatReader) Reset(b []byte) {
	f.buf = b
}

func (f *FloatReader) Next() float64 {
	if f.F64 {
		b := f.buf[:8]
		f.buf = f.buf[8:]
		return math.Float64frombits(f.Order.Uint64(b))
	}

	b := f.buf[:4]
	f.buf = f.buf[4:]
	return float64(math.Float32frombits(f.Order.Uint32(b)))
}
