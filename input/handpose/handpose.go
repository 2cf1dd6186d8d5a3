// Package handpose runs an external hand landmark detector and reads its
// results.
//
// The detector writes one JSON document per processed frame to stdout: an
// array of hands, each an array of [x, y] landmark pairs normalized to the
// frame (extra coordinates are ignored). An empty array means no hands.
//
//	[[[0.41,0.62],[0.44,0.58], ...], [[0.71,0.55], ...]]
package handpose

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/noriah/handwave/input"
	"github.com/noriah/handwave/input/common/execread"
	"github.com/pkg/errors"
)

// MaxBadLines is how many consecutive unreadable lines end a session.
const MaxBadLines = 50

func init() {
	input.RegisterBackend("handpose", Backend{})
}

type Backend struct{}

func (b Backend) Init() error {
	return nil
}

func (b Backend) Close() error {
	return nil
}

func (b Backend) Kind() input.Kind {
	return input.KindLandmarks
}

func (b Backend) Devices() ([]input.Device, error) {
	return []input.Device{Detector{}}, nil
}

func (b Backend) DefaultDevice() (input.Device, error) {
	return Detector{}, nil
}

func (b Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

// Detector is the detector process named by the session command.
type Detector struct{}

func (Detector) String() string {
	return "detector"
}

// Session runs the detector command and publishes every parsed result.
type Session struct {
	argv []string

	// Stderr receives the detector's stderr. Nil discards it.
	Stderr io.Writer

	out input.Latest[input.Landmarks]

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ input.LandmarkSource = (*Session)(nil)

func NewSession(cfg input.SessionConfig) (*Session, error) {
	if len(cfg.Command) == 0 || strings.TrimSpace(cfg.Command[0]) == "" {
		return nil, errors.New("no detector command given")
	}

	return &Session{argv: cfg.Command}, nil
}

func (s *Session) Landmarks() *input.Latest[input.Landmarks] {
	return &s.out
}

func (s *Session) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	cmd, o, err := execread.StartCommand(ctx, s.argv, s.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		cancel()
		o.Close()
		cmd.Wait()
	}()

	if err := s.Consume(ctx, o); err != nil {
		return err
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return errors.Errorf("%s exited", s.argv[0])
}

// Consume reads detector lines from r until it ends.
func (s *Session) Consume(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	bad := 0

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		hands, err := ParseLine(line)
		if err != nil {
			if bad++; bad >= MaxBadLines {
				return errors.Wrap(err, "detector output unreadable")
			}
			continue
		}
		bad = 0

		s.out.Store(hands, time.Now())
	}

	return errors.Wrap(scanner.Err(), "failed to read detector output")
}

// ParseLine decodes one detector result.
func ParseLine(line []byte) (input.Landmarks, error) {
	var raw [][][]float64
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, errors.Wrap(err, "invalid detector line")
	}

	hands := make(input.Landmarks, 0, len(raw))

	for i, rh := range raw {
		hand := make(input.Hand, len(rh))
		for j, pt := range rh {
			if len(pt) < 2 {
				return nil, errors.Errorf("hand %d point %d has %d coordinates", i, j, len(pt))
			}
			hand[j] = input.Point{X: pt[0], Y: pt[1]}
		}
		hands = append(hands, hand)
	}

	return hands, nil
}

func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	return nil
}
