// Package camera captures video frames from a local camera with gocv.
package camera

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/noriah/handwave/input"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

func init() {
	input.RegisterBackend("camera", Backend{})
}

// MaxProbe is how many device ids Devices tries.
const MaxProbe = 4

type Backend struct{}

func (b Backend) Init() error {
	return nil
}

func (b Backend) Close() error {
	return nil
}

func (b Backend) Kind() input.Kind {
	return input.KindFrames
}

// Devices probes the first MaxProbe device ids and returns the ones that
// open.
func (b Backend) Devices() ([]input.Device, error) {
	var devices []input.Device

	for id := 0; id < MaxProbe; id++ {
		vc, err := gocv.OpenVideoCapture(id)
		if err != nil {
			continue
		}

		if vc.IsOpened() {
			devices = append(devices, Device(id))
		}
		vc.Close()
	}

	return devices, nil
}

func (b Backend) DefaultDevice() (input.Device, error) {
	return Device(0), nil
}

func (b Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

// Device is a camera device id.
type Device int

func (d Device) String() string {
	return strconv.Itoa(int(d))
}

// Session grabs frames in a loop and publishes the latest one.
type Session struct {
	cfg input.SessionConfig
	id  Device

	out input.Latest[input.Frame]

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ input.FrameSource = (*Session)(nil)

func NewSession(cfg input.SessionConfig) (*Session, error) {
	id, ok := cfg.Device.(Device)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 640, 480
	}

	return &Session{cfg: cfg, id: id}, nil
}

func (s *Session) Frames() *input.Latest[input.Frame] {
	return &s.out
}

func (s *Session) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	vc, err := gocv.OpenVideoCapture(int(s.id))
	if err != nil {
		return errors.Wrapf(err, "failed to open camera %s", s.id)
	}
	defer vc.Close()

	if !vc.IsOpened() {
		return errors.Errorf("camera %s is not available", s.id)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(s.cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(s.cfg.Height))
	if s.cfg.FrameRate > 0 {
		vc.Set(gocv.VideoCaptureFPS, float64(s.cfg.FrameRate))
	}

	mat := gocv.NewMat()
	defer mat.Close()

	// a camera that stops delivering is treated as gone
	misses := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if ok := vc.Read(&mat); !ok || mat.Empty() {
			if misses++; misses > 100 {
				return errors.Errorf("camera %s stopped delivering frames", s.id)
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}
		misses = 0

		order := input.OrderBGR
		switch mat.Channels() {
		case 1:
			order = input.OrderGray
		case 4:
			order = input.OrderBGRA
		}

		s.out.Store(input.Frame{
			Width:  mat.Cols(),
			Height: mat.Rows(),
			Pix:    mat.ToBytes(),
			Order:  order,
		}, time.Now())
	}
}

func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	return nil
}
