package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/noriah/handwave/input"
	"github.com/noriah/handwave/input/common/execread"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("ffmpeg-v4l2", V4L2{})
}

// V4L2 captures grayscale video from a Video4Linux device without OpenCV.
type V4L2 struct{}

func (p V4L2) Init() error {
	return nil
}

func (p V4L2) Close() error {
	return nil
}

func (p V4L2) Kind() input.Kind {
	return input.KindFrames
}

// Devices returns a list of devices from /dev/video*.
func (p V4L2) Devices() ([]input.Device, error) {
	n, err := filepath.Glob("/dev/video*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to glob /dev/video")
	}

	var devices = make([]input.Device, len(n))
	for i, path := range n {
		devices[i] = V4L2Device(path)
	}

	return devices, nil
}

func (p V4L2) DefaultDevice() (input.Device, error) {
	return V4L2Device("/dev/video0"), nil
}

func (p V4L2) Start(cfg input.SessionConfig) (input.Session, error) {
	dv, ok := cfg.Device.(V4L2Device)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	return NewVideoSession(dv, cfg), nil
}

// V4L2Device is a path to /dev/videoN.
type V4L2Device string

func (d V4L2Device) InputArgs() []string {
	return []string{"-f", "v4l2", "-i", string(d)}
}

func (d V4L2Device) String() string {
	return string(d)
}

// VideoSession reads raw gray frames of a fixed size from ffmpeg.
type VideoSession struct {
	argv   []string
	width  int
	height int

	out input.Latest[input.Frame]

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ input.FrameSource = (*VideoSession)(nil)

// VideoArgv is the ffmpeg command line writing scaled gray frames to stdout.
func VideoArgv(b FFmpegBackend, width, height, fps int) []string {
	args := []string{"ffmpeg", "-hide_banner", "-loglevel", "panic"}
	args = append(args, b.InputArgs()...)

	filter := fmt.Sprintf("scale=%d:%d", width, height)
	if fps > 0 {
		filter = fmt.Sprintf("fps=%d,%s", fps, filter)
	}

	args = append(args,
		"-vf", filter,
		"-pix_fmt", "gray",
		"-f", "rawvideo",
		"-",
	)
	return args
}

func NewVideoSession(b FFmpegBackend, cfg input.SessionConfig) *VideoSession {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 320, 240
	}

	return &VideoSession{
		argv:   VideoArgv(b, cfg.Width, cfg.Height, cfg.FrameRate),
		width:  cfg.Width,
		height: cfg.Height,
	}
}

func (s *VideoSession) Frames() *input.Latest[input.Frame] {
	return &s.out
}

func (s *VideoSession) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	cmd, o, err := execread.StartCommand(ctx, s.argv, nil)
	if err != nil {
		return err
	}
	defer func() {
		cancel()
		o.Close()
		cmd.Wait()
	}()

	if err := s.Consume(o); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	return nil
}

// Consume reads whole frames from r until it fails.
func (s *VideoSession) Consume(r io.Reader) error {
	for {
		pix := make([]byte, s.width*s.height)

		if _, err := io.ReadFull(r, pix); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return errors.New("ffmpeg stopped delivering frames")
			}
			return errors.Wrap(err, "failed to read frame")
		}

		s.out.Store(input.Frame{
			Width:  s.width,
			Height: s.height,
			Pix:    pix,
			Order:  input.OrderGray,
		}, time.Now())
	}
}

func (s *VideoSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	return nil
}
