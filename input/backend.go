package input

import (
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// ErrDeviceNotFound is returned when a named device does not exist.
var ErrDeviceNotFound = errors.New("device not found")

// Kind is what a backend's sessions produce.
type Kind int

// Backend kinds.
const (
	KindSamples Kind = iota
	KindFrames
	KindLandmarks
)

func (k Kind) String() string {
	switch k {
	case KindSamples:
		return "audio"
	case KindFrames:
		return "video"
	case KindLandmarks:
		return "hands"
	default:
		return "unknown"
	}
}

type Backend interface {
	// Init should do nothing if called more than once.
	Init() error
	Close() error

	Kind() Kind
	Devices() ([]Device, error)
	DefaultDevice() (Device, error)
	Start(SessionConfig) (Session, error)
}

type NamedBackend struct {
	Name string
	Backend
}

var Backends []NamedBackend

// RegisterBackend registers a backend globally. This function is not
// thread-safe, and most packages should call it on init().
func RegisterBackend(name string, b Backend) {
	Backends = append(Backends, NamedBackend{
		Name:    name,
		Backend: b,
	})
}

// Get all installed backend names.
func GetAllBackendNames() []string {
	out := make([]string, len(Backends))
	for i, backend := range Backends {
		out[i] = backend.Name
	}
	return out
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// DefaultBackend picks the backend for a run without a -b flag. A camera is
// preferred since the piece is played with the hands, then a detector
// command, then a microphone.
func DefaultBackend() string {
	if HasBackend("camera") {
		return "camera"
	}

	if path, _ := lookPath("parec"); path != "" {
		if HasBackend("parec") {
			return "parec"
		}
	}

	if HasBackend("sim") {
		return "sim"
	}

	return ""
}

// FindBackend is a helper function that finds a backend. It returns nil if the
// backend is not found.
func FindBackend(name string) Backend {
	for _, backend := range Backends {
		if backend.Name == name {
			return backend
		}
	}
	return nil
}

func HasBackend(name string) bool {
	return FindBackend(name) != nil
}

func InitBackend(bknd string) (Backend, error) {
	backend := FindBackend(bknd)
	if backend == nil {
		return nil, errors.Errorf("backend not found: %q; have %s", bknd, strings.Join(GetAllBackendNames(), ", "))
	}

	if err := backend.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize input backend")
	}

	return backend, nil
}

func GetDevice(backend Backend, device string) (Device, error) {
	if device == "" {
		def, err := backend.DefaultDevice()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get default device")
		}
		return def, nil
	}

	devices, err := backend.Devices()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get devices")
	}

	for idx := range devices {
		if devices[idx].String() == device {
			return devices[idx], nil
		}
	}

	return nil, errors.Wrapf(ErrDeviceNotFound, "device %q; check list-devices", device)
}
