package sound

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/noriah/handwave/mapper"
	"github.com/pkg/errors"
)

// resampleQuality is the beep interpolation quality for repitching.
const resampleQuality = 4

// SamplerConfig names the sample files of an instrument. The file of a note
// is Dir/Prefix+Note+".wav", for example piano/pianoC4.wav.
type SamplerConfig struct {
	Name     string
	Dir      string
	Prefix   string
	Notes    []string
	MaxShift int // semitones a sample may be repitched
}

// Piano is the instrument of the left side.
func Piano(root string) SamplerConfig {
	return SamplerConfig{
		Name:     "piano",
		Dir:      filepath.Join(root, "piano"),
		Prefix:   "piano",
		Notes:    []string{"C4", "E4", "G4", "C5"},
		MaxShift: 12,
	}
}

// Violin is the instrument of the right side.
func Violin(root string) SamplerConfig {
	return SamplerConfig{
		Name:     "violin",
		Dir:      filepath.Join(root, "violin"),
		Prefix:   "violin",
		Notes:    []string{"C4", "E4", "G4", "C5"},
		MaxShift: 12,
	}
}

// Sampler plays the nearest loaded sample, repitched to the requested note.
type Sampler struct {
	cfg SamplerConfig

	mu      sync.RWMutex
	buffers map[int]*beep.Buffer // by MIDI note

	ready atomic.Bool
	done  chan struct{}
	err   error
}

// NewSampler returns an empty sampler. It is not ready until Load is done.
func NewSampler(cfg SamplerConfig) *Sampler {
	return &Sampler{
		cfg:     cfg,
		buffers: make(map[int]*beep.Buffer, len(cfg.Notes)),
		done:    make(chan struct{}),
	}
}

// Name is the instrument name.
func (sp *Sampler) Name() string {
	return sp.cfg.Name
}

// Load reads every sample file in the background. Wait blocks until it is
// done. Files that fail to load are skipped; the sampler is ready when at
// least one note loaded.
func (sp *Sampler) Load() {
	go func() {
		defer close(sp.done)

		var errs []error
		for _, name := range sp.cfg.Notes {
			if err := sp.loadNote(name); err != nil {
				errs = append(errs, err)
			}
		}

		sp.mu.RLock()
		loaded := len(sp.buffers)
		sp.mu.RUnlock()

		if len(errs) > 0 {
			sp.err = errors.Wrapf(errs[0], "%s: %d of %d samples failed",
				sp.cfg.Name, len(errs), len(sp.cfg.Notes))
		}

		sp.ready.Store(loaded > 0)
	}()
}

// Wait blocks until loading finished and returns the first load error.
func (sp *Sampler) Wait() error {
	<-sp.done
	return sp.err
}

func (sp *Sampler) loadNote(name string) error {
	note, err := mapper.ParseNote(name)
	if err != nil {
		return err
	}

	path := filepath.Join(sp.cfg.Dir, sp.cfg.Prefix+name+".wav")

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open sample")
	}

	stream, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to decode %s", path)
	}
	defer stream.Close()

	var src beep.Streamer = stream
	if format.SampleRate != SampleRate {
		src = beep.Resample(resampleQuality, format.SampleRate, SampleRate, stream)
	}

	buf := beep.NewBuffer(Format)
	buf.Append(src)

	sp.mu.Lock()
	sp.buffers[note.MIDI] = buf
	sp.mu.Unlock()

	return nil
}

// Ready reports whether samples are loaded.
func (sp *Sampler) Ready() bool {
	return sp.ready.Load()
}

// nearest returns the loaded note closest to midi. Ties go to the lower
// note.
func (sp *Sampler) nearest(midi int) (int, *beep.Buffer, bool) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()

	best, dist := 0, math.MaxInt
	var buf *beep.Buffer

	for m, b := range sp.buffers {
		d := m - midi
		if d < 0 {
			d = -d
		}
		if d < dist || (d == dist && m < best) {
			best, dist, buf = m, d, b
		}
	}

	return best, buf, buf != nil
}

// Voice repitches the nearest sample to note.
func (sp *Sampler) Voice(note mapper.Note, velocity float64, v Voice) (beep.Streamer, error) {
	if !sp.Ready() {
		return nil, ErrNotReady
	}

	base, buf, ok := sp.nearest(note.MIDI)
	if !ok {
		return nil, ErrNotReady
	}

	shift := note.MIDI - base
	if shift > sp.cfg.MaxShift || -shift > sp.cfg.MaxShift {
		return nil, errors.Wrapf(ErrNoteOutOfRange, "%s: %s is %d semitones from the nearest sample",
			sp.cfg.Name, note, shift)
	}

	var s beep.Streamer = buf.Streamer(0, buf.Len())
	if shift != 0 {
		s = beep.ResampleRatio(resampleQuality, math.Pow(2, float64(shift)/12), s)
	}

	return shape(s, velocity, v), nil
}
