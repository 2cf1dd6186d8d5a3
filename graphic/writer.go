package graphic

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/noriah/handwave/control"
)

// Writer handles printing the raw control state, one line per tick.
type Writer struct {
	mu  sync.Mutex
	out *bufio.Writer

	// Every prints only one of this many ticks, 0 and 1 print all.
	Every int
	tick  int
}

// NewWriter returns a writer printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(w)}
}

// Header prints the column names.
func (d *Writer) Header() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	fmt.Fprintf(d.out, "%6s %6s %6s %3s %6s %6s %6s %-5s %-4s %9s\n",
		"x", "y", "int", "dir", "hue", "speed", "dyn", "side", "note", "phase")

	return d.out.Flush()
}

// Write prints s and phase.
func (d *Writer) Write(s control.State, phase float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tick++
	if d.Every > 1 && d.tick%d.Every != 0 {
		return nil
	}

	fmt.Fprintf(d.out, "%6.3f %6.3f %6.3f %+3d %6.1f %6.3f %6.3f %-5s %-4s %9.3f\n",
		s.CenterX, s.CenterY, s.Intensity, s.Direction, s.Hue,
		s.Speed, s.Dynamics, s.Side, s.Note, phase)

	return d.out.Flush()
}

// Close flushes the writer.
func (d *Writer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.out.Flush()
}
