package mapper

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Note is a pitch in twelve tone equal temperament.
type Note struct {
	Name string
	MIDI int
}

var semitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// ParseNote parses scientific pitch notation such as "C4", "F#3" or "Bb5".
func ParseNote(name string) (Note, error) {
	s := strings.TrimSpace(name)
	if len(s) < 2 {
		return Note{}, errors.Errorf("invalid note %q", name)
	}

	step, ok := semitones[byte(strings.ToUpper(s[:1])[0])]
	if !ok {
		return Note{}, errors.Errorf("invalid note letter in %q", name)
	}

	rest := s[1:]
	switch rest[0] {
	case '#':
		step++
		rest = rest[1:]
	case 'b':
		step--
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return Note{}, errors.Wrapf(err, "invalid octave in %q", name)
	}

	return NoteFromMIDI((octave+1)*12 + step), nil
}

// MustParseNote is ParseNote that panics on error.
func MustParseNote(name string) Note {
	n, err := ParseNote(name)
	if err != nil {
		panic(err)
	}
	return n
}

// NoteFromMIDI names a MIDI note number with sharps.
func NoteFromMIDI(m int) Note {
	octave := int(math.Floor(float64(m)/12)) - 1
	return Note{
		Name: fmt.Sprintf("%s%d", sharpNames[((m%12)+12)%12], octave),
		MIDI: m,
	}
}

// Frequency returns the pitch in Hz with A4 at 440 Hz.
func (n Note) Frequency() float64 {
	return 440 * math.Pow(2, float64(n.MIDI-69)/12)
}

func (n Note) String() string {
	return n.Name
}
