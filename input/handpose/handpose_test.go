package handpose

import (
	"context"
	"strings"
	"testing"

	"github.com/noriah/handwave/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	hands, err := ParseLine([]byte(`[[[0.1,0.2],[0.3,0.4,0.9]],[[0.7,0.5]]]`))
	require.NoError(t, err)

	require.Len(t, hands, 2)
	assert.Equal(t, input.Hand{{X: 0.1, Y: 0.2}, {X: 0.3, Y: 0.4}}, hands[0])
	assert.Equal(t, input.Hand{{X: 0.7, Y: 0.5}}, hands[1])
}

func TestParseLineEmpty(t *testing.T) {
	hands, err := ParseLine([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, hands)
}

func TestParseLineRejects(t *testing.T) {
	for _, line := range []string{`{`, `[[[0.1]]]`, `"hands"`} {
		_, err := ParseLine([]byte(line))
		assert.Error(t, err, line)
	}
}

func TestConsumeKeepsLatest(t *testing.T) {
	s := &Session{argv: []string{"detector"}}

	out := strings.Join([]string{
		`[[[0.1,0.1]]]`,
		`garbage`,
		``,
		`[[[0.9,0.8]]]`,
	}, "\n")

	require.NoError(t, s.Consume(context.Background(), strings.NewReader(out)))

	hands, stamp, ok := s.Landmarks().Load()
	require.True(t, ok)
	assert.Equal(t, uint64(2), stamp.Seq)
	assert.Equal(t, 0.9, hands[0][0].X)
}

func TestConsumeGivesUpOnNoise(t *testing.T) {
	s := &Session{argv: []string{"detector"}}
	noise := strings.Repeat("nope\n", MaxBadLines)

	assert.Error(t, s.Consume(context.Background(), strings.NewReader(noise)))
}

func TestNewSessionNeedsCommand(t *testing.T) {
	_, err := NewSession(input.SessionConfig{})
	assert.Error(t, err)

	s, err := NewSession(input.SessionConfig{Command: []string{"python3", "detect.py"}})
	require.NoError(t, err)
	assert.NoError(t, s.Stop())
}
