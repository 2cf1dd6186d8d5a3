package execread

import (
	"context"
	"encoding/binary"
	"math"
	"os/exec"
	"testing"
	"time"

	"github.com/noriah/handwave/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatReader(t *testing.T) {
	raw := make([]byte, 12)
	binary.LittleEndian.PutUint32(raw[0:], math.Float32bits(0.5))
	binary.LittleEndian.PutUint32(raw[4:], math.Float32bits(-0.25))
	binary.LittleEndian.PutUint32(raw[8:], math.Float32bits(1))

	r := FloatReader{Order: binary.LittleEndian}
	r.Reset(raw)

	assert.Equal(t, 0.5, r.Next())
	assert.Equal(t, -0.25, r.Next())
	assert.Equal(t, 1.0, r.Next())
}

func TestFloatReader64(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, math.Float64bits(0.125))

	r := FloatReader{Order: binary.LittleEndian, F64: true}
	r.Reset(raw)

	assert.Equal(t, 0.125, r.Next())
}

func TestSessionReportsMissingCommand(t *testing.T) {
	s := NewSession([]string{"handwave-no-such-command"}, true, input.SessionConfig{
		SampleSize: 64,
		SampleRate: 8000,
	})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.NoError(t, s.Stop())
}

func TestSessionReadsCommandOutput(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	// 64 stereo float32 frames of zeros followed by exit
	s := NewSession([]string{"sh", "-c", "head -c 512 /dev/zero"}, true, input.SessionConfig{
		FrameSize:  2,
		SampleSize: 64,
		SampleRate: 8000,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Start(ctx)
	require.Error(t, err)

	buf, stamp, ok := s.Samples().Load()
	require.True(t, ok)
	assert.Equal(t, uint64(1), stamp.Seq)
	assert.Len(t, buf, 64)
}
