// Package all imports all backends implemented by the input package.
package all

import (
	_ "github.com/noriah/handwave/input/camera"
	_ "github.com/noriah/handwave/input/ffmpeg"
	_ "github.com/noriah/handwave/input/handpose"
	_ "github.com/noriah/handwave/input/parec"
	_ "github.com/noriah/handwave/input/sim"
	_ "github.com/noriah/handwave/input/stdinput"
)
