package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"

	"github.com/noriah/handwave"
	"github.com/noriah/handwave/graphic"
	"github.com/noriah/handwave/input"
	"github.com/noriah/handwave/sound"
	"github.com/noriah/handwave/sound/speaker"
	"github.com/noriah/handwave/tuning"

	_ "github.com/noriah/handwave/input/all"

	"github.com/charmbracelet/lipgloss"
	"github.com/integrii/flaggy"
)

// AppName is the app name
const AppName = "handwave"

// AppDesc is the app description
const AppDesc = "Play a terminal wave and two instruments with your hands"

// AppSite is the app website
const AppSite = "https://github.com/noriah/handwave"

var version = "unknown"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FAFFF"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D70000"))
)

func main() {
	log.SetFlags(0)

	cfg := newZeroConfig()

	if doFlags(&cfg) {
		return
	}

	chk(cfg.Sanitize(), "invalid config")

	t, err := cfg.loadTuning()
	chk(err, "failed to load tuning")

	logger := log.New(io.Discard, "", log.LstdFlags)
	if cfg.logFile != "" {
		f, err := os.OpenFile(cfg.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		chk(err, "failed to open log file")
		defer f.Close()

		logger.SetOutput(f)
	}

	hwCfg := handwave.NewZeroConfig()
	hwCfg.Backend = cfg.backend
	hwCfg.Device = cfg.device
	hwCfg.SampleRate = cfg.sampleRate
	hwCfg.SampleSize = cfg.sampleSize
	hwCfg.FrameSize = cfg.channelCount
	hwCfg.Width = cfg.width
	hwCfg.Height = cfg.height
	hwCfg.CaptureRate = cfg.captureRate
	hwCfg.Command = cfg.commandArgs()
	hwCfg.Tuning = t
	hwCfg.Logger = logger

	var engine *speaker.Engine
	if !cfg.noSound {
		engine = newEngine(&cfg, logger)
		hwCfg.Player = engine
	}

	if cfg.raw {
		setupRaw(&hwCfg, &cfg, engine)
	} else {
		setupDisplay(&hwCfg, engine)
	}

	// Root Context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	chk(handwave.Run(&hwCfg, ctx), "failed to run handwave")
}

// newEngine builds the instruments. Samples load in the background, the
// synth stands in when they are missing or asked for.
func newEngine(cfg *config, logger *log.Logger) *speaker.Engine {
	left, right := sound.Instrument(sound.NewSynth()), sound.Instrument(sound.NewSynth())

	if !cfg.synth {
		for i, sc := range []sound.SamplerConfig{sound.Piano(cfg.samplesDir), sound.Violin(cfg.samplesDir)} {
			if _, err := os.Stat(sc.Dir); err != nil {
				logger.Printf("no %s samples in %s, using the synth", sc.Name, sc.Dir)
				continue
			}

			sampler := sound.NewSampler(sc)
			sampler.Load()

			go func() {
				if err := sampler.Wait(); err != nil {
					logger.Printf("samples: %v", err)
				}
			}()

			if i == 0 {
				left = sampler
			} else {
				right = sampler
			}
		}
	}

	engine := speaker.New(left, right)
	engine.Logger = logger

	return engine
}

func setupDisplay(hwCfg *handwave.Config, engine *speaker.Engine) {
	display := graphic.NewDisplay(hwCfg.Tuning.Wave)

	if engine != nil {
		display.Gesture = func() {
			if err := engine.Init(); err != nil {
				display.Notice("sound unavailable: " + err.Error())
				return
			}
			display.Notice("")
		}

		display.Pause = func() (bool, error) {
			if engine.Suspended() {
				return false, engine.Resume()
			}
			return true, engine.Suspend()
		}
	}

	hwCfg.SetupFunc = func() error {
		if err := display.Init(); err != nil {
			return err
		}

		if engine != nil {
			display.Notice("press space to start the sound")
		}
		return nil
	}

	hwCfg.StartFunc = func(ctx context.Context) (context.Context, error) {
		return display.Start(ctx), nil
	}

	hwCfg.CleanupFunc = func() error {
		if engine != nil {
			engine.Close()
		}
		display.Stop()
		return display.Close()
	}

	hwCfg.NoticeFunc = display.Notice
	hwCfg.Output = display
}

func setupRaw(hwCfg *handwave.Config, cfg *config, engine *speaker.Engine) {
	writer := graphic.NewWriter(os.Stdout)
	writer.Every = cfg.every

	hwCfg.SetupFunc = func() error {
		// running the command is the gesture here
		if engine != nil {
			if err := engine.Init(); err != nil {
				log.Println(mutedStyle.Render("sound unavailable:"), err)
			}
		}
		return writer.Header()
	}

	hwCfg.CleanupFunc = func() error {
		if engine != nil {
			engine.Close()
		}
		return writer.Close()
	}

	hwCfg.NoticeFunc = func(msg string) {
		log.Println(mutedStyle.Render(msg))
	}
	hwCfg.Output = writer
}

func doFlags(cfg *config) bool {

	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.AdditionalHelpPrepend = AppSite
	parser.Version = version

	listBackendsCmd := flaggy.Subcommand{
		Name:                 "list-backends",
		ShortName:            "lb",
		Description:          "list all supported backends",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listBackendsCmd, 1)

	listDevicesCmd := flaggy.Subcommand{
		Name:                 "list-devices",
		ShortName:            "ld",
		Description:          "list all devices for a backend",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listDevicesCmd, 1)

	listPresetsCmd := flaggy.Subcommand{
		Name:        "list-presets",
		ShortName:   "lp",
		Description: "list the tuning presets",
	}

	parser.AttachSubcommand(&listPresetsCmd, 1)

	dumpTuningCmd := flaggy.Subcommand{
		Name:                 "dump-tuning",
		ShortName:            "dt",
		Description:          "print the tuning as YAML",
		AdditionalHelpAppend: "\nedit the output and pass it back with -t",
	}

	parser.AttachSubcommand(&dumpTuningCmd, 1)

	parser.String(&cfg.backend, "b", "backend", "backend name")
	parser.String(&cfg.device, "d", "device", "device name")
	parser.Float64(&cfg.sampleRate, "r", "rate", "sample rate")
	parser.Int(&cfg.sampleSize, "n", "samples", "sample size")
	parser.Int(&cfg.channelCount, "ch", "channels", "channel count (1 or 2)")
	parser.Int(&cfg.width, "W", "width", "capture width")
	parser.Int(&cfg.height, "H", "height", "capture height")
	parser.Int(&cfg.captureRate, "f", "fps", "capture frame rate (0 for the device default)")
	parser.String(&cfg.command, "c", "command", "hand detector command line")
	parser.String(&cfg.preset, "p", "preset", "tuning preset")
	parser.String(&cfg.tuningFile, "t", "tuning", "YAML tuning file applied over the preset")
	parser.String(&cfg.samplesDir, "s", "samples-dir", "directory with piano/ and violin/ samples")
	parser.Bool(&cfg.synth, "y", "synth", "play the synth instead of samples")
	parser.Bool(&cfg.noSound, "q", "no-sound", "do not open the audio device")
	parser.Bool(&cfg.raw, "R", "raw", "print the control state instead of drawing")
	parser.Int(&cfg.every, "e", "every", "print one of this many ticks in raw mode")
	parser.String(&cfg.logFile, "l", "log", "write the log to a file")

	chk(parser.Parse(), "failed to parse arguments")

	switch {
	case listBackendsCmd.Used:
		fmt.Println(titleStyle.Render("backends"))
		def := input.DefaultBackend()

		for _, backend := range input.Backends {
			star := ' '
			if backend.Name == def {
				star = '*'
			}
			fmt.Printf("- %s %s %c\n", backend.Name, mutedStyle.Render(backend.Kind().String()), star)
		}

		return true

	case listDevicesCmd.Used:
		if cfg.backend == "" {
			cfg.backend = input.DefaultBackend()
		}

		backend, err := input.InitBackend(cfg.backend)
		chk(err, "failed to init backend")
		defer backend.Close()

		devices, err := backend.Devices()
		chk(err, "failed to get devices")

		// We don't really need the default device to be indicated.
		defaultDevice, _ := backend.DefaultDevice()

		fmt.Println(titleStyle.Render(fmt.Sprintf("all devices for %q backend. '*' marks default", cfg.backend)))

		for idx := range devices {
			star := ' '
			if defaultDevice != nil && devices[idx].String() == defaultDevice.String() {
				star = '*'
			}

			fmt.Printf("- %v %c\n", devices[idx], star)
		}

		return true

	case listPresetsCmd.Used:
		fmt.Println(titleStyle.Render("presets"))
		names := make([]string, 0, len(tuning.Presets))
		for name := range tuning.Presets {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			star := ' '
			if name == cfg.preset {
				star = '*'
			}
			fmt.Printf("- %s %c\n", name, star)
		}

		return true

	case dumpTuningCmd.Used:
		t, err := cfg.loadTuning()
		chk(err, "failed to load tuning")

		chk(tuning.Encode(os.Stdout, t), "failed to write tuning")

		return true
	}

	return false
}

func chk(err error, wrap string) {
	if err != nil {
		log.Fatalln(errorStyle.Render(wrap+":"), err)
	}
}
