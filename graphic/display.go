package graphic

import (
	"context"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/noriah/handwave/control"
	"github.com/noriah/handwave/tuning"
	"github.com/pkg/errors"
)

// InfoText is shown by the info overlay.
var InfoText = []string{
	"handwave",
	"",
	"Move in front of the sensor.",
	"Left and right steer the wave,",
	"height picks the note,",
	"an open hand or a loud sound plays stronger.",
	"Two hands play two instruments.",
	"",
	"i / esc  close   p  pause   q  quit",
}

var styleStatus = tcell.StyleDefault.
	Foreground(tcell.ColorGray).
	Background(tcell.ColorBlack)

// Display draws the wave on the terminal.
type Display struct {
	cfg tuning.Wave

	screen  tcell.Screen
	canvas  *Canvas
	restore func()

	mu       sync.Mutex
	notice   string
	showInfo bool
	paused   bool

	// Gesture is called once, on the first space or enter key. It stands in
	// for the user action that unlocks sound.
	Gesture     func()
	gestureOnce sync.Once

	// Pause toggles the sound on the p key and returns whether it is now
	// paused.
	Pause func() (bool, error)
}

// NewDisplay returns a display that is not yet attached to a terminal.
func NewDisplay(cfg tuning.Wave) *Display {
	return &Display{
		cfg:    cfg,
		canvas: NewCanvas(0, 0),
	}
}

// Init opens the terminal.
func (d *Display) Init() error {
	restore, err := normalizeTerminal()
	if err != nil {
		return errors.Wrap(err, "failed to normalize terminal")
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		restore()
		return errors.Wrap(err, "failed to create screen")
	}

	if err := d.InitScreen(screen); err != nil {
		restore()
		return err
	}

	d.restore = restore
	return nil
}

// InitScreen attaches the display to an existing screen.
func (d *Display) InitScreen(screen tcell.Screen) error {
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "failed to init screen")
	}

	screen.DisableMouse()
	screen.HideCursor()

	d.screen = screen
	return nil
}

// Start starts the event poller. The returned context ends when the user
// quits.
func (d *Display) Start(ctx context.Context) context.Context {
	var dispCtx, dispCancel = context.WithCancel(ctx)
	go eventPoller(dispCtx, dispCancel, d)
	return dispCtx
}

// eventPoller will take events and do things with them
func eventPoller(ctx context.Context, fn context.CancelFunc, d *Display) {
	defer fn()

	// wake PollEvent when the context ends first
	go func() {
		<-ctx.Done()
		d.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	for {
		// first check if we need to exit
		select {
		case <-ctx.Done():
			return
		default:
		}

		var ev = d.screen.PollEvent()
		if ev == nil {
			return
		}

		if d.handle(ev) {
			return
		}
	}
}

// handle applies one event and reports whether the user quit.
func (d *Display) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return true

			case 'i', 'I':
				d.mu.Lock()
				d.showInfo = !d.showInfo
				d.mu.Unlock()

			case 'p', 'P':
				d.togglePause()

			case ' ':
				d.gesture()
			}

		case tcell.KeyEnter:
			d.gesture()

		case tcell.KeyEscape:
			d.mu.Lock()
			defer d.mu.Unlock()

			if !d.showInfo {
				return true
			}
			d.showInfo = false

		case tcell.KeyCtrlC:
			return true
		}

	case *tcell.EventResize:
		d.screen.Sync()
	}

	return false
}

func (d *Display) gesture() {
	d.gestureOnce.Do(func() {
		if d.Gesture != nil {
			d.Gesture()
		}
	})
}

func (d *Display) togglePause() {
	if d.Pause == nil {
		return
	}

	paused, err := d.Pause()
	if err != nil {
		d.Notice("pause: " + err.Error())
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = paused
}

// Notice sets the status line message. An empty message clears it.
func (d *Display) Notice(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notice = msg
}

// Stop display not work
func (d *Display) Stop() error {
	return nil
}

// Close will stop display and clean up the terminal
func (d *Display) Close() error {
	if d.screen != nil {
		d.screen.Fini()
	}

	if d.restore != nil {
		d.restore()
	}

	return nil
}

// Write draws one frame of the wave for s at phase.
func (d *Display) Write(s control.State, phase float64) error {
	if d.screen == nil {
		return errors.New("display not initialized")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// We dont keep track of the size because we have to assume that the
	// user changed the window, always.
	cols, rows := d.screen.Size()

	// the last row is the status line
	d.canvas.Resize(cols, rows-1)

	bg := Background(s.Hue)
	w, h := float64(d.canvas.Width()), float64(d.canvas.Height())

	for _, st := range Layers(ParamsFrom(s), phase, w, h, d.cfg) {
		// the layer widths are given for a surface about 800 dots high
		thick := int(math.Round(st.Width * h / 800 * 2))
		d.canvas.Stroke(st.Points, thick, bg.BlendRgb(st.Color, st.Alpha))
	}

	base := tcell.StyleDefault.Background(tcellColor(bg))

	for row := 0; row < rows-1; row++ {
		for col := 0; col < cols; col++ {
			r, c, ok := d.canvas.Cell(col, row)
			if !ok {
				d.screen.SetContent(col, row, ' ', nil, base)
				continue
			}
			d.screen.SetContent(col, row, r, nil, base.Foreground(tcellColor(c)))
		}
	}

	d.drawStatus(s, cols, rows)

	if d.showInfo {
		d.drawInfo(cols, rows)
	}

	d.screen.Show()

	return nil
}

func (d *Display) drawStatus(s control.State, cols, rows int) {
	if rows < 1 {
		return
	}

	y := rows - 1
	for x := 0; x < cols; x++ {
		d.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	msg := d.notice
	switch {
	case msg != "":
	case d.paused:
		msg = "sound paused, p resumes"
	default:
		msg = "i info  p pause  q quit"
	}

	right := s.Note
	if right != "" {
		right += " " + s.Side.String()
	}

	drawText(d.screen, 1, y, msg, styleStatus)
	drawText(d.screen, cols-len(right)-1, y, right, styleStatus)
}

func (d *Display) drawInfo(cols, rows int) {
	width := 0
	for _, line := range InfoText {
		width = max(width, len(line))
	}
	width += 4

	height := len(InfoText) + 2
	x0, y0 := (cols-width)/2, (rows-height)/2

	box := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkSlateGray)

	for y := y0; y < y0+height; y++ {
		for x := x0; x < x0+width; x++ {
			d.screen.SetContent(x, y, ' ', nil, box)
		}
	}

	for i, line := range InfoText {
		drawText(d.screen, x0+2, y0+1+i, line, box)
	}
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		if x >= 0 {
			screen.SetContent(x, y, r, nil, style)
		}
		x++
	}
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
