package input

// ChannelOrder describes the byte layout of a pixel.
type ChannelOrder int

// Channel orders.
const (
	OrderBGR ChannelOrder = iota
	OrderRGB
	OrderBGRA
	OrderRGBA
	OrderGray
)

// Channels returns the bytes per pixel.
func (o ChannelOrder) Channels() int {
	switch o {
	case OrderBGRA, OrderRGBA:
		return 4
	case OrderGray:
		return 1
	default:
		return 3
	}
}

// Frame is one packed 8 bit video frame.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
	Order  ChannelOrder
}

// Valid reports whether the frame has a non-zero area and enough pixel data.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0 &&
		len(f.Pix) >= f.Width*f.Height*f.Order.Channels()
}

// Luma returns the luminance (0.299R + 0.587G + 0.114B) of pixel x, y in
// [0, 255]. The frame must be valid.
func (f Frame) Luma(x, y int) float64 {
	ch := f.Order.Channels()
	i := (y*f.Width + x) * ch

	switch f.Order {
	case OrderGray:
		return float64(f.Pix[i])
	case OrderRGB, OrderRGBA:
		return 0.299*float64(f.Pix[i]) + 0.587*float64(f.Pix[i+1]) + 0.114*float64(f.Pix[i+2])
	default:
		return 0.299*float64(f.Pix[i+2]) + 0.587*float64(f.Pix[i+1]) + 0.114*float64(f.Pix[i])
	}
}

// Point is a normalized image coordinate. (0, 0) is the top left corner.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Hand is the ordered landmark set of one detected hand.
type Hand []Point

// Landmarks is every hand reported by one detector delivery.
type Landmarks []Hand

// Mirror flips every point horizontally, for front facing cameras.
func (l Landmarks) Mirror() Landmarks {
	out := make(Landmarks, len(l))
	for i, hand := range l {
		h := make(Hand, len(hand))
		for j, p := range hand {
			h[j] = Point{X: 1 - p.X, Y: p.Y}
		}
		out[i] = h
	}
	return out
}
