package ysfpic

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"k8s.io/klog/v2"
)

const (
	overlayMargin  = 5
	overlayLeading = 4
	// lineBreak separates overlay lines, so text can be passed on one command line.
	lineBreak = `\`
)

// Overlay is text painted onto every thumbnail of a run.
type Overlay struct {
	Lines  []string
	Colour color.RGBA
	face   font.Face
}

// NewOverlay prepares text for drawing. It returns nil for empty text. An
// unknown colour or a font that cannot be loaded is an ErrConfig.
func NewOverlay(text string, colour string, fontPath string, size float64) (*Overlay, error) {
	if text == "" {
		return nil, nil
	}

	col, err := ParseColour(colour)
	if err != nil {
		return nil, err
	}

	face, err := loadFont(fontPath, size)
	if err != nil {
		return nil, err
	}

	return &Overlay{
		Lines:  strings.Split(text, lineBreak),
		Colour: col,
		face:   face,
	}, nil
}

// ParseColour resolves a CSS colour name such as "red" or "Dark Green", or
// a #rgb or #rrggbb value.
func ParseColour(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}

	hex, ok := strings.CutPrefix(name, "#")
	if ok && (len(hex) == 3 || len(hex) == 6) {
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
		}
	}

	return color.RGBA{}, fmt.Errorf("%w: unknown colour %q", ErrConfig, s)
}

func loadFont(path string, size float64) (font.Face, error) {
	data := gobold.TTF
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: font: %w", ErrConfig, err)
		}
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse font: %w", ErrConfig, err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: font face: %w", ErrConfig, err)
	}
	return face, nil
}

// Draw paints the overlay onto dst, starting at its top-left corner.
// Text running past the edges is clipped.
func (o *Overlay) Draw(dst draw.Image) {
	if o == nil {
		return
	}

	m := o.face.Metrics()
	origin := dst.Bounds().Min
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(o.Colour),
		Face: o.face,
	}

	y := fixed.I(origin.Y+overlayMargin) + m.Ascent
	for _, line := range o.Lines {
		d.Dot = fixed.Point26_6{X: fixed.I(origin.X + overlayMargin), Y: y}
		d.DrawString(line)
		y += m.Height + fixed.I(overlayLeading)
	}
	klog.V(1).Infof("drew %d overlay lines", len(o.Lines))
}

// Close releases the font face.
func (o *Overlay) Close() error {
	if o == nil {
		return nil
	}
	return o.face.Close()
}
