package ysfpic

import (
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestParseColour(t *testing.T) {
	c := qt.New(t)

	for in, want := range map[string]color.RGBA{
		"red":        {R: 0xff, A: 0xff},
		"Red":        {R: 0xff, A: 0xff},
		"Dark Green": {G: 0x64, A: 0xff},
		"#0f0":       {G: 0xff, A: 0xff},
		"#336699":    {R: 0x33, G: 0x66, B: 0x99, A: 0xff},
	} {
		got, err := ParseColour(in)
		c.Assert(err, qt.IsNil, qt.Commentf("%s", in))
		c.Assert(got, qt.Equals, want, qt.Commentf("%s", in))
	}

	for _, in := range []string{"", "notacolour", "#12", "#gggggg", "#1234567"} {
		_, err := ParseColour(in)
		c.Assert(err, qt.ErrorIs, ErrConfig, qt.Commentf("%s", in))
	}
}

func TestNewOverlay(t *testing.T) {
	c := qt.New(t)

	ov, err := NewOverlay("", "red", "", DefaultFontSize)
	c.Assert(err, qt.IsNil)
	c.Assert(ov, qt.IsNil)

	ov, err = NewOverlay(`G4ABC\JO01`, "white", "", DefaultFontSize)
	c.Assert(err, qt.IsNil)
	defer ov.Close()
	c.Assert(ov.Lines, qt.DeepEquals, []string{"G4ABC", "JO01"})
	c.Assert(ov.Colour, qt.Equals, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})

	_, err = NewOverlay("hi", "blurple", "", DefaultFontSize)
	c.Assert(err, qt.ErrorIs, ErrConfig)

	_, err = NewOverlay("hi", "red", filepath.Join(c.TempDir(), "missing.ttf"), DefaultFontSize)
	c.Assert(err, qt.ErrorIs, ErrConfig)

	bad := filepath.Join(c.TempDir(), "bad.ttf")
	c.Assert(os.WriteFile(bad, []byte("not a font"), 0o644), qt.IsNil)
	_, err = NewOverlay("hi", "red", bad, DefaultFontSize)
	c.Assert(err, qt.ErrorIs, ErrConfig)
}

func countColour(img *image.RGBA, r image.Rectangle, want color.RGBA) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) == want {
				n++
			}
		}
	}
	return n
}

func TestOverlayDraw(t *testing.T) {
	c := qt.New(t)

	black := color.RGBA{A: 0xff}
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, ThumbWidth, ThumbHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	ov, err := NewOverlay(`HELLO\WORLD`, "white", "", DefaultFontSize)
	c.Assert(err, qt.IsNil)
	defer ov.Close()
	ov.Draw(img)

	// Both lines sit in the top left corner below the margin.
	c.Assert(countColour(img, image.Rect(0, 0, ThumbWidth, 5), white), qt.Equals, 0)
	c.Assert(countColour(img, image.Rect(0, 0, 5, ThumbHeight), white), qt.Equals, 0)
	c.Assert(countColour(img, image.Rect(5, 5, ThumbWidth, 55), white) > 0, qt.IsTrue)
	c.Assert(countColour(img, image.Rect(5, 60, ThumbWidth, 110), white) > 0, qt.IsTrue)
	c.Assert(countColour(img, image.Rect(0, 130, ThumbWidth, ThumbHeight), black), qt.Equals, ThumbWidth*(ThumbHeight-130))

	var none *Overlay
	none.Draw(img)
	c.Assert(none.Close(), qt.IsNil)
}
