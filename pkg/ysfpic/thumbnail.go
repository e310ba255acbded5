package ysfpic

import (
	"fmt"
	"image"
	"math"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"k8s.io/klog/v2"
)

// Radios display thumbnails no larger than this.
const (
	ThumbWidth  = 320
	ThumbHeight = 240
)

// fit returns the size of a w×h image shrunk to fit inside bw×bh with its
// aspect ratio kept. Images that already fit keep their size.
func fit(w, h, bw, bh int) (int, int) {
	if w <= bw && h <= bh {
		return w, h
	}

	scale := math.Min(float64(bw)/float64(w), float64(bh)/float64(h))
	x := int(math.Round(float64(w) * scale))
	y := int(math.Round(float64(h) * scale))

	return min(max(x, 1), bw), min(max(y, 1), bh)
}

// Thumbnail writes img to path as a JPEG no larger than ThumbWidth×ThumbHeight,
// painting ov over it, and returns the size of the written file.
func Thumbnail(img image.Image, path string, ov *Overlay, quality int) (int64, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return 0, fmt.Errorf("empty image: %v", b)
	}

	x, y := fit(b.Dx(), b.Dy(), ThumbWidth, ThumbHeight)
	klog.V(1).Infof("creating %dx%d thumb from %dx%d: %s", x, y, b.Dx(), b.Dy(), path)

	var rimg *image.RGBA
	if x == b.Dx() && y == b.Dy() {
		rimg = clone.AsRGBA(img)
	} else {
		rimg = transform.Resize(img, x, y, transform.Lanczos)
	}

	ov.Draw(rimg)

	if err := imgio.Save(path, rimg, imgio.JPEGEncoder(quality)); err != nil {
		return 0, fmt.Errorf("save: %w", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat: %w", err)
	}
	return fi.Size(), nil
}
