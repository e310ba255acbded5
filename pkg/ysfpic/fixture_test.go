package ysfpic

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"testing"
	"time"
)

const (
	tiffASCII    = 2
	tiffLong     = 4
	tiffRational = 5
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiEntry(tag uint16, s string) ifdEntry {
	return ifdEntry{tag: tag, typ: tiffASCII, count: uint32(len(s) + 1), data: append([]byte(s), 0)}
}

func longEntry(tag uint16, v uint32) ifdEntry {
	return ifdEntry{tag: tag, typ: tiffLong, count: 1, data: binary.BigEndian.AppendUint32(nil, v)}
}

// rationalEntry takes numerator/denominator pairs.
func rationalEntry(tag uint16, v ...uint32) ifdEntry {
	var b []byte
	for _, x := range v {
		b = binary.BigEndian.AppendUint32(b, x)
	}
	return ifdEntry{tag: tag, typ: tiffRational, count: uint32(len(v) / 2), data: b}
}

func ifdSize(es []ifdEntry) int {
	n := 2 + 12*len(es) + 4
	for _, e := range es {
		if len(e.data) > 4 {
			n += len(e.data) + len(e.data)%2
		}
	}
	return n
}

// appendIFD appends es to the TIFF buffer b, values that do not fit an entry
// going right after it.
func appendIFD(b []byte, es []ifdEntry) []byte {
	data := len(b) + 2 + 12*len(es) + 4
	var extra []byte

	b = binary.BigEndian.AppendUint16(b, uint16(len(es)))
	for _, e := range es {
		b = binary.BigEndian.AppendUint16(b, e.tag)
		b = binary.BigEndian.AppendUint16(b, e.typ)
		b = binary.BigEndian.AppendUint32(b, e.count)
		if len(e.data) <= 4 {
			v := make([]byte, 4)
			copy(v, e.data)
			b = append(b, v...)
			continue
		}
		b = binary.BigEndian.AppendUint32(b, uint32(data+len(extra)))
		extra = append(extra, e.data...)
		if len(e.data)%2 == 1 {
			extra = append(extra, 0)
		}
	}
	b = binary.BigEndian.AppendUint32(b, 0)
	return append(b, extra...)
}

// exifOpts describes the EXIF block of a test photo. Empty fields are left out.
type exifOpts struct {
	taken   string
	latRef  string
	lat     []uint32
	longRef string
	long    []uint32
}

var gpsPittsburgh = exifOpts{
	taken:   "2023:04:05 06:07:08",
	latRef:  "N",
	lat:     []uint32{40, 1, 26, 1, 463, 10},
	longRef: "W",
	long:    []uint32{79, 1, 58, 1, 551, 10},
}

var takenPittsburgh = time.Date(2023, time.April, 5, 6, 7, 8, 0, time.Local)

// tiff returns a big-endian TIFF structure holding o.
func (o exifOpts) tiff() []byte {
	var exifIFD, gpsIFD []ifdEntry
	if o.taken != "" {
		exifIFD = append(exifIFD, asciiEntry(0x9003, o.taken))
	}
	if o.latRef != "" {
		gpsIFD = append(gpsIFD, asciiEntry(1, o.latRef))
	}
	if o.lat != nil {
		gpsIFD = append(gpsIFD, rationalEntry(2, o.lat...))
	}
	if o.longRef != "" {
		gpsIFD = append(gpsIFD, asciiEntry(3, o.longRef))
	}
	if o.long != nil {
		gpsIFD = append(gpsIFD, rationalEntry(4, o.long...))
	}

	var ifd0 []ifdEntry
	if exifIFD != nil {
		ifd0 = append(ifd0, longEntry(0x8769, 0))
	}
	if gpsIFD != nil {
		ifd0 = append(ifd0, longEntry(0x8825, 0))
	}
	if ifd0 == nil {
		ifd0 = append(ifd0, asciiEntry(0x010f, "ysfpic"))
	}

	off := 8 + ifdSize(ifd0)
	i := 0
	if exifIFD != nil {
		ifd0[i] = longEntry(0x8769, uint32(off))
		off += ifdSize(exifIFD)
		i++
	}
	if gpsIFD != nil {
		ifd0[i] = longEntry(0x8825, uint32(off))
	}

	b := []byte{'M', 'M', 0x00, 0x2a, 0x00, 0x00, 0x00, 0x08}
	b = appendIFD(b, ifd0)
	if exifIFD != nil {
		b = appendIFD(b, exifIFD)
	}
	if gpsIFD != nil {
		b = appendIFD(b, gpsIFD)
	}
	return b
}

// app1 wraps o as a JPEG APP1 segment.
func (o exifOpts) app1() []byte {
	t := o.tiff()
	b := []byte{0xff, 0xe1}
	b = binary.BigEndian.AppendUint16(b, uint16(2+6+len(t)))
	b = append(b, "Exif\x00\x00"...)
	return append(b, t...)
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	return img
}

// writeJPEG writes a w×h test photo to path, with an EXIF segment when o is not nil.
func writeJPEG(t testing.TB, path string, w, h int, o *exifOpts) {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}

	b := buf.Bytes()
	if o != nil {
		out := append([]byte{}, b[:2]...)
		out = append(out, o.app1()...)
		b = append(out, b[2:]...)
	}

	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readJPEGBounds(t testing.TB, path string) image.Rectangle {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return image.Rect(0, 0, cfg.Width, cfg.Height)
}
