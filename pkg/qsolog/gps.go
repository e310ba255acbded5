package qsolog

import (
	"fmt"
	"math"
	"strings"
)

// GPSSize is the size of the encoded GPS field.
const GPSSize = 20

var blankGPS = strings.Repeat(" ", GPSSize)

// Rat is an EXIF rational.
type Rat struct {
	Num int64
	Den int64
}

// trunc returns r*scale rounded toward zero.
func (r Rat) trunc(scale int64) (int64, bool) {
	if r.Den <= 0 || r.Num < 0 || r.Num > math.MaxInt64/scale {
		return 0, false
	}
	return r.Num * scale / r.Den, true
}

// Coord is one coordinate as EXIF stores it: degrees, minutes and seconds
// plus a hemisphere reference such as "N" or "W".
type Coord struct {
	Ref string
	Deg Rat
	Min Rat
	Sec Rat
}

// GeoTag is the position a photo was taken at.
type GeoTag struct {
	Lat  Coord
	Long Coord
}

// encode formats c as RDDDMMSSSS, SSSS being hundredths of a second.
func (c Coord) encode(refs string, maxDeg int64) (string, bool) {
	ref := strings.ToUpper(strings.TrimSpace(c.Ref))
	if ref == "" || !strings.ContainsRune(refs, rune(ref[0])) {
		return "", false
	}

	d, okD := c.Deg.trunc(1)
	m, okM := c.Min.trunc(1)
	s, okS := c.Sec.trunc(100)
	if !okD || !okM || !okS || d > maxDeg || m >= 60 || s >= 10000 {
		return "", false
	}

	return fmt.Sprintf("%c%03d%02d%04d", ref[0], d, m, s), true
}

// EncodeGPS returns the 20-character GPS field for g: latitude then
// longitude, each as hemisphere letter, 3-digit degrees, 2-digit minutes
// and 4-digit hundredths of seconds. A nil, incomplete or out of range
// geotag encodes as 20 spaces.
func EncodeGPS(g *GeoTag) string {
	if g == nil {
		return blankGPS
	}

	lat, ok := g.Lat.encode("NS", 90)
	if !ok {
		return blankGPS
	}

	long, ok := g.Long.encode("EW", 180)
	if !ok {
		return blankGPS
	}

	return lat + long
}
