package ysfpic

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/tstromberg/ysfpic/pkg/qsolog"
	"k8s.io/klog/v2"
)

var (
	// ErrNoMetadata means a photo carries no EXIF data at all.
	ErrNoMetadata = errors.New("no EXIF metadata found")
	// ErrNoGeotag means a photo has EXIF data but no complete geotag.
	ErrNoGeotag = errors.New("no EXIF geotagging found")
)

var exifDate = "2006:01:02 15:04:05"

// MetaReader extracts capture time and geotag from a photo. Read only fails
// when the file cannot be read; missing or broken metadata yields a zero
// Taken and a nil GPS.
type MetaReader interface {
	Read(path string) (*Meta, error)
	Close() error
}

// NewMetaReader returns the metadata backend selected by c.
func NewMetaReader(c *Config) (MetaReader, error) {
	if c.ExifTool {
		r, err := newExiftoolReader()
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return exifReader{}, nil
}

// exifReader decodes EXIF in-process with goexif.
type exifReader struct{}

func (exifReader) Close() error { return nil }

func (exifReader) Read(path string) (*Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	m := &Meta{}
	x, err := decodeExif(f)
	if err != nil {
		klog.V(1).Infof("%s: %v", path, err)
		return m, nil
	}

	m.Taken, err = taken(x)
	if err != nil {
		klog.V(1).Infof("%s: %v", path, err)
	}

	m.GPS, err = geotag(x)
	if err != nil {
		klog.V(1).Infof("%s: %v", path, err)
	}

	return m, nil
}

// decodeExif maps every way of not finding usable EXIF to ErrNoMetadata.
func decodeExif(r io.Reader) (x *exif.Exif, err error) {
	defer func() {
		if p := recover(); p != nil {
			x, err = nil, fmt.Errorf("%w: decoder panic: %v", ErrNoMetadata, p)
		}
	}()

	x, err = exif.Decode(r)
	if x == nil {
		return nil, fmt.Errorf("%w: %w", ErrNoMetadata, err)
	}
	if err != nil && exif.IsCriticalError(err) {
		return nil, fmt.Errorf("%w: %w", ErrNoMetadata, err)
	}
	return x, nil
}

func taken(x *exif.Exif) (time.Time, error) {
	var last error
	for _, name := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		tag, err := x.Get(name)
		if err != nil {
			last = err
			continue
		}

		s, err := tag.StringVal()
		if err != nil {
			last = err
			continue
		}

		t, err := time.ParseInLocation(exifDate, s, time.Local)
		if err != nil {
			last = fmt.Errorf("parse time %q: %w", s, err)
			continue
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("no capture time: %w", last)
}

func geotag(x *exif.Exif) (*qsolog.GeoTag, error) {
	if _, err := x.Get(exif.GPSInfoIFDPointer); err != nil {
		return nil, ErrNoGeotag
	}

	lat, err := coord(x, exif.GPSLatitude, exif.GPSLatitudeRef)
	if err != nil {
		return nil, fmt.Errorf("%w: latitude: %w", ErrNoGeotag, err)
	}

	long, err := coord(x, exif.GPSLongitude, exif.GPSLongitudeRef)
	if err != nil {
		return nil, fmt.Errorf("%w: longitude: %w", ErrNoGeotag, err)
	}

	return &qsolog.GeoTag{Lat: lat, Long: long}, nil
}

func coord(x *exif.Exif, val exif.FieldName, ref exif.FieldName) (qsolog.Coord, error) {
	c := qsolog.Coord{}

	rt, err := x.Get(ref)
	if err != nil {
		return c, err
	}
	c.Ref, err = rt.StringVal()
	if err != nil {
		return c, fmt.Errorf("ref: %w", err)
	}

	vt, err := x.Get(val)
	if err != nil {
		return c, err
	}
	if vt.Count < 3 {
		return c, fmt.Errorf("want 3 values, got %d", vt.Count)
	}

	rats := make([]qsolog.Rat, 3)
	for i := range rats {
		num, den, err := vt.Rat2(i)
		if err != nil {
			return c, fmt.Errorf("value %d: %w", i, err)
		}
		rats[i] = qsolog.Rat{Num: num, Den: den}
	}
	c.Deg, c.Min, c.Sec = rats[0], rats[1], rats[2]

	return c, nil
}
