package ysfpic

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/barasher/go-exiftool"
	"github.com/tstromberg/ysfpic/pkg/qsolog"
	"k8s.io/klog/v2"
)

// exiftoolCoord asks exiftool for degrees, minutes and seconds as plain
// numbers so they can be parsed without losing precision.
var exiftoolCoord = "%d %d %.8f"

type exiftoolReader struct {
	et *exiftool.Exiftool
}

func newExiftoolReader() (*exiftoolReader, error) {
	et, err := exiftool.NewExiftool(exiftool.CoordFormant(exiftoolCoord))
	if err != nil {
		return nil, fmt.Errorf("%w: exiftool: %w", ErrConfig, err)
	}
	return &exiftoolReader{et: et}, nil
}

func (r *exiftoolReader) Close() error {
	return r.et.Close()
}

func (r *exiftoolReader) Read(path string) (*Meta, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	m := &Meta{}
	fi := r.et.ExtractMetadata(path)[0]
	if fi.Err != nil {
		klog.V(1).Infof("%s: %v: %v", path, ErrNoMetadata, fi.Err)
		return m, nil
	}

	for k, v := range fi.Fields {
		klog.V(2).Infof("%q=%v", k, v)
	}

	for _, k := range []string{"DateTimeOriginal", "ModifyDate"} {
		ds, err := fi.GetString(k)
		if err != nil {
			continue
		}
		t, err := time.ParseInLocation(exifDate, ds, time.Local)
		if err != nil {
			klog.V(1).Infof("%s: parse time %q: %v", path, ds, err)
			continue
		}
		m.Taken = t
		break
	}

	g, err := exiftoolGeotag(fi)
	if err != nil {
		klog.V(1).Infof("%s: %v", path, err)
	}
	m.GPS = g

	return m, nil
}

func exiftoolGeotag(fi exiftool.FileMetadata) (*qsolog.GeoTag, error) {
	g := &qsolog.GeoTag{}
	for _, f := range []struct {
		name string
		c    *qsolog.Coord
	}{
		{"GPSLatitude", &g.Lat},
		{"GPSLongitude", &g.Long},
	} {
		v, err := fi.GetString(f.name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrNoGeotag, f.name, err)
		}
		ref, _ := fi.GetString(f.name + "Ref")

		*f.c, err = parseCoord(v, ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrNoGeotag, f.name, err)
		}
	}
	return g, nil
}

// parseCoord parses "D M S" as printed with exiftoolCoord, optionally
// followed by a hemisphere. ref may be a letter or a word such as "North".
func parseCoord(v string, ref string) (qsolog.Coord, error) {
	c := qsolog.Coord{}
	fields := strings.Fields(v)
	if len(fields) < 3 {
		return c, fmt.Errorf("want 3 values, got %q", v)
	}
	if ref == "" && len(fields) > 3 {
		ref = fields[3]
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return c, fmt.Errorf("no reference for %q", v)
	}
	c.Ref = string(unicode.ToUpper(rune(ref[0])))

	rats := make([]qsolog.Rat, 3)
	for i := range rats {
		r, ok := new(big.Rat).SetString(fields[i])
		if !ok {
			return c, fmt.Errorf("bad number %q", fields[i])
		}
		if !r.Num().IsInt64() || !r.Denom().IsInt64() {
			return c, fmt.Errorf("number %q out of range", fields[i])
		}
		rats[i] = qsolog.Rat{Num: r.Num().Int64(), Den: r.Denom().Int64()}
	}
	c.Deg, c.Min, c.Sec = rats[0], rats[1], rats[2]

	return c, nil
}
