package ysfpic

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/tstromberg/ysfpic/pkg/qsolog"
	"k8s.io/klog/v2"
)

// Encode converts the photo at path into the seq'th thumbnail of the run
// and returns its log entry. A PHOTO directory that cannot be created is
// an ErrOutput; any other error only concerns this photo, and leaves no
// thumbnail behind.
func Encode(c *Config, mr MetaReader, ov *Overlay, path string, seq int, now time.Time) (*qsolog.Entry, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	m, err := mr.Read(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}

	taken := m.Taken
	if taken.IsZero() {
		klog.V(1).Infof("%s: no capture time, using now", path)
		taken = now
	}

	photoDir := filepath.Join(c.OutDir, qsolog.PhotoDir)
	if err := os.MkdirAll(photoDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: mkdir: %w", ErrOutput, err)
	}

	name := qsolog.PhotoName(c.RadioID, seq)
	out := filepath.Join(photoDir, name)

	size, err := Thumbnail(img, out, ov, c.quality())
	if err == nil && size > math.MaxUint32 {
		err = fmt.Errorf("thumbnail is %d bytes", size)
	}
	if err != nil {
		if rerr := os.Remove(out); rerr != nil && !os.IsNotExist(rerr) {
			klog.Warningf("unable to remove %s: %v", out, rerr)
		}
		return nil, fmt.Errorf("thumbnail: %w", err)
	}

	return &qsolog.Entry{
		RadioID:     c.RadioID,
		Callsign:    c.Callsign,
		Entered:     now.Add(-time.Hour),
		Sent:        now,
		Taken:       taken,
		Description: filepath.Base(path),
		PhotoSize:   uint32(size),
		PhotoName:   name,
		GPS:         qsolog.EncodeGPS(m.GPS),
	}, nil
}
