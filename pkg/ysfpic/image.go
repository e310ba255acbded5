package ysfpic

import (
	"time"

	"github.com/tstromberg/ysfpic/pkg/qsolog"
)

// Meta is the metadata of a source photo that ends up in its log entry.
type Meta struct {
	// Taken is zero when the photo carries no usable capture time.
	Taken time.Time
	// GPS is nil when the photo carries no usable geotag.
	GPS *qsolog.GeoTag
}

// Failure is a photo that could not be converted.
type Failure struct {
	Path string
	Err  error
}

// Result describes a finished run.
type Result struct {
	Entries []*qsolog.Entry
	Failed  []Failure
}
