// Package ysfpic converts photos into the photo log read by YSF radios.
package ysfpic

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	DefaultColour   = "red"
	DefaultQuality  = 75
	DefaultFontSize = 48
)

var (
	// ErrConfig means the run cannot start: bad arguments, colour or font.
	ErrConfig = errors.New("invalid configuration")
	// ErrOutput means the output tree cannot be written.
	ErrOutput = errors.New("output not writable")
)

// Config holds configuration for a conversion run.
type Config struct {
	Callsign string `json:"callsign"`
	RadioID  string `json:"radioid"`

	OutDir string `json:"-"`
	InFile string `json:"-"`
	InDir  string `json:"-"`

	Text     string  `json:"text"`
	Colour   string  `json:"colour"`
	FontPath string  `json:"font"`
	FontSize float64 `json:"fontSize"`
	Quality  int     `json:"quality"`

	// ExifTool reads metadata with an exiftool process instead of the built-in decoder.
	ExifTool bool `json:"exiftool"`
	// Clean removes the PHOTO and QSOLOG directories of a previous run first.
	Clean bool `json:"-"`

	Reporter Reporter         `json:"-"`
	Now      func() time.Time `json:"-"`
}

// ReadConfig parses a JSON config file.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfig, path, err)
	}

	c := &Config{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrConfig, path, err)
	}
	return c, nil
}

func (c *Config) validate() error {
	switch {
	case c.Callsign == "":
		return fmt.Errorf("%w: callsign is required", ErrConfig)
	case c.RadioID == "":
		return fmt.Errorf("%w: radio id is required", ErrConfig)
	case c.OutDir == "":
		return fmt.Errorf("%w: output directory is required", ErrConfig)
	case c.InFile == "" && c.InDir == "":
		return fmt.Errorf("%w: an input file or directory is required", ErrConfig)
	case c.Quality < 0 || c.Quality > 100:
		return fmt.Errorf("%w: quality %d out of range", ErrConfig, c.Quality)
	case c.FontSize < 0:
		return fmt.Errorf("%w: font size %v out of range", ErrConfig, c.FontSize)
	}
	return nil
}

func (c *Config) colour() string {
	if c.Colour == "" {
		return DefaultColour
	}
	return c.Colour
}

func (c *Config) quality() int {
	if c.Quality == 0 {
		return DefaultQuality
	}
	return c.Quality
}

func (c *Config) fontSize() float64 {
	if c.FontSize == 0 {
		return DefaultFontSize
	}
	return c.FontSize
}

func (c *Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Config) reporter() Reporter {
	if c.Reporter != nil {
		return c.Reporter
	}
	return klogReporter{}
}
