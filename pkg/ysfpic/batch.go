package ysfpic

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tstromberg/ysfpic/pkg/qsolog"
	"k8s.io/klog/v2"
)

// Reporter is told about the progress of a run.
type Reporter interface {
	Start(n int)
	Converted(path string, e *qsolog.Entry)
	Failed(path string, err error)
	Done(r *Result)
}

type klogReporter struct{}

func (klogReporter) Start(n int) {
	klog.Infof("converting %d photos ...", n)
}

func (klogReporter) Converted(path string, e *qsolog.Entry) {
	klog.Infof("%s -> %s (%d bytes)", path, e.PhotoName, e.PhotoSize)
}

func (klogReporter) Failed(path string, err error) {
	klog.Errorf("cannot convert %s: %v", path, err)
}

func (klogReporter) Done(r *Result) {
	klog.Infof("converted %d photos, %d failed", len(r.Entries), len(r.Failed))
}

// Run converts every input photo of c into c.OutDir and writes the photo
// log for the ones that succeeded.
func Run(c *Config) (*Result, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	ov, err := NewOverlay(c.Text, c.colour(), c.FontPath, c.fontSize())
	if err != nil {
		return nil, err
	}
	defer ov.Close()

	mr, err := NewMetaReader(c)
	if err != nil {
		return nil, err
	}
	defer mr.Close()

	paths, err := Inputs(c)
	if err != nil {
		return nil, err
	}

	if c.Clean {
		for _, d := range []string{qsolog.PhotoDir, qsolog.LogDir} {
			p := filepath.Join(c.OutDir, d)
			klog.V(1).Infof("removing %s", p)
			if err := os.RemoveAll(p); err != nil {
				return nil, fmt.Errorf("%w: clean: %w", ErrOutput, err)
			}
		}
	}

	rep := c.reporter()
	rep.Start(len(paths))

	res := &Result{}
	var dir qsolog.Directory
	for _, p := range paths {
		if dir.Len() >= qsolog.MaxEntries {
			return res, fmt.Errorf("%w: %s: %w", ErrOutput, p, qsolog.ErrDirectoryFull)
		}

		e, err := Encode(c, mr, ov, p, dir.Len()+1, c.now())
		if err != nil {
			if errors.Is(err, ErrOutput) || errors.Is(err, ErrConfig) {
				return res, fmt.Errorf("%s: %w", p, err)
			}
			res.Failed = append(res.Failed, Failure{Path: p, Err: err})
			rep.Failed(p, err)
			continue
		}

		if err := dir.Add(e); err != nil {
			return res, fmt.Errorf("%w: add %s: %w", ErrOutput, p, err)
		}
		res.Entries = append(res.Entries, e)
		rep.Converted(p, e)
	}

	if err := dir.Save(c.OutDir, nil); err != nil {
		return res, fmt.Errorf("%w: save: %w", ErrOutput, err)
	}

	rep.Done(res)
	return res, nil
}
