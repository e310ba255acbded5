package ysfpic

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// Inputs returns the photos a run converts, in order: InFile, then the
// regular files directly inside InDir sorted by name. Dotfiles and
// subdirectories are skipped.
func Inputs(c *Config) ([]string, error) {
	found := []string{}
	if c.InFile != "" {
		found = append(found, c.InFile)
	}

	if c.InDir == "" {
		return found, nil
	}

	des, err := godirwalk.ReadDirents(c.InDir, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: read dir: %w", ErrConfig, err)
	}
	sort.Sort(des)

	for _, de := range des {
		name := de.Name()
		if name[0] == '.' {
			continue
		}

		path := filepath.Join(c.InDir, name)
		switch {
		case de.IsRegular():
		case de.IsSymlink():
			fi, err := os.Stat(path)
			if err != nil || !fi.Mode().IsRegular() {
				klog.V(1).Infof("skipping %s: not a link to a regular file", path)
				continue
			}
		default:
			klog.V(1).Infof("skipping %s: not a regular file", path)
			continue
		}

		klog.V(1).Infof("found %s", path)
		found = append(found, path)
	}

	return found, nil
}
