package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tstromberg/ysfpic/pkg/serve"
	"github.com/tstromberg/ysfpic/pkg/ysfpic"
	"k8s.io/klog/v2"
)

var (
	inFile     = flag.String("file", "", "convert a single photo")
	inDir      = flag.String("dir", "", "convert every photo in a directory")
	text       = flag.String("text", "", `text to write over the photos, \ starts a new line`)
	colour     = flag.String("colour", "", "text colour: a CSS colour name or #rrggbb (default red)")
	fontPath   = flag.String("font", "", "TrueType font for the text (default Go Bold)")
	fontSize   = flag.Float64("font-size", 0, "font size in points (default 48)")
	quality    = flag.Int("quality", 0, "JPEG quality of the thumbnails (default 75)")
	exiftool   = flag.Bool("exiftool", false, "read metadata with exiftool")
	clean      = flag.Bool("clean", false, "remove PHOTO and QSOLOG from a previous run first")
	configPath = flag.String("config", "", "JSON file with default settings")
	watchFlag  = flag.Bool("watch", false, "watch the input directory for changes and reconvert")
	listen     = flag.Bool("listen", false, "serve the upload form and conversion API via HTTP")
	addr       = flag.String("addr", "localhost:12800", "host:port to bind to in listen mode")
	archiveDir = flag.String("archive", "", "in listen mode, also keep every conversion in this directory")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] CALLSIGN RADIOID OUTDIR\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(flag.CommandLine.Output(), "       %s -listen [-addr host:port] [-archive dir]\n\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()

	c := &ysfpic.Config{}
	if *configPath != "" {
		var err error
		c, err = ysfpic.ReadConfig(*configPath)
		if err != nil {
			klog.Exitf("config: %v", err)
		}
	}
	override(c)

	if *listen {
		listenAndServe(c, *addr, *archiveDir)
		return
	}

	args := flag.Args()
	switch len(args) {
	case 3:
		c.Callsign, c.RadioID, c.OutDir = args[0], args[1], args[2]
	case 1:
		c.OutDir = args[0]
	default:
		flag.Usage()
		klog.Exitf("expected CALLSIGN RADIOID OUTDIR, got %d arguments", len(args))
	}

	if c.Callsign == "" || c.RadioID == "" {
		klog.Exitf("CALLSIGN and RADIOID are required, on the command line or in --config")
	}

	if c.InFile == "" && c.InDir == "" {
		klog.Exitf("--file or --dir is required")
	}

	res, err := ysfpic.Run(c)
	if err != nil {
		klog.Exitf("convert failed: %v", err)
	}

	if *watchFlag {
		if c.InDir == "" {
			klog.Exitf("--watch requires --dir")
		}
		if err := watch(c); err != nil {
			klog.Exitf("watch failed: %v", err)
		}
		return
	}

	if len(res.Entries) == 0 {
		klog.Exitf("no photos converted")
	}
}

// override applies the flags that were set on the command line.
func override(c *ysfpic.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "file":
			c.InFile = *inFile
		case "dir":
			c.InDir = *inDir
		case "text":
			c.Text = *text
		case "colour":
			c.Colour = *colour
		case "font":
			c.FontPath = *fontPath
		case "font-size":
			c.FontSize = *fontSize
		case "quality":
			c.Quality = *quality
		case "exiftool":
			c.ExifTool = *exiftool
		case "clean":
			c.Clean = *clean
		}
	})
}

// listenAndServe serves the upload form via HTTP
func listenAndServe(c *ysfpic.Config, addr string, archive string) {
	s := serve.New(c, archive)

	klog.Infof("Listening on %s...", addr)
	err := http.ListenAndServe(addr, s.Handler())
	if err != nil {
		klog.Exitf("listen failed: %v", err)
	}
}

// watch reconverts the input directory whenever it changes
func watch(c *ysfpic.Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(c.InDir); err != nil {
		return fmt.Errorf("add %s: %w", c.InDir, err)
	}
	klog.Infof("watching %s ...", c.InDir)

	out, err := filepath.Abs(c.OutDir)
	if err != nil {
		return fmt.Errorf("abs: %w", err)
	}

	// Reconvert once a burst of events has settled.
	settle := time.NewTimer(time.Hour)
	settle.Stop()

	c.Clean = true
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			klog.V(1).Infof("event: %v", event)
			if p, err := filepath.Abs(event.Name); err == nil && strings.HasPrefix(p, out) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				settle.Reset(time.Second)
			}
		case <-settle.C:
			if _, err := ysfpic.Run(c); err != nil {
				klog.Errorf("convert failed: %v", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		}
	}
}
