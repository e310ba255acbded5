// Package serve provides HTTP handlers for converting uploaded photos.
package serve

import (
	"archive/zip"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/otiai10/copy"
	"github.com/tstromberg/ysfpic/pkg/ysfpic"
	"k8s.io/klog/v2"
)

//go:embed index.html
var indexHTML []byte

// maxUpload bounds the multipart form kept in memory.
const maxUpload = 32 << 20

// ArchiveTimeFormat names the per-request archive directories.
var ArchiveTimeFormat = "20060102-150405.000000000"

// Server is a server for the upload form and conversion API.
type Server struct {
	c          *ysfpic.Config
	archiveDir string
}

// New creates a new server. Requests start from a copy of c, and their
// output is also kept under archiveDir unless it is empty.
func New(c *ysfpic.Config, archiveDir string) *Server {
	if c == nil {
		c = &ysfpic.Config{}
	}
	return &Server{
		c:          c,
		archiveDir: archiveDir,
	}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.IndexHandler())
	mux.HandleFunc("/api", s.ConvertHandler())
	return mux
}

// IndexHandler serves the upload form.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(indexHTML); err != nil {
			klog.Warningf("write index: %v", err)
		}
	}
}

// ConvertHandler converts the uploaded "img" with the form's callsign,
// radioid, text and colour, and replies with the output tree as a zip file.
func (s *Server) ConvertHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := r.ParseMultipartForm(maxUpload); err != nil {
			http.Error(w, fmt.Sprintf("bad form: %v", err), http.StatusBadRequest)
			return
		}

		tmp, err := os.MkdirTemp("", "ysfpic")
		if err != nil {
			klog.Errorf("mkdir temp: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer os.RemoveAll(tmp)

		c, err := s.config(r, tmp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		klog.Infof("converting %s for %s/%s", filepath.Base(c.InFile), c.Callsign, c.RadioID)
		res, err := ysfpic.Run(c)
		switch {
		case errors.Is(err, ysfpic.ErrConfig):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			klog.Errorf("run: %v", err)
			http.Error(w, "conversion failed", http.StatusInternalServerError)
			return
		case len(res.Entries) == 0:
			msg := "no photo converted"
			if len(res.Failed) > 0 {
				msg = fmt.Sprintf("%s: %v", msg, res.Failed[0].Err)
			}
			http.Error(w, msg, http.StatusUnprocessableEntity)
			return
		}

		if s.archiveDir != "" {
			dest := filepath.Join(s.archiveDir, "output"+time.Now().Format(ArchiveTimeFormat))
			if err := copy.Copy(c.OutDir, dest); err != nil {
				klog.Warningf("archive to %s: %v", dest, err)
			} else {
				klog.V(1).Infof("archived to %s", dest)
			}
		}

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="ysfpic.zip"`)
		if err := writeZip(w, c.OutDir); err != nil {
			klog.Errorf("zip: %v", err)
		}
	}
}

// config builds the request's run configuration, saving the upload below tmp.
func (s *Server) config(r *http.Request, tmp string) (*ysfpic.Config, error) {
	c := *s.c
	c.Reporter = nil
	c.Clean = false
	c.InDir = ""
	c.OutDir = filepath.Join(tmp, "out")

	for k, dst := range map[string]*string{
		"callsign": &c.Callsign,
		"radioid":  &c.RadioID,
		"text":     &c.Text,
		"colour":   &c.Colour,
	} {
		if v := strings.TrimSpace(r.FormValue(k)); v != "" {
			*dst = v
		}
	}

	if c.Callsign == "" {
		return nil, errors.New("callsign is required")
	}
	if c.RadioID == "" {
		return nil, errors.New("radioid is required")
	}

	f, fh, err := r.FormFile("img")
	if err != nil {
		return nil, fmt.Errorf("img: %w", err)
	}
	defer f.Close()

	name := filepath.Base(filepath.Clean("/" + fh.Filename))
	if name == "/" || name == "." {
		name = "upload.jpg"
	}

	in := filepath.Join(tmp, "in")
	if err := os.MkdirAll(in, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}

	c.InFile = filepath.Join(in, name)
	out, err := os.Create(c.InFile)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	if _, err := io.Copy(out, f); err != nil {
		out.Close()
		return nil, fmt.Errorf("save upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	return &c, nil
}

// writeZip writes the regular files below root to w, named relative to root.
func writeZip(w io.Writer, root string) error {
	zw := zip.NewWriter(w)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		dst, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		_, err = io.Copy(dst, src)
		return err
	})
	if err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}
