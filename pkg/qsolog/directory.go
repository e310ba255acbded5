package qsolog

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"
)

// MaxEntries is the most photos a directory can hold: QSOMNG.DAT counts
// them in 16 bits.
const MaxEntries = math.MaxUint16

// ErrDirectoryFull is returned when adding more than MaxEntries entries.
var ErrDirectoryFull = errors.New("photo directory full")

// Summary is the content of QSOMNG.DAT.
type Summary struct {
	Messages uint16
	Photos   uint16
	Groups   uint16
}

// MarshalBinary encodes s as a 32 byte record with 0xFF padding.
func (s Summary) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, SummarySize)
	b = binary.BigEndian.AppendUint16(b, s.Messages)
	b = append(b, bytes.Repeat([]byte{0xff}, 14)...)
	b = binary.BigEndian.AppendUint16(b, s.Photos)
	b = binary.BigEndian.AppendUint16(b, s.Groups)
	b = append(b, bytes.Repeat([]byte{0xff}, 12)...)
	return b, nil
}

// Directory accumulates encoded entries in the order they are added.
// The zero value is an empty directory ready to use.
type Directory struct {
	buf bytes.Buffer
	n   int
}

// Add encodes e and appends it to the directory.
func (d *Directory) Add(e *Entry) error {
	if d.n >= MaxEntries {
		return ErrDirectoryFull
	}

	b, err := e.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	d.buf.Write(b)
	d.n++
	return nil
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	return d.n
}

// Bytes returns the content of QSOPCTDIR.DAT.
func (d *Directory) Bytes() []byte {
	return d.buf.Bytes()
}

// FAT returns the content of QSOPCTFAT.DAT: for each entry the marker byte
// followed by the entry's 24-bit big-endian offset into QSOPCTDIR.DAT.
func (d *Directory) FAT() []byte {
	b := make([]byte, 0, d.n*FATEntrySize)
	for i := 0; i < d.n; i++ {
		off := uint32(i * EntrySize)
		b = append(b, FATMarker, byte(off>>16), byte(off>>8), byte(off))
	}
	return b
}

// Summary returns the QSOMNG.DAT content describing d: photos only.
func (d *Directory) Summary() Summary {
	return Summary{Photos: uint16(d.n)}
}

// Save writes QSOPCTDIR.DAT, QSOPCTFAT.DAT and QSOMNG.DAT into
// outDir/QSOLOG. A nil s means d.Summary(). Nothing is written for an empty
// directory. The three files are staged as temp files and only renamed into
// place once all of them were written.
func (d *Directory) Save(outDir string, s *Summary) error {
	if d.n == 0 {
		klog.V(1).Infof("no entries, not writing %s", filepath.Join(outDir, LogDir))
		return nil
	}

	if s == nil {
		sum := d.Summary()
		s = &sum
	}
	mng, err := s.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	logDir := filepath.Join(outDir, LogDir)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{DirFile, d.Bytes()},
		{FATFile, d.FAT()},
		{MngFile, mng},
	}

	staged := map[string]string{}
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}()

	for _, f := range files {
		tmp, err := writeTemp(logDir, f.name, f.data)
		if err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		staged[f.name] = tmp
	}

	for _, f := range files {
		p := filepath.Join(logDir, f.name)
		klog.V(1).Infof("writing %d bytes to %s", len(f.data), p)
		if err := os.Rename(staged[f.name], p); err != nil {
			return fmt.Errorf("rename %s: %w", f.name, err)
		}
		delete(staged, f.name)
	}

	return nil
}

func writeTemp(dir string, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return "", err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}

	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}

	return f.Name(), nil
}
