// Package qsolog encodes the photo log files that YSF radios read from their
// QSOLOG directory: QSOPCTDIR.DAT, QSOPCTFAT.DAT and QSOMNG.DAT.
package qsolog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// EntrySize is the size of one QSOPCTDIR.DAT record. FAT offsets are
	// computed from it, so every record must be exactly this long.
	EntrySize = 128
	// FATEntrySize is the size of one QSOPCTFAT.DAT record.
	FATEntrySize = 4
	// SummarySize is the size of QSOMNG.DAT.
	SummarySize = 32
	// FATMarker starts every QSOPCTFAT.DAT record.
	FATMarker = 0x40

	// PhotoDir holds the thumbnails referenced by the directory entries.
	PhotoDir = "PHOTO"
	// LogDir holds the directory, FAT and summary files.
	LogDir = "QSOLOG"

	DirFile = "QSOPCTDIR.DAT"
	FATFile = "QSOPCTFAT.DAT"
	MngFile = "QSOMNG.DAT"
)

// ASCII folds s into printable ASCII, one byte per rune: accents are
// stripped and anything else outside the printable range becomes '?'.
func ASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 0x20 || r > 0x7e {
			b.WriteByte('?')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Pad folds s to ASCII and truncates or right-pads it with spaces to exactly n bytes.
func Pad(s string, n int) string {
	s = ASCII(s)
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}
