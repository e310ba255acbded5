package qsolog

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Field widths of an Entry, in file order.
const (
	headerLen      = 4
	nodeIDLen      = 5
	destLen        = 10
	reservedLen    = 6
	RadioIDLen     = 5
	CallsignLen    = 16
	DescriptionLen = 11
	spareLen       = 5
	photoSizeLen   = 4
	PhotoNameLen   = 16
	trailerLen     = 8
)

// DefaultDest addresses a photo to all stations.
const DefaultDest = "ALL"

// Entry is one photo record of QSOPCTDIR.DAT.
type Entry struct {
	NodeID   string
	Dest     string
	RadioID  string
	Callsign string

	Entered time.Time
	Sent    time.Time
	Taken   time.Time

	Description string
	PhotoSize   uint32
	PhotoName   string
	GPS         string
}

// MarshalBinary encodes e as a 128 byte record. Text fields are folded to
// ASCII and padded or truncated to their width, so the result is always
// EntrySize bytes long.
func (e *Entry) MarshalBinary() ([]byte, error) {
	dest := e.Dest
	if dest == "" {
		dest = DefaultDest
	}

	b := make([]byte, headerLen, EntrySize)
	b = append(b, Pad(e.NodeID, nodeIDLen)...)
	b = append(b, Pad(dest, destLen)...)
	b = append(b, spaces(reservedLen)...)
	b = append(b, Pad(e.RadioID, RadioIDLen)...)
	b = append(b, Pad(e.Callsign, CallsignLen)...)

	for _, t := range []time.Time{e.Entered, e.Sent, e.Taken} {
		d := PackDate(t)
		b = append(b, d[:]...)
	}

	b = append(b, Pad(e.Description, DescriptionLen)...)
	b = append(b, spaces(spareLen)...)
	b = binary.BigEndian.AppendUint32(b, e.PhotoSize)
	b = append(b, Pad(e.PhotoName, PhotoNameLen)...)
	b = append(b, Pad(e.GPS, GPSSize)...)
	b = append(b, spaces(trailerLen)...)

	if len(b) != EntrySize {
		return nil, fmt.Errorf("entry is %d bytes, want %d", len(b), EntrySize)
	}
	return b, nil
}

// PhotoName returns the thumbnail file name for the seq'th photo sent by
// radioID: "H", the radio id padded or truncated to 5 characters, the
// sequence number as 6 digits and ".jpg". Only the low 6 digits of seq are used.
func PhotoName(radioID string, seq int) string {
	return fmt.Sprintf("H%s%06d.jpg", Pad(radioID, RadioIDLen), seq%1000000)
}

func spaces(n int) string {
	return strings.Repeat(" ", n)
}
