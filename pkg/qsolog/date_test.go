package qsolog

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestBCD(t *testing.T) {
	c := qt.New(t)

	for _, test := range []struct {
		in   int
		want byte
	}{
		{0, 0x00},
		{7, 0x07},
		{10, 0x10},
		{23, 0x23},
		{59, 0x59},
		{99, 0x99},
		{100, 0x00},
		{2024, 0x24},
		{-1, 0x99},
	} {
		c.Assert(BCD(test.in), qt.Equals, test.want, qt.Commentf("BCD(%d)", test.in))
	}

	for v := 0; v < 100; v++ {
		c.Assert(BCD(v), qt.Equals, byte((v/10)%10<<4|v%10))
	}
}

func TestPackDate(t *testing.T) {
	c := qt.New(t)

	d := PackDate(time.Date(2023, time.April, 5, 16, 7, 58, 0, time.Local))
	c.Assert(d, qt.Equals, [DateSize]byte{0x23, 0x04, 0x05, 0x16, 0x07, 0x58})

	d = PackDate(time.Date(2100, time.December, 31, 0, 0, 0, 0, time.UTC))
	c.Assert(d, qt.Equals, [DateSize]byte{0x00, 0x12, 0x31, 0x00, 0x00, 0x00})
}
