package qsolog

import "time"

// DateSize is the size of a packed date.
const DateSize = 6

// BCD packs the last two decimal digits of v into one byte, tens digit in
// the high nibble. Values above 99 wrap, so 100 packs as 0x00.
func BCD(v int) byte {
	v %= 100
	if v < 0 {
		v += 100
	}
	return byte((v/10)<<4 | v%10)
}

// PackDate packs year (mod 100), month, day, hour, minute and second of t.
// t is used as given; callers pass local time.
func PackDate(t time.Time) [DateSize]byte {
	return [DateSize]byte{
		BCD(t.Year()),
		BCD(int(t.Month())),
		BCD(t.Day()),
		BCD(t.Hour()),
		BCD(t.Minute()),
		BCD(t.Second()),
	}
}
