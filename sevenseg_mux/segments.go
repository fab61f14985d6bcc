package sevenseg_mux

// output line ids, in the order a Lines implementation is expected to
// map them to pins: 7 segments, the decimal point, then the 4 digit enables
const (
	SegA = iota
	SegB
	SegC
	SegD
	SegE
	SegF
	SegG
	SegDP
	Digit0
	Digit1
	Digit2
	Digit3

	LineCount
)

const segmentCount = 7

// line levels
const (
	Low  uint8 = 0
	High uint8 = 1
)

// bit i is segment A+i
var segmentTable = [10]uint8{
	0x3F, // 0
	0x06, // 1
	0x5B, // 2
	0x4F, // 3
	0x66, // 4
	0x6D, // 5
	0x7D, // 6
	0x07, // 7
	0x7F, // 8
	0x6F, // 9
}

// SegmentMask returns the 7-bit segment pattern for v, 0 for Blank
func SegmentMask(v DigitValue) uint8 {
	if v.IsBlank() {
		return 0
	}
	return segmentTable[v]
}

// DigitLine returns the digit enable line for a display position
func DigitLine(pos int) int {
	return Digit0 + pos
}
