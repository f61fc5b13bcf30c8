package amba

import "github.com/pkg/errors"

// Burst is the burst type carried on AWBURST/ARBURST.
type Burst uint8

// The burst types defined by the AXI specification. Only incrementing
// addressing is implemented by the engines; FIXED and WRAP are decoded and
// validated but addressed linearly.
const (
	BurstFixed Burst = iota
	BurstIncr
	BurstWrap
)

// MaxBurstLength is the largest number of beats in one AXI4 burst.
const MaxBurstLength = 256

// MaxBytesInBeat is the largest beat size the size-code encoding can carry.
const MaxBytesInBeat = 64

func (b Burst) String() string {
	switch b {
	case BurstFixed:
		return "FIXED"
	case BurstIncr:
		return "INCR"
	case BurstWrap:
		return "WRAP"
	default:
		return "INVALID"
	}
}

// Valid reports whether the burst type is one of the three encodings the
// protocol defines.
func (b Burst) Valid() bool {
	return b <= BurstWrap
}

// BytesInBeat decodes an AxSIZE code into the number of bytes per beat.
// Codes 0 through 6 map to 1 through 64 bytes. Code 7 has no defined byte
// count and must not reach the addressing arithmetic.
func BytesInBeat(sizeCode uint64) (uint64, error) {
	if sizeCode > 6 {
		return 0, errors.Errorf("burst size code %d out of range", sizeCode)
	}

	return 1 << sizeCode, nil
}

// BeatRange returns the memory range [start, end) occupied by the given beat
// of a linear incrementing burst starting at addr.
func BeatRange(addr uint64, beat int, bytesInBeat uint64) (start, end uint64) {
	start = addr + uint64(beat)*bytesInBeat
	end = start + bytesInBeat

	return start, end
}
