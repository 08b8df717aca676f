// Package wire decodes the binary frame format used by the real-time
// market-data WebSocket and by replay tick files, and builds the
// join/leave control frames sent back to the server.
package wire

import (
	"math"
	"unicode/utf16"

	"github.com/shopspring/decimal"
)

// readUint32 decodes a little-endian unsigned 32-bit integer starting
// at off. Returns 0 if the read would exceed b's bounds.
func readUint32(b []byte, off int) uint32 {
	if off < 0 || off+4 > len(b) {
		return 0
	}
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

// readInt32 decodes a little-endian two's-complement 32-bit integer.
func readInt32(b []byte, off int) int32 {
	return int32(readUint32(b, off))
}

// readUint64 decodes a little-endian unsigned 64-bit integer, for
// values that may exceed 2^53 (timestamps).
func readUint64(b []byte, off int) uint64 {
	if off < 0 || off+8 > len(b) {
		return 0
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[off+i]) << (8 * i)
	}
	return v
}

// readFloat32 decodes an IEEE-754 binary32 little-endian value,
// rounds it to 4 fractional digits, and clamps negative results to
// zero. The wire carries server-side rounding noise on price fields;
// the contract downstream is a non-negative, 4-decimal price.
func readFloat32(b []byte, off int) float64 {
	bits := readUint32(b, off)
	f := math.Float32frombits(bits)
	if f < 0 {
		return 0
	}
	rounded, _ := decimal.NewFromFloat32(f).Round(4).Float64()
	return rounded
}

// readAscii decodes b[start:end] as UTF-8. The wire guarantees ASCII
// in these positions; UTF-8 is a safe superset.
func readAscii(b []byte, start, end int) string {
	if start < 0 || end > len(b) || start > end {
		return ""
	}
	return string(b[start:end])
}

// readUtf16BE decodes b[start:end] as UTF-16 big-endian, used for the
// two-byte marketCenter code.
func readUtf16BE(b []byte, start, end int) string {
	if start < 0 || end > len(b) || start > end || (end-start)%2 != 0 {
		return ""
	}
	units := make([]uint16, 0, (end-start)/2)
	for i := start; i < end; i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return string(utf16.Decode(units))
}

// writeAscii writes s's UTF-8 bytes into dst starting at off,
// truncating if dst does not have enough remaining capacity. Returns
// the number of bytes written.
func writeAscii(dst []byte, s string, off int) int {
	if off < 0 || off >= len(dst) {
		return 0
	}
	n := copy(dst[off:], s)
	return n
}
