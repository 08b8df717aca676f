package wire

import (
	"math"
	"testing"
)

func TestReadUint32_LittleEndian(t *testing.T) {
	b := []byte{0x01, 0x00, 0x00, 0x00}
	if got := readUint32(b, 0); got != 1 {
		t.Errorf("readUint32 = %d, want 1", got)
	}
	b = []byte{0xFF, 0xFF, 0xFF, 0xFF}
	if got := readUint32(b, 0); got != math.MaxUint32 {
		t.Errorf("readUint32 = %d, want MaxUint32", got)
	}
}

func TestReadInt32_TwosComplement(t *testing.T) {
	b := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	if got := readInt32(b, 0); got != -1 {
		t.Errorf("readInt32 = %d, want -1", got)
	}
}

func TestReadUint64_PreservesAbove2Pow53(t *testing.T) {
	b := make([]byte, 8)
	var v uint64 = 1<<53 + 12345
	putUint64(b, 0, v)
	if got := readUint64(b, 0); got != v {
		t.Errorf("readUint64 = %d, want %d", got, v)
	}
}

func TestReadFloat32_RoundsAndClampsNegative(t *testing.T) {
	b := make([]byte, 4)
	putUint32(b, 0, math.Float32bits(189.95555))
	got := readFloat32(b, 0)
	if got < 189.9555 || got > 189.9556 {
		t.Errorf("readFloat32 = %v, want ~189.9555", got)
	}

	putUint32(b, 0, math.Float32bits(-3.5))
	if got := readFloat32(b, 0); got != 0 {
		t.Errorf("readFloat32(negative) = %v, want 0", got)
	}
}

func TestReadUtf16BE(t *testing.T) {
	// 'N' = 0x004E, 'Q' = 0x0051
	b := []byte{0x00, 0x4E, 0x00, 0x51}
	if got := readUtf16BE(b, 0, 4); got != "NQ" {
		t.Errorf("readUtf16BE = %q, want NQ", got)
	}
}

func TestReadAscii_OutOfBoundsReturnsEmpty(t *testing.T) {
	b := []byte("AAPL")
	if got := readAscii(b, 0, 10); got != "" {
		t.Errorf("readAscii out of bounds = %q, want empty", got)
	}
	if got := readAscii(b, 0, 4); got != "AAPL" {
		t.Errorf("readAscii = %q, want AAPL", got)
	}
}

func TestWriteAscii_TruncatesOnInsufficientCapacity(t *testing.T) {
	dst := make([]byte, 4)
	n := writeAscii(dst, "AAPLX", 0)
	if n != 4 {
		t.Errorf("writeAscii wrote %d bytes, want 4 (truncated)", n)
	}
}

func TestReadsOutOfBounds_ReturnZero(t *testing.T) {
	b := []byte{0x01, 0x02}
	if got := readUint32(b, 0); got != 0 {
		t.Errorf("readUint32 short buffer = %d, want 0", got)
	}
	if got := readUint64(b, 0); got != 0 {
		t.Errorf("readUint64 short buffer = %d, want 0", got)
	}
}
