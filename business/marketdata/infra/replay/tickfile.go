// Package replay reads historical per-subsource tick files, merges
// them in receive-time order, and optionally downloads them over
// HTTPS before replay.
package replay

import (
	"errors"
	"io"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"github.com/intrinio/go-realtime-client/internal/apperror"
)

// maxRecordLen is the largest legal record body+header (msgLen is a
// u8, so the header+body it describes is at most 255 bytes).
const maxRecordLen = 255

// maxFrameLen is the largest single-message frame C7 can synthesize:
// one N=1 byte plus the largest legal record.
const maxFrameLen = 1 + maxRecordLen

// TickIterator yields Ticks in file order, returning ok=false with a
// nil error at a clean end of stream.
type TickIterator interface {
	Next() (domain.Tick, bool, error)
}

// TickFileReader parses the unterminated concatenation of
// [msgType u8][msgLen u8][body][receiveTime u64 LE] records that make
// up one binary tick file, synthesizing a single-message frame
// envelope per record so C2 can parse it unchanged.
type TickFileReader struct {
	r io.Reader
}

// NewTickFileReader wraps r, typically an open tick file or a
// downloaded byte buffer.
func NewTickFileReader(r io.Reader) *TickFileReader {
	return &TickFileReader{r: r}
}

// Next returns the next Tick, or ok=false at a clean record-boundary
// EOF. A read that stops mid-record is a corrupt-file error, not EOF.
func (t *TickFileReader) Next() (domain.Tick, bool, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(t.r, header); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Tick{}, false, nil
		}
		return domain.Tick{}, false, apperror.New(apperror.CodeReplayCorruptFile,
			apperror.WithMessage("truncated record header"), apperror.WithCause(err))
	}

	msgType := header[0]
	msgLen := int(header[1])
	if msgLen < 2 {
		return domain.Tick{}, false, apperror.New(apperror.CodeReplayCorruptFile,
			apperror.WithMessage("record msgLen must be at least 2"))
	}

	bodyLen := msgLen - 2
	body := make([]byte, bodyLen)
	if bodyLen > 0 {
		if _, err := io.ReadFull(t.r, body); err != nil {
			return domain.Tick{}, false, apperror.New(apperror.CodeReplayCorruptFile,
				apperror.WithMessage("truncated record body"), apperror.WithCause(err))
		}
	}

	tsBuf := make([]byte, 8)
	if _, err := io.ReadFull(t.r, tsBuf); err != nil {
		return domain.Tick{}, false, apperror.New(apperror.CodeReplayCorruptFile,
			apperror.WithMessage("truncated receiveTime"), apperror.WithCause(err))
	}
	var receiveTime uint64
	for i := 0; i < 8; i++ {
		receiveTime |= uint64(tsBuf[i]) << (8 * i)
	}

	payload := make([]byte, maxFrameLen)
	payload[0] = 1 // N=1: single sub-message frame
	payload[1] = msgType
	payload[2] = header[1]
	copy(payload[3:], body)
	payload = payload[:1+msgLen]

	return domain.Tick{ReceiveTime: receiveTime, Payload: payload}, true, nil
}
