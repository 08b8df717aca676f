package wire

import (
	"context"
	"fmt"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"github.com/intrinio/go-realtime-client/internal/apperror"
	"github.com/intrinio/go-realtime-client/internal/logger"
)

// Message type byte values, per the frame envelope header.
const (
	msgTypeTrade uint8 = 0
	msgTypeAsk   uint8 = 1
	msgTypeBid   uint8 = 2
)

// Codec decodes WebSocket binary frames into trade/quote records and
// builds the control frames sent back to the server. A Codec is
// stateless and safe for concurrent use; it holds only a logger for
// diagnostics on malformed input.
type Codec struct {
	log logger.LoggerInterface
}

// NewCodec returns a Codec that logs decode diagnostics through log.
func NewCodec(log logger.LoggerInterface) *Codec {
	return &Codec{log: log}
}

// Decode parses one WebSocket binary frame (first byte N, the
// sub-message count, followed by N concatenated sub-messages) and
// invokes onTrade/onQuote for each decoded record in frame order.
// Unknown msgType values are logged and skipped; the cursor still
// advances by msgLen so the remainder of the frame parses.
func (c *Codec) Decode(ctx context.Context, frame []byte, onTrade func(domain.Trade), onQuote func(domain.Quote)) error {
	if len(frame) < 1 {
		return apperror.New(apperror.CodeFrameTruncated, apperror.WithMessage("empty frame"))
	}
	n := int(frame[0])
	cursor := 1
	for i := 0; i < n; i++ {
		if cursor+2 > len(frame) {
			return apperror.New(apperror.CodeFrameTruncated,
				apperror.WithContext(fmt.Sprintf("subMessage=%d cursor=%d", i, cursor)))
		}
		msgType := frame[cursor]
		msgLen := int(frame[cursor+1])
		end := cursor + msgLen
		if msgLen < 2 || end > len(frame) {
			return apperror.New(apperror.CodeFrameTruncated,
				apperror.WithContext(fmt.Sprintf("subMessage=%d msgLen=%d", i, msgLen)))
		}
		body := frame[cursor:end]

		switch msgType {
		case msgTypeTrade:
			if onTrade != nil {
				onTrade(decodeTrade(body))
			}
		case msgTypeAsk:
			if onQuote != nil {
				onQuote(decodeQuote(body, domain.QuoteTypeAsk))
			}
		case msgTypeBid:
			if onQuote != nil {
				onQuote(decodeQuote(body, domain.QuoteTypeBid))
			}
		default:
			if c.log != nil {
				c.log.Warn(ctx, "unknown message type in frame, skipping", "msgType", msgType, "msgLen", msgLen)
			}
		}

		cursor = end
	}
	return nil
}

// decodeTrade decodes a single sub-message body (including its
// 2-byte header) as a Trade, per the v2 length-prefixed layout.
func decodeTrade(body []byte) domain.Trade {
	symLen := int(body[2])
	symStart := 3
	symEnd := symStart + symLen

	subProvider := domain.ParseSubProvider(byteAt(body, symEnd))
	marketCenter := readUtf16BE(body, symEnd+1, symEnd+3)
	price := readFloat32(body, symEnd+3)
	size := readUint32(body, symEnd+7)
	timestamp := readUint64(body, symEnd+11)
	totalVolume := readUint32(body, symEnd+19)
	condLen := int(byteAt(body, symEnd+23))
	condStart := symEnd + 24

	return domain.Trade{
		Symbol:       readAscii(body, symStart, symEnd),
		Price:        price,
		Size:         size,
		Timestamp:    timestamp,
		TotalVolume:  totalVolume,
		SubProvider:  subProvider,
		MarketCenter: marketCenter,
		Condition:    readAscii(body, condStart, condStart+condLen),
	}
}

// decodeQuote decodes a single sub-message body as a Quote; identical
// to Trade through the timestamp field, then a conditionLength byte
// and the condition string, with no totalVolume.
func decodeQuote(body []byte, qt domain.QuoteType) domain.Quote {
	symLen := int(body[2])
	symStart := 3
	symEnd := symStart + symLen

	subProvider := domain.ParseSubProvider(byteAt(body, symEnd))
	marketCenter := readUtf16BE(body, symEnd+1, symEnd+3)
	price := readFloat32(body, symEnd+3)
	size := readUint32(body, symEnd+7)
	timestamp := readUint64(body, symEnd+11)
	condLen := int(byteAt(body, symEnd+19))
	condStart := symEnd + 20

	return domain.Quote{
		Type:         qt,
		Symbol:       readAscii(body, symStart, symEnd),
		Price:        price,
		Size:         size,
		Timestamp:    timestamp,
		SubProvider:  subProvider,
		MarketCenter: marketCenter,
		Condition:    readAscii(body, condStart, condStart+condLen),
	}
}

func byteAt(b []byte, i int) byte {
	if i < 0 || i >= len(b) {
		return 0
	}
	return b[i]
}

// BuildJoin builds a join control frame: literal opcode 'J', a
// trades-only flag byte, then the channel as ASCII. domain.Lobby is
// sent as the firehose wire token, not its own literal string.
func BuildJoin(channel domain.Channel, tradesOnly bool) []byte {
	token := wireToken(channel)
	buf := make([]byte, 2+len(token))
	buf[0] = 'J'
	if tradesOnly {
		buf[1] = 1
	}
	writeAscii(buf, token, 2)
	return buf
}

// BuildLeave builds a leave control frame: literal opcode 'L' followed
// by the channel as ASCII, with no flag byte.
func BuildLeave(channel domain.Channel) []byte {
	token := wireToken(channel)
	buf := make([]byte, 1+len(token))
	buf[0] = 'L'
	writeAscii(buf, token, 1)
	return buf
}

func wireToken(channel domain.Channel) string {
	if channel == domain.Lobby {
		return domain.FirehoseToken
	}
	return string(channel)
}
