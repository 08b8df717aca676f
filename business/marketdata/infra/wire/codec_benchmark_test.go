// Benchmarks for the binary frame decode hot path.
// Run with: go test -bench=. -benchmem ./business/marketdata/infra/wire/
package wire

import (
	"context"
	"testing"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
)

// generateFrame builds a multi-message frame alternating trade/ask/bid
// sub-messages, simulating a busy firehose frame.
func generateFrame(numMessages int) []byte {
	frame := []byte{byte(numMessages)}
	for i := 0; i < numMessages; i++ {
		switch i % 3 {
		case 0:
			frame = append(frame, buildTradeSubMessage("AAPL", 6, "NQ", 189.95, 100, 1700000000000000000, 1000, "@")...)
		case 1:
			frame = append(frame, buildQuoteSubMessage(msgTypeAsk, "AAPL", 6, "NQ", 190.00, 10, 1700000000000000001, "R")...)
		case 2:
			frame = append(frame, buildQuoteSubMessage(msgTypeBid, "AAPL", 6, "NQ", 189.90, 10, 1700000000000000002, "R")...)
		}
	}
	return frame
}

func BenchmarkDecode_10Messages(b *testing.B) {
	frame := generateFrame(10)
	c := NewCodec(nil)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Decode(ctx, frame, func(domain.Trade) {}, func(domain.Quote) {})
	}
}
