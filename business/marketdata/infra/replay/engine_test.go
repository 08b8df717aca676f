package replay

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/subscription"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/wire"
)

func buildTickFileRecord(symbol string, price float32) []byte {
	var buf bytes.Buffer
	symLen := len(symbol)
	condition := ""
	msgLen := 3 + symLen + 1 + 2 + 4 + 4 + 8 + 4 + 1 + len(condition)
	body := make([]byte, msgLen-2)
	body[0] = byte(symLen)
	copy(body[1:1+symLen], symbol)
	off := 1 + symLen
	body[off] = 6 // IEX
	body[off+1] = 'N'
	body[off+2] = 'Q'
	bits := math.Float32bits(price)
	for i := 0; i < 4; i++ {
		body[off+3+i] = byte(bits >> (8 * i))
	}
	// size, timestamp, totalVolume, conditionLength all left zero

	appendRecord(&buf, 0, body, 42)
	return buf.Bytes()
}

func TestEngine_DispatchesSubscribedTrade(t *testing.T) {
	data := buildTickFileRecord("AAPL", 100)
	reader := NewTickFileReader(bytes.NewReader(data))

	registry := subscription.New(nil)
	_ = registry.Add(context.Background(), "AAPL", false)

	codec := wire.NewCodec(nil)
	engine := NewEngine(EngineConfig{AsIfLive: false, TradesOnly: false}, []TickIterator{reader}, codec, registry, nil, nil, nil)

	var got []domain.Trade
	err := engine.Run(context.Background(), func(tr domain.Trade) { got = append(got, tr) }, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "AAPL" {
		t.Fatalf("got %+v, want single AAPL trade", got)
	}
}

func TestEngine_DropsUnsubscribedSymbol(t *testing.T) {
	data := buildTickFileRecord("MSFT", 50)
	reader := NewTickFileReader(bytes.NewReader(data))

	registry := subscription.New(nil)
	_ = registry.Add(context.Background(), "AAPL", false) // MSFT not registered

	codec := wire.NewCodec(nil)
	engine := NewEngine(EngineConfig{}, []TickIterator{reader}, codec, registry, nil, nil, nil)

	var got []domain.Trade
	err := engine.Run(context.Background(), func(tr domain.Trade) { got = append(got, tr) }, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d trades, want 0 (MSFT not in registry)", len(got))
	}
}
