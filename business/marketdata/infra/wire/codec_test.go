package wire

import (
	"context"
	"math"
	"testing"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
)

func putUint32(b []byte, off int, v uint32) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
}

func putUint64(b []byte, off int, v uint64) {
	for i := 0; i < 8; i++ {
		b[off+i] = byte(v >> (8 * i))
	}
}

// buildTradeSubMessage builds one trade sub-message body (including
// the two header bytes) with the given symbol/condition strings.
func buildTradeSubMessage(symbol string, subProvider byte, marketCenter string, price float32, size uint32, ts uint64, totalVolume uint32, condition string) []byte {
	symLen := len(symbol)
	condLen := len(condition)
	msgLen := 3 + symLen + 1 + 2 + 4 + 4 + 8 + 4 + 1 + condLen
	buf := make([]byte, msgLen)
	buf[0] = msgTypeTrade
	buf[1] = byte(msgLen)
	buf[2] = byte(symLen)
	copy(buf[3:3+symLen], symbol)

	off := 3 + symLen
	buf[off] = subProvider
	mc := []byte(marketCenter)
	buf[off+1] = mc[0]
	buf[off+2] = mc[1]
	putUint32(buf, off+3, math.Float32bits(price))
	putUint32(buf, off+7, size)
	putUint64(buf, off+11, ts)
	putUint32(buf, off+19, totalVolume)
	buf[off+23] = byte(condLen)
	copy(buf[off+24:off+24+condLen], condition)
	return buf
}

func buildQuoteSubMessage(msgType uint8, symbol string, subProvider byte, marketCenter string, price float32, size uint32, ts uint64, condition string) []byte {
	symLen := len(symbol)
	condLen := len(condition)
	msgLen := 3 + symLen + 1 + 2 + 4 + 4 + 8 + 1 + condLen
	buf := make([]byte, msgLen)
	buf[0] = msgType
	buf[1] = byte(msgLen)
	buf[2] = byte(symLen)
	copy(buf[3:3+symLen], symbol)

	off := 3 + symLen
	buf[off] = subProvider
	mc := []byte(marketCenter)
	buf[off+1] = mc[0]
	buf[off+2] = mc[1]
	putUint32(buf, off+3, math.Float32bits(price))
	putUint32(buf, off+7, size)
	putUint64(buf, off+11, ts)
	buf[off+19] = byte(condLen)
	copy(buf[off+20:off+20+condLen], condition)
	return buf
}

func TestDecode_SingleTrade(t *testing.T) {
	sub := buildTradeSubMessage("AAPL", 6, "\x00N", 189.955, 100, 1700000000000000000, 123456, "@")
	frame := append([]byte{1}, sub...)

	c := NewCodec(nil)
	var got domain.Trade
	err := c.Decode(context.Background(), frame, func(tr domain.Trade) { got = tr }, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", got.Symbol)
	}
	if got.SubProvider != domain.SubProviderIEX {
		t.Errorf("SubProvider = %v, want IEX", got.SubProvider)
	}
	if got.MarketCenter != "N" {
		t.Errorf("MarketCenter = %q, want N", got.MarketCenter)
	}
	if got.Size != 100 || got.TotalVolume != 123456 {
		t.Errorf("Size/TotalVolume = %d/%d", got.Size, got.TotalVolume)
	}
	if got.Condition != "@" {
		t.Errorf("Condition = %q, want @", got.Condition)
	}
	if got.Price < 189.954 || got.Price > 189.956 {
		t.Errorf("Price = %v, want ~189.955", got.Price)
	}
}

func TestDecode_MultiMessageFrame(t *testing.T) {
	trade := buildTradeSubMessage("MSFT", 1, "TT", 420.5, 50, 1700000000000000001, 99, "")
	ask := buildQuoteSubMessage(msgTypeAsk, "MSFT", 1, "TT", 420.6, 10, 1700000000000000002, "R")
	bid := buildQuoteSubMessage(msgTypeBid, "MSFT", 1, "TT", 420.4, 10, 1700000000000000003, "R")
	frame := append([]byte{3}, append(trade, append(ask, bid...)...)...)

	var trades []domain.Trade
	var quotes []domain.Quote
	c := NewCodec(nil)
	err := c.Decode(context.Background(), frame,
		func(tr domain.Trade) { trades = append(trades, tr) },
		func(q domain.Quote) { quotes = append(quotes, q) })
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(trades) != 1 || len(quotes) != 2 {
		t.Fatalf("got %d trades, %d quotes; want 1, 2", len(trades), len(quotes))
	}
	if quotes[0].Type != domain.QuoteTypeAsk || quotes[1].Type != domain.QuoteTypeBid {
		t.Errorf("quote types = %v, %v", quotes[0].Type, quotes[1].Type)
	}
}

func TestDecode_UnknownMsgTypeSkipsButAdvances(t *testing.T) {
	unknown := buildTradeSubMessage("XXXX", 0, "NQ", 1, 1, 1, 1, "")
	unknown[0] = 99 // unrecognized msgType
	trade := buildTradeSubMessage("AAPL", 6, "NQ", 100, 1, 1, 1, "")
	frame := append([]byte{2}, append(unknown, trade...)...)

	var got []domain.Trade
	c := NewCodec(nil)
	err := c.Decode(context.Background(), frame, func(tr domain.Trade) { got = append(got, tr) }, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "AAPL" {
		t.Fatalf("got %+v, want single AAPL trade after skipping unknown", got)
	}
}

func TestDecode_TruncatedFrame(t *testing.T) {
	c := NewCodec(nil)
	err := c.Decode(context.Background(), []byte{1, 0}, nil, nil)
	if err == nil {
		t.Fatal("expected truncation error, got nil")
	}
}

func TestDecode_NegativePriceClampedToZero(t *testing.T) {
	sub := buildTradeSubMessage("AAPL", 0, "NQ", -5.0, 1, 1, 1, "")
	frame := append([]byte{1}, sub...)

	var got domain.Trade
	c := NewCodec(nil)
	if err := c.Decode(context.Background(), frame, func(tr domain.Trade) { got = tr }, nil); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Price != 0 {
		t.Errorf("Price = %v, want 0 (clamped)", got.Price)
	}
}

func TestBuildJoin(t *testing.T) {
	got := BuildJoin("AAPL", true)
	want := append([]byte{'J', 1}, "AAPL"...)
	if string(got) != string(want) {
		t.Errorf("BuildJoin = %q, want %q", got, want)
	}
}

func TestBuildJoin_Lobby(t *testing.T) {
	got := BuildJoin(domain.Lobby, false)
	want := append([]byte{'J', 0}, domain.FirehoseToken...)
	if string(got) != string(want) {
		t.Errorf("BuildJoin(Lobby) = %q, want %q", got, want)
	}
}

func TestBuildLeave(t *testing.T) {
	got := BuildLeave("AAPL")
	want := append([]byte{'L'}, "AAPL"...)
	if string(got) != string(want) {
		t.Errorf("BuildLeave = %q, want %q", got, want)
	}
}
