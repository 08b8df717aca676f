package subscription

import (
	"context"
	"strings"
	"testing"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
)

func TestAdd_FirstWriteWinsOnTradesOnly(t *testing.T) {
	r := New(nil)
	ctx := context.Background()
	if err := r.Add(ctx, "AAPL", true); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Add(ctx, "AAPL", false); err != nil {
		t.Fatalf("Add: %v", err)
	}
	snap := r.Snapshot()
	if len(snap) != 1 || snap[0].Channel != "AAPL" || snap[0].TradesOnly != true {
		t.Errorf("snapshot = %+v, want AAPL tradesOnly=true (first write wins)", snap)
	}
}

func TestAdd_RejectsEmptyAndOverlongChannels(t *testing.T) {
	r := New(nil)
	ctx := context.Background()
	if err := r.Add(ctx, "", false); err == nil {
		t.Error("expected error for empty channel")
	}
	if err := r.Add(ctx, domain.Channel(strings.Repeat("X", 21)), false); err == nil {
		t.Error("expected error for channel longer than 20 chars")
	}
}

func TestAdd_RemoveIsIdempotent(t *testing.T) {
	r := New(nil)
	ctx := context.Background()
	_ = r.Add(ctx, "AAPL", false)
	r.Remove("AAPL")
	r.Remove("AAPL") // idempotent, must not panic
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestMatches_LobbySubsumesAll(t *testing.T) {
	r := New(nil)
	ctx := context.Background()
	_ = r.Add(ctx, domain.Lobby, false)
	if !r.Matches("ANYTHING") {
		t.Error("Matches should be true for any symbol when $lobby is present")
	}
}

func TestMatches_ExactSymbolOnly(t *testing.T) {
	r := New(nil)
	ctx := context.Background()
	_ = r.Add(ctx, "AAPL", false)
	if !r.Matches("AAPL") {
		t.Error("Matches(AAPL) should be true")
	}
	if r.Matches("MSFT") {
		t.Error("Matches(MSFT) should be false")
	}
}

func TestSnapshot_StableAcrossCalls(t *testing.T) {
	r := New(nil)
	ctx := context.Background()
	_ = r.Add(ctx, "AAPL", false)
	_ = r.Add(ctx, "MSFT", true)
	snap1 := r.Snapshot()
	snap2 := r.Snapshot()
	if len(snap1) != len(snap2) {
		t.Errorf("snapshot lengths differ: %d vs %d", len(snap1), len(snap2))
	}
	for i := 0; i < len(snap1) && i < len(snap2); i++ {
		if snap1[i] != snap2[i] {
			t.Errorf("snapshot order differs at %d: %+v vs %+v", i, snap1[i], snap2[i])
		}
	}
}
