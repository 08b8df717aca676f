package replay

import (
	"context"
	"testing"
	"time"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
)

// sliceIterator replays a fixed slice of Ticks, then reports EOF.
type sliceIterator struct {
	ticks []domain.Tick
	pos   int
}

func (s *sliceIterator) Next() (domain.Tick, bool, error) {
	if s.pos >= len(s.ticks) {
		return domain.Tick{}, false, nil
	}
	t := s.ticks[s.pos]
	s.pos++
	return t, true, nil
}

func tagTick(receiveTime uint64, tag byte) domain.Tick {
	return domain.Tick{ReceiveTime: receiveTime, Payload: []byte{tag}}
}

func TestMerger_InterleavesByReceiveTime(t *testing.T) {
	iterA := &sliceIterator{ticks: []domain.Tick{tagTick(10, 'a'), tagTick(30, 'c')}}
	iterB := &sliceIterator{ticks: []domain.Tick{tagTick(20, 'b'), tagTick(25, 'd')}}

	m := NewMerger([]TickIterator{iterA, iterB}, false)

	var order []byte
	for {
		tick, ok, err := m.Next(context.Background())
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		order = append(order, tick.Payload[0])
	}

	want := "abdc"
	if string(order) != want {
		t.Errorf("merge order = %q, want %q", order, want)
	}
}

func TestMerger_TiesBreakByLowestIndex(t *testing.T) {
	iterA := &sliceIterator{ticks: []domain.Tick{tagTick(10, 'a')}}
	iterB := &sliceIterator{ticks: []domain.Tick{tagTick(10, 'b')}}

	m := NewMerger([]TickIterator{iterA, iterB}, false)
	tick, ok, err := m.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	if tick.Payload[0] != 'a' {
		t.Errorf("first yielded = %q, want 'a' (lowest index wins tie)", tick.Payload[0])
	}
}

func TestMerger_AsIfLivePacesBetweenYields(t *testing.T) {
	const gap = 60 * time.Millisecond
	t0 := uint64(time.Now().UnixNano())
	iter := &sliceIterator{ticks: []domain.Tick{
		tagTick(t0, 'a'),
		tagTick(t0+uint64(gap.Nanoseconds()), 'b'),
	}}

	m := NewMerger([]TickIterator{iter}, true)
	ctx := context.Background()

	if _, _, err := m.Next(ctx); err != nil {
		t.Fatalf("Next #1: %v", err)
	}
	firstAt := time.Now()

	if _, _, err := m.Next(ctx); err != nil {
		t.Fatalf("Next #2: %v", err)
	}
	secondAt := time.Now()

	elapsed := secondAt.Sub(firstAt)
	if elapsed < gap-10*time.Millisecond {
		t.Errorf("elapsed between yields = %v, want >= ~%v", elapsed, gap)
	}
}
