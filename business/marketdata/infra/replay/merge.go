package replay

import (
	"context"
	"time"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/intrinio/go-realtime-client/business/marketdata/infra/replay"

// Merger performs a k-way merge of N tick iterators by receiveTime,
// breaking ties by lowest source index, optionally pacing output to
// wall-clock as the iterators were originally recorded.
type Merger struct {
	iters   []TickIterator
	pending []*domain.Tick

	asIfLive    bool
	initialized bool
	hasFirst    bool
	offset      time.Duration

	tracer trace.Tracer
}

// NewMerger returns a Merger over iters. N is expected to be small
// (<=4 in practice), so the per-step scan for the minimum is a plain
// linear search rather than a heap.
func NewMerger(iters []TickIterator, asIfLive bool) *Merger {
	return &Merger{
		iters:   iters,
		pending: make([]*domain.Tick, len(iters)),
		asIfLive: asIfLive,
		tracer:  otel.Tracer(tracerName),
	}
}

// Next returns the next Tick in non-decreasing receiveTime order, or
// ok=false once every iterator is exhausted. In asIfLive mode it
// sleeps to preserve the original inter-arrival spacing before
// returning each Tick after the first.
func (m *Merger) Next(ctx context.Context) (domain.Tick, bool, error) {
	if !m.initialized {
		if err := m.fill(); err != nil {
			return domain.Tick{}, false, err
		}
		m.initialized = true
	}

	k := -1
	for i, t := range m.pending {
		if t == nil {
			continue
		}
		if k == -1 || t.ReceiveTime < m.pending[k].ReceiveTime {
			k = i
		}
	}
	if k == -1 {
		return domain.Tick{}, false, nil
	}

	tick := *m.pending[k]
	next, ok, err := m.iters[k].Next()
	if err != nil {
		return domain.Tick{}, false, err
	}
	if ok {
		m.pending[k] = &next
	} else {
		m.pending[k] = nil
	}

	if m.asIfLive {
		if err := m.pace(ctx, tick); err != nil {
			return domain.Tick{}, false, err
		}
	}

	return tick, true, nil
}

func (m *Merger) fill() error {
	for i, it := range m.iters {
		tick, ok, err := it.Next()
		if err != nil {
			return err
		}
		if ok {
			m.pending[i] = &tick
		}
	}
	return nil
}

// pace sleeps so that the gap between wall-clock arrivals matches the
// gap between receiveTime values recorded in the file, anchored to
// the first yielded tick.
func (m *Merger) pace(ctx context.Context, tick domain.Tick) error {
	_, span := m.tracer.Start(ctx, "replay.pace")
	defer span.End()

	now := time.Now()
	recordedAt := time.Unix(0, int64(tick.ReceiveTime))

	if !m.hasFirst {
		m.offset = now.Sub(recordedAt)
		m.hasFirst = true
		return nil
	}

	target := recordedAt.Add(m.offset)
	wait := time.Until(target)
	if wait <= 0 {
		return nil
	}

	span.AddEvent("pacing sleep")
	select {
	case <-ctx.Done():
		span.SetStatus(codes.Error, "cancelled during pace sleep")
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
