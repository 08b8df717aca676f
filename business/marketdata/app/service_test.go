package app

import (
	"context"
	"testing"
	"time"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/auth"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/backoff"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/replay"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/session"
)

func newTestService() *Service {
	authC := auth.New(auth.Config{Provider: domain.ProviderRealtime}, nil, nil, nil)
	return NewService(session.Config{Provider: domain.ProviderRealtime}, authC, backoff.New(), nil, nil)
}

func TestService_DispatchTrade_DropsWhenChannelFull(t *testing.T) {
	s := newTestService()

	for i := 0; i < liveBufferSize; i++ {
		s.dispatchTrade(domain.Trade{Symbol: "AAPL"})
	}
	if len(s.trades) != liveBufferSize {
		t.Fatalf("trades channel len = %d, want %d", len(s.trades), liveBufferSize)
	}

	// One more send must not block; it is dropped.
	done := make(chan struct{})
	go func() {
		s.dispatchTrade(domain.Trade{Symbol: "MSFT"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatchTrade blocked on a full channel")
	}
	if len(s.trades) != liveBufferSize {
		t.Fatalf("trades channel len = %d after drop, want unchanged %d", len(s.trades), liveBufferSize)
	}
}

func TestService_DispatchQuote_DropsWhenChannelFull(t *testing.T) {
	s := newTestService()

	for i := 0; i < liveBufferSize; i++ {
		s.dispatchQuote(domain.Quote{Symbol: "AAPL"})
	}

	done := make(chan struct{})
	go func() {
		s.dispatchQuote(domain.Quote{Symbol: "MSFT"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatchQuote blocked on a full channel")
	}
	if len(s.quotes) != liveBufferSize {
		t.Fatalf("quotes channel len = %d after drop, want unchanged %d", len(s.quotes), liveBufferSize)
	}
}

func TestService_Replay_RequiresDownloader(t *testing.T) {
	s := newTestService()
	err := s.Replay(context.Background(), "2024-01-02", ReplayOptions{Subsources: []string{"iex"}}, nil, nil)
	if err == nil {
		t.Fatal("Replay with no downloader configured: want error, got nil")
	}
}

func TestService_Replay_RequiresSubsources(t *testing.T) {
	s := newTestService()
	s.downloader = replay.NewDownloader(replay.DownloaderConfig{}, nil, nil, nil)
	err := s.Replay(context.Background(), "2024-01-02", ReplayOptions{}, nil, nil)
	if err == nil {
		t.Fatal("Replay with no subsources: want error, got nil")
	}
}
