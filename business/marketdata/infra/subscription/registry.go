// Package subscription tracks the desired set of channels and their
// per-channel trades-only flag, replaying it on reconnect.
package subscription

import (
	"context"
	"sort"
	"sync"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"github.com/intrinio/go-realtime-client/internal/apperror"
	"github.com/intrinio/go-realtime-client/internal/logger"
)

// Registry is the single source of truth for desired channels; the
// server side is reconciled against it on every (re)connect. A
// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	entries  map[domain.Channel]bool // channel -> tradesOnly
	hasLobby bool
	log      logger.LoggerInterface
}

// New returns an empty Registry.
func New(log logger.LoggerInterface) *Registry {
	return &Registry{
		entries: make(map[domain.Channel]bool),
		log:     log,
	}
}

// Add registers channel with tradesOnly, idempotently: the first call
// for a channel wins on tradesOnly and later calls are no-ops on that
// flag. Channels longer than domain.MaxChannelLength or empty are
// rejected. A channel added after $lobby is already present is
// accepted and logged as redundant.
func (r *Registry) Add(ctx context.Context, channel domain.Channel, tradesOnly bool) error {
	if channel == "" {
		return apperror.New(apperror.CodeChannelInvalid, apperror.WithMessage("channel must not be empty"))
	}
	if channel != domain.Lobby && len(channel) > domain.MaxChannelLength {
		return apperror.New(apperror.CodeChannelNameTooLong,
			apperror.WithContext(string(channel)))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasLobby && channel != domain.Lobby {
		if r.log != nil {
			r.log.Warn(ctx, "channel added while $lobby is present; redundant, $lobby subsumes all channels",
				"channel", channel)
		}
	}

	if _, exists := r.entries[channel]; !exists {
		r.entries[channel] = tradesOnly
	}
	if channel == domain.Lobby {
		r.hasLobby = true
	}
	return nil
}

// Remove deregisters channel; idempotent if channel is not present.
func (r *Registry) Remove(channel domain.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, channel)
	if channel == domain.Lobby {
		r.hasLobby = false
	}
}

// RemoveAll clears every registered channel, used by leave-all and
// by stop().
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[domain.Channel]bool)
	r.hasLobby = false
}

// Snapshot returns a stable enumeration of the current entries, used
// to replay join frames on reconnect. Entries are sorted by channel
// name; the order in which channels were added is not kept.
func (r *Registry) Snapshot() []domain.SubscriptionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.SubscriptionEntry, 0, len(r.entries))
	for ch, tradesOnly := range r.entries {
		out = append(out, domain.SubscriptionEntry{Channel: ch, TradesOnly: tradesOnly})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

// Matches reports whether the registry contains $lobby or the exact
// symbol. Used only by replay to gate callbacks; live mode delegates
// filtering to the server.
func (r *Registry) Matches(symbol string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.hasLobby {
		return true
	}
	_, ok := r.entries[domain.Channel(symbol)]
	return ok
}

// Len returns the number of registered channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
