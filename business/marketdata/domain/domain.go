// Package domain defines the wire-independent types exchanged between
// the session controller, the replay engine, and user callbacks.
package domain

import "fmt"

// Provider selects the auth/WebSocket hosts and, historically, the
// field interpretation used by the upstream feed.
type Provider int

const (
	ProviderRealtime Provider = iota
	ProviderDelayedSIP
	ProviderNasdaqBasic
	ProviderCBOEOne
	ProviderManual
)

func (p Provider) String() string {
	switch p {
	case ProviderRealtime:
		return "REALTIME"
	case ProviderDelayedSIP:
		return "DELAYED_SIP"
	case ProviderNasdaqBasic:
		return "NASDAQ_BASIC"
	case ProviderCBOEOne:
		return "CBOE_ONE"
	case ProviderManual:
		return "MANUAL"
	default:
		return "UNKNOWN"
	}
}

// ParseProvider maps a config string to a Provider, defaulting to
// ProviderRealtime when empty.
func ParseProvider(s string) (Provider, error) {
	switch s {
	case "", "REALTIME", "realtime":
		return ProviderRealtime, nil
	case "DELAYED_SIP", "delayed_sip":
		return ProviderDelayedSIP, nil
	case "NASDAQ_BASIC", "nasdaq_basic":
		return ProviderNasdaqBasic, nil
	case "CBOE_ONE", "cboe_one":
		return ProviderCBOEOne, nil
	case "MANUAL", "manual":
		return ProviderManual, nil
	default:
		return 0, fmt.Errorf("unknown provider %q", s)
	}
}

// SubProvider is the origin feed a message was sourced from, carried
// per message.
type SubProvider uint8

const (
	SubProviderNone SubProvider = iota
	SubProviderCTA_A
	SubProviderCTA_B
	SubProviderUTP
	SubProviderOTC
	SubProviderNasdaqBasic
	SubProviderIEX
	SubProviderCBOEOne
)

// ParseSubProvider maps a raw wire byte to a SubProvider, falling
// back to SubProviderNone for any value it does not recognize.
func ParseSubProvider(b byte) SubProvider {
	if b > byte(SubProviderCBOEOne) {
		return SubProviderNone
	}
	return SubProvider(b)
}

func (s SubProvider) String() string {
	switch s {
	case SubProviderCTA_A:
		return "CTA_A"
	case SubProviderCTA_B:
		return "CTA_B"
	case SubProviderUTP:
		return "UTP"
	case SubProviderOTC:
		return "OTC"
	case SubProviderNasdaqBasic:
		return "NASDAQ_BASIC"
	case SubProviderIEX:
		return "IEX"
	case SubProviderCBOEOne:
		return "CBOE_ONE"
	default:
		return "NONE"
	}
}

// QuoteType distinguishes an Ask from a Bid quote.
type QuoteType int

const (
	QuoteTypeAsk QuoteType = iota
	QuoteTypeBid
)

func (q QuoteType) String() string {
	if q == QuoteTypeBid {
		return "Bid"
	}
	return "Ask"
}

// Trade is a single executed-trade record, decoded from the wire and
// handed to the user's onTrade callback.
type Trade struct {
	Symbol       string
	Price        float64
	Size         uint32
	Timestamp    uint64 // nanoseconds since Unix epoch
	TotalVolume  uint32
	SubProvider  SubProvider
	MarketCenter string // single UTF-16BE code unit, decoded
	Condition    string
}

// Quote is a single best-bid/ask update, decoded from the wire and
// handed to the user's onQuote callback.
type Quote struct {
	Type         QuoteType
	Symbol       string
	Price        float64
	Size         uint32
	Timestamp    uint64
	SubProvider  SubProvider
	MarketCenter string
	Condition    string
}

// Channel is a subscription target: a 1-20 character symbol, or the
// reserved value Lobby meaning "all symbols".
type Channel string

// Lobby is the reserved channel meaning "all symbols"; it requires
// firehose entitlement. Its wire token is FirehoseToken, not its own
// literal string.
const Lobby Channel = "$lobby"

// FirehoseToken is the control-frame wire token sent in place of
// Lobby when joining/leaving the firehose channel.
const FirehoseToken = "$FIREHOSE"

// MaxChannelLength is the legacy v1 channel-name limit, retained for
// safety; channels longer than this are rejected by the subscription
// registry.
const MaxChannelLength = 20

// SubscriptionEntry pairs a channel with its per-channel trades-only
// flag.
type SubscriptionEntry struct {
	Channel    Channel
	TradesOnly bool
}

// Tick is a replay-only record: a receive timestamp paired with a
// synthesized single-message frame payload usable by the codec
// unchanged.
type Tick struct {
	ReceiveTime uint64
	Payload     []byte
}
