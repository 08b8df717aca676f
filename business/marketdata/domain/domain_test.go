package domain

import "testing"

func TestParseProvider(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Provider
		wantErr bool
	}{
		{name: "empty_defaults_to_realtime", input: "", want: ProviderRealtime},
		{name: "lowercase_realtime", input: "realtime", want: ProviderRealtime},
		{name: "uppercase_realtime", input: "REALTIME", want: ProviderRealtime},
		{name: "delayed_sip", input: "delayed_sip", want: ProviderDelayedSIP},
		{name: "nasdaq_basic", input: "NASDAQ_BASIC", want: ProviderNasdaqBasic},
		{name: "cboe_one", input: "cboe_one", want: ProviderCBOEOne},
		{name: "manual", input: "MANUAL", want: ProviderManual},
		{name: "unknown_is_error", input: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProvider(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseProvider(%q) = nil error, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProvider(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseProvider(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestProvider_String(t *testing.T) {
	tests := []struct {
		p    Provider
		want string
	}{
		{ProviderRealtime, "REALTIME"},
		{ProviderDelayedSIP, "DELAYED_SIP"},
		{ProviderNasdaqBasic, "NASDAQ_BASIC"},
		{ProviderCBOEOne, "CBOE_ONE"},
		{ProviderManual, "MANUAL"},
		{Provider(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("Provider(%d).String() = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestParseSubProvider(t *testing.T) {
	tests := []struct {
		name string
		in   byte
		want SubProvider
	}{
		{name: "none", in: 0, want: SubProviderNone},
		{name: "iex", in: byte(SubProviderIEX), want: SubProviderIEX},
		{name: "cboe_one_is_max_known", in: byte(SubProviderCBOEOne), want: SubProviderCBOEOne},
		{name: "out_of_range_falls_back_to_none", in: byte(SubProviderCBOEOne) + 1, want: SubProviderNone},
		{name: "255_falls_back_to_none", in: 255, want: SubProviderNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSubProvider(tt.in); got != tt.want {
				t.Errorf("ParseSubProvider(%d) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSubProvider_String(t *testing.T) {
	tests := []struct {
		s    SubProvider
		want string
	}{
		{SubProviderCTA_A, "CTA_A"},
		{SubProviderCTA_B, "CTA_B"},
		{SubProviderUTP, "UTP"},
		{SubProviderOTC, "OTC"},
		{SubProviderNasdaqBasic, "NASDAQ_BASIC"},
		{SubProviderIEX, "IEX"},
		{SubProviderCBOEOne, "CBOE_ONE"},
		{SubProviderNone, "NONE"},
	}

	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("SubProvider(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestQuoteType_String(t *testing.T) {
	if got := QuoteTypeBid.String(); got != "Bid" {
		t.Errorf("QuoteTypeBid.String() = %q, want %q", got, "Bid")
	}
	if got := QuoteTypeAsk.String(); got != "Ask" {
		t.Errorf("QuoteTypeAsk.String() = %q, want %q", got, "Ask")
	}
}
