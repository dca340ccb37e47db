package main

import (
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/settings"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

func TestParseValidUntil(t *testing.T) {
	s, err := settings.New(settings.Init{
		Block0Date:   1000,
		SlotDuration: 2,
		TimeEra:      settings.TimeEra{SlotsPerEpoch: 100},
	})
	if err != nil {
		t.Fatalf("settings.New() error: %v", err)
	}

	tests := []struct {
		in      string
		want    types.BlockDate
		wantErr bool
	}{
		{"3.14", types.BlockDate{Epoch: 3, Slot: 14}, false},
		{"0.0", types.BlockDate{}, false},
		{"3", types.BlockDate{}, true},
		{"a.1", types.BlockDate{}, true},
		{"1.-1", types.BlockDate{}, true},
	}
	// 305 slots after block0: epoch 3, slot 5.
	c := clock.NewTestClock(time.Unix(1000+610, 0))

	for _, tt := range tests {
		got, err := parseValidUntil(c, s, tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseValidUntil(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseValidUntil(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	// Empty picks the last slot of the furthest allowed epoch.
	got, err := parseValidUntil(c, s, "")
	if err != nil {
		t.Fatalf("parseValidUntil(\"\") error: %v", err)
	}
	if want := (types.BlockDate{Epoch: 3, Slot: 99}); got != want {
		t.Errorf("default = %v, want %v", got, want)
	}

	// Before block0 there is no current date to expire from.
	early := clock.NewTestClock(time.Unix(999, 0))
	if _, err := parseValidUntil(early, s, ""); err == nil {
		t.Error("parseValidUntil() before block0 should fail")
	}
}
