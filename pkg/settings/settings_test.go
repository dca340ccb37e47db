package settings

import (
	"errors"
	"testing"
	"time"

	"github.com/Klingon-tech/klingnet-walletcore/config"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/block0"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/fragment"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/tx"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
	"github.com/lightningnetwork/lnd/clock"
)

func testInit() Init {
	return Init{
		Fees:              tx.LinearFee{Constant: 10, Coefficient: 2},
		Discrimination:    types.Test,
		Block0Hash:        types.Hash{0x42},
		Block0Date:        1_000_000,
		SlotDuration:      10,
		TimeEra:           TimeEra{SlotsPerEpoch: 100},
		TxMaxExpiryEpochs: 2,
	}
}

func mustSettings(t *testing.T, in Init) *Settings {
	t.Helper()
	s, err := New(in)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Init)
	}{
		{"zero slot duration", func(in *Init) { in.SlotDuration = 0 }},
		{"zero slots per epoch", func(in *Init) { in.TimeEra.SlotsPerEpoch = 0 }},
		{"bad discrimination", func(in *Init) { in.Discrimination = 7 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInit()
			tt.mutate(&in)
			if _, err := New(in); !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("New() error = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestFromBlock0(t *testing.T) {
	g := config.DefaultGenesis(config.Testnet)
	g.Fees = tx.LinearFee{
		Constant:       3,
		Coefficient:    4,
		Certificate:    5,
		PerVote:        tx.PerVoteCertificateFees{VoteCast: 6, VotePlan: 7},
		PerCertificate: tx.PerCertificateFees{StakeDelegation: 8},
	}
	g.EpochStart = 11
	g.SlotStart = 12
	b, err := block0.Build(g)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	raw, err := b.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	s, err := FromBlock0(raw)
	if err != nil {
		t.Fatalf("FromBlock0() error: %v", err)
	}
	if s.Fees() != g.Fees {
		t.Errorf("Fees() = %+v, want %+v", s.Fees(), g.Fees)
	}
	if s.Discrimination() != types.Test {
		t.Errorf("Discrimination() = %v, want test", s.Discrimination())
	}
	if s.Block0Hash() != b.Hash() {
		t.Errorf("Block0Hash() = %s, want %s", s.Block0Hash(), b.Hash())
	}
	if s.Block0Date() != g.Block0Date || s.SlotDuration() != g.SlotDuration {
		t.Errorf("time = %d/%d, want %d/%d", s.Block0Date(), s.SlotDuration(), g.Block0Date, g.SlotDuration)
	}
	want := TimeEra{EpochStart: 11, SlotStart: 12, SlotsPerEpoch: g.SlotsPerEpoch}
	if s.TimeEra() != want {
		t.Errorf("TimeEra() = %+v, want %+v", s.TimeEra(), want)
	}
	if s.TxMaxExpiryEpochs() != g.TxMaxExpiryEpochs {
		t.Errorf("TxMaxExpiryEpochs() = %d, want %d", s.TxMaxExpiryEpochs(), g.TxMaxExpiryEpochs)
	}
}

func TestFromBlock_MissingParam(t *testing.T) {
	initial := fragment.NewInitial([]fragment.ConfigParam{
		fragment.UintParam(fragment.TagDiscrimination, 0),
		fragment.UintParam(fragment.TagBlock0Date, 5),
		fragment.UintParam(fragment.TagSlotDuration, 1),
	})
	b, err := block0.New(5, []*fragment.Fragment{initial})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := FromBlock(b); !errors.Is(err, block0.ErrMalformedBlock0) {
		t.Errorf("FromBlock() error = %v, want ErrMalformedBlock0", err)
	}
}

func TestFromBlock_TimestampMismatch(t *testing.T) {
	g := config.DefaultGenesis(config.Testnet)
	frags := []*fragment.Fragment{fragment.NewInitial(block0.InitialParams(g, types.Test))}
	b, err := block0.New(g.Block0Date+1, frags)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := FromBlock(b); !errors.Is(err, block0.ErrMalformedBlock0) {
		t.Errorf("FromBlock() error = %v, want ErrMalformedBlock0", err)
	}
}

func TestFromBlock0_Errors(t *testing.T) {
	if _, err := FromBlock0([]byte{0x00}); !errors.Is(err, block0.ErrMalformedBlock0) {
		t.Errorf("FromBlock0(garbage) error = %v, want ErrMalformedBlock0", err)
	}
}

func TestBlockDateAt(t *testing.T) {
	s := mustSettings(t, testInit())
	start := time.Unix(1_000_000, 0)

	tests := []struct {
		name   string
		offset time.Duration
		want   types.BlockDate
	}{
		{"block0", 0, types.BlockDate{Epoch: 0, Slot: 0}},
		{"mid slot", 15 * time.Second, types.BlockDate{Epoch: 0, Slot: 1}},
		{"last slot", 999 * time.Second, types.BlockDate{Epoch: 0, Slot: 99}},
		{"next epoch", 1000 * time.Second, types.BlockDate{Epoch: 1, Slot: 0}},
		{"later", 2530 * time.Second, types.BlockDate{Epoch: 2, Slot: 53}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.BlockDateAt(start.Add(tt.offset))
			if err != nil {
				t.Fatalf("BlockDateAt() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("BlockDateAt() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := s.BlockDateAt(start.Add(-time.Second)); !errors.Is(err, ErrBeforeBlock0) {
		t.Errorf("BlockDateAt(before) error = %v, want ErrBeforeBlock0", err)
	}
}

func TestBlockDateAt_TimeEra(t *testing.T) {
	in := testInit()
	in.TimeEra = TimeEra{EpochStart: 10, SlotStart: 50, SlotsPerEpoch: 100}
	s := mustSettings(t, in)

	got, err := s.BlockDateAt(time.Unix(1_000_000+600, 0))
	if err != nil {
		t.Fatalf("BlockDateAt() error: %v", err)
	}
	if want := (types.BlockDate{Epoch: 10, Slot: 10}); got != want {
		t.Errorf("BlockDateAt() = %v, want %v", got, want)
	}
	if _, err := s.BlockDateAt(time.Unix(1_000_000+100, 0)); !errors.Is(err, ErrBeforeBlock0) {
		t.Errorf("slot before era error = %v, want ErrBeforeBlock0", err)
	}
}

func TestNow_TestClock(t *testing.T) {
	s := mustSettings(t, testInit())
	c := clock.NewTestClock(time.Unix(1_000_000, 0))

	d, err := s.Now(c)
	if err != nil || d != (types.BlockDate{}) {
		t.Fatalf("Now() = %v, %v; want 0.0", d, err)
	}
	c.SetTime(time.Unix(1_000_000+1010, 0))
	d, err = s.Now(c)
	if err != nil || d != (types.BlockDate{Epoch: 1, Slot: 1}) {
		t.Errorf("Now() = %v, %v; want 1.1", d, err)
	}
}

func TestMaxExpirationDate(t *testing.T) {
	s := mustSettings(t, testInit())
	got, err := s.MaxExpirationDate(time.Unix(1_000_000+1500, 0))
	if err != nil {
		t.Fatalf("MaxExpirationDate() error: %v", err)
	}
	if want := (types.BlockDate{Epoch: 3, Slot: 99}); got != want {
		t.Errorf("MaxExpirationDate() = %v, want %v", got, want)
	}
}

func TestValidateValidUntil(t *testing.T) {
	s := mustSettings(t, testInit())
	now := time.Unix(1_000_000+1500, 0) // 1.50

	tests := []struct {
		name    string
		date    types.BlockDate
		wantErr bool
	}{
		{"current slot", types.BlockDate{Epoch: 1, Slot: 50}, false},
		{"max", types.BlockDate{Epoch: 3, Slot: 99}, false},
		{"past", types.BlockDate{Epoch: 1, Slot: 49}, true},
		{"too far", types.BlockDate{Epoch: 4, Slot: 0}, true},
		{"slot out of epoch", types.BlockDate{Epoch: 2, Slot: 100}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateValidUntil(now, tt.date)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateValidUntil(%v) error = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidValidityDate) {
				t.Errorf("error = %v, want ErrInvalidValidityDate", err)
			}
		})
	}
}
