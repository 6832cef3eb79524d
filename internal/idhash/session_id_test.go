package idhash

import (
	"strings"
	"testing"

	"toto-sim-lab/internal/domain"
)

func TestComputeSessionID(t *testing.T) {
	player, err := domain.NewNumberSet([]int{4, 12, 19, 23, 33, 40})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		seed     int64
		maxDraws int64
		mode     string
		workers  int
	}{
		{name: "sequential run", seed: 42, maxDraws: 1000000, mode: domain.ModeSequential, workers: 1},
		{name: "parallel run", seed: 42, maxDraws: 1000000, mode: domain.ModeParallel, workers: 8},
		{name: "small budget", seed: -7, maxDraws: 1, mode: domain.ModeSequential, workers: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSessionID(player, tt.seed, tt.maxDraws, tt.mode, tt.workers)

			if len(got) != 64 {
				t.Errorf("ComputeSessionID() length = %d, want 64", len(got))
			}
			if got != strings.ToLower(got) {
				t.Errorf("expected lowercase hex, got %s", got)
			}

			// Same inputs, same ID
			got2 := ComputeSessionID(player, tt.seed, tt.maxDraws, tt.mode, tt.workers)
			if got != got2 {
				t.Errorf("ComputeSessionID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeSessionID_DistinguishesParameters(t *testing.T) {
	player, _ := domain.NewNumberSet([]int{4, 12, 19, 23, 33, 40})
	other, _ := domain.NewNumberSet([]int{1, 2, 3, 4, 5, 6})

	base := ComputeSessionID(player, 42, 1000000, domain.ModeSequential, 1)

	variants := []string{
		ComputeSessionID(other, 42, 1000000, domain.ModeSequential, 1),
		ComputeSessionID(player, 43, 1000000, domain.ModeSequential, 1),
		ComputeSessionID(player, 42, 999999, domain.ModeSequential, 1),
		ComputeSessionID(player, 42, 1000000, domain.ModeParallel, 1),
		ComputeSessionID(player, 42, 1000000, domain.ModeSequential, 2),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with the base ID", i)
		}
	}
}

func TestShortSessionID(t *testing.T) {
	player, _ := domain.NewNumberSet([]int{4, 12, 19, 23, 33, 40})
	full := ComputeSessionID(player, 42, 1000000, domain.ModeSequential, 1)

	short := ShortSessionID(full)
	if short == full || short == "" {
		t.Fatalf("expected a shortened ID, got %q", short)
	}
	if len(short) > 12 {
		t.Errorf("short ID unexpectedly long: %q", short)
	}

	// Deterministic and stable against re-encoding
	if ShortSessionID(full) != short {
		t.Error("short ID not deterministic")
	}

	// Non-hex input passes through untouched
	if got := ShortSessionID("not-hex"); got != "not-hex" {
		t.Errorf("expected passthrough, got %q", got)
	}
}
