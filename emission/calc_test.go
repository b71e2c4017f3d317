package emission_test

import (
	"testing"
	"time"

	"github.com/veritoken/rewards/emission"
)

var deployed = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestDecayFactor(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int64
	}{
		{"at deployment", deployed, 10000},
		{"before deployment", deployed.Add(-time.Hour), 10000},
		{"under one period", deployed.Add(29 * 24 * time.Hour), 10000},
		{"exactly one period", deployed.Add(30 * 24 * time.Hour), 9900},
		{"one period plus a day", deployed.Add(31 * 24 * time.Hour), 9900},
		{"two periods", deployed.Add(60 * 24 * time.Hour), 9801},
		// floor(9801*9900/10000) = 9702, not round(9900^3/10000^2) = 9703.
		{"three periods truncates stepwise", deployed.Add(90 * 24 * time.Hour), 9702},
		{"twelve periods", deployed.Add(360 * 24 * time.Hour), 8856},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := emission.DecayFactor(deployed, tt.now)
			if got != tt.want {
				t.Errorf("DecayFactor = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecayFactorFarFuture(t *testing.T) {
	// Compounding 1% loss per period decays toward zero and must not
	// loop forever or go negative.
	got := emission.DecayFactor(deployed, deployed.Add(100_000*24*time.Hour))
	if got != 0 {
		t.Errorf("DecayFactor after extreme elapsed time = %d, want 0", got)
	}
}

func TestEffectiveRate(t *testing.T) {
	tests := []struct {
		name                        string
		base, mult, decay, antiBps  int64
		want                        int64
	}{
		{"all neutral", 10, 100, 10000, 10000, 10},
		{"one decay step", 10, 100, 9900, 10000, 9},
		{"max multiplier", 10, 500, 10000, 10000, 50},
		{"anti-inflation boost", 10, 100, 10000, 12000, 12},
		{"anti-inflation damp", 10, 100, 10000, 8000, 8},
		// 50 x 500 x 9900 x 12000 / 10^10 = 297
		{"all factors combined", 50, 500, 9900, 12000, 297},
		// Single floor over the product: 11 x 150 x 9900 x 9500 = 155182500000,
		// / 10^10 = floor(15.51825) = 15. Flooring per factor would give 14.
		{"floors once over the full product", 11, 150, 9900, 9500, 15},
		{"zero base rate", 0, 100, 10000, 10000, 0},
		{"fully decayed", 10, 100, 0, 10000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := emission.EffectiveRate(tt.base, tt.mult, tt.decay, tt.antiBps)
			if got != tt.want {
				t.Errorf("EffectiveRate = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculate(t *testing.T) {
	base := emission.Input{
		TokenBaseRate:    10,
		Multiplier:       100,
		AntiInflationBps: 10000,
		DeployedAt:       deployed,
		StartTime:        deployed,
		Now:              deployed.Add(5 * 24 * time.Hour),
		CurrentSupply:    1000,
		MaxSupply:        1_000_000,
	}

	tests := []struct {
		name       string
		mutate     func(*emission.Input)
		wantAmount int64
		wantRate   int64
	}{
		{"five whole days", func(in *emission.Input) {}, 50, 10},
		{
			"partial day accrues nothing",
			func(in *emission.Input) { in.Now = in.StartTime.Add(23 * time.Hour) },
			0, 0,
		},
		{
			"start in the future",
			func(in *emission.Input) { in.StartTime = in.Now.Add(time.Hour) },
			0, 0,
		},
		{
			"start equals now",
			func(in *emission.Input) { in.StartTime = in.Now },
			0, 0,
		},
		{
			"day boundary is exclusive below",
			func(in *emission.Input) { in.Now = in.StartTime.Add(47 * time.Hour) },
			10, 10,
		},
		{
			"decay applies after a period",
			func(in *emission.Input) {
				in.StartTime = deployed.Add(30 * 24 * time.Hour)
				in.Now = in.StartTime.Add(5 * 24 * time.Hour)
			},
			45, 9, // rate floor(10x100x9900x10000/10^10) = 9
		},
		{
			"clamped to remaining headroom",
			func(in *emission.Input) { in.MaxSupply = in.CurrentSupply + 30 },
			30, 10,
		},
		{
			"at supply cap",
			func(in *emission.Input) { in.CurrentSupply = in.MaxSupply },
			0, 10,
		},
		{
			"over supply cap",
			func(in *emission.Input) { in.CurrentSupply = in.MaxSupply + 5 },
			0, 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			amount, rate := emission.Calculate(in)
			if amount != tt.wantAmount || rate != tt.wantRate {
				t.Errorf("Calculate = (%d, %d), want (%d, %d)", amount, rate, tt.wantAmount, tt.wantRate)
			}
		})
	}
}

func BenchmarkCalculate(b *testing.B) {
	in := emission.Input{
		TokenBaseRate:    50,
		Multiplier:       500,
		AntiInflationBps: 12000,
		DeployedAt:       deployed,
		StartTime:        deployed.Add(90 * 24 * time.Hour),
		Now:              deployed.Add(365 * 24 * time.Hour),
		CurrentSupply:    500_000,
		MaxSupply:        1_000_000,
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		emission.Calculate(in)
	}
}
