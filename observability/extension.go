// Package observability provides a metrics plugin for the rewards engine
// that records ledger event counts and amounts via an injected MetricFactory.
package observability

import (
	"context"

	"github.com/veritoken/rewards/emission"
	"github.com/veritoken/rewards/plugin"
	"github.com/veritoken/rewards/revenue"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin               = (*MetricsExtension)(nil)
	_ plugin.OnInit               = (*MetricsExtension)(nil)
	_ plugin.OnFeeCollected       = (*MetricsExtension)(nil)
	_ plugin.OnRevenueDistributed = (*MetricsExtension)(nil)
	_ plugin.OnRewardsClaimed     = (*MetricsExtension)(nil)
	_ plugin.OnTokensClaimed      = (*MetricsExtension)(nil)
	_ plugin.OnClaimRejected      = (*MetricsExtension)(nil)
	_ plugin.OnSupplyCapReached   = (*MetricsExtension)(nil)
	_ plugin.OnConfigChanged      = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide ledger metrics.
// Register it as an engine plugin to automatically track rewards activity.
type MetricsExtension struct {
	factory MetricFactory

	// Fee & revenue metrics
	FeesCollected      Counter
	FeeAmount          Histogram
	RevenueDistributed Counter
	DistributionAmount Histogram
	RewardsClaimed     Counter
	ClaimAmount        Histogram

	// Emission metrics
	TokensClaimed Counter
	MintAmount    Histogram

	// Rejection metrics
	ClaimsRejected Counter
	SupplyCapHits  Counter
	ConfigChanges  Counter

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided
// MetricFactory. Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		FeesCollected:      factory.Counter("rewards.fees.collected"),
		FeeAmount:          factory.Histogram("rewards.fee.amount"),
		RevenueDistributed: factory.Counter("rewards.revenue.distributed"),
		DistributionAmount: factory.Histogram("rewards.distribution.amount"),
		RewardsClaimed:     factory.Counter("rewards.rewards.claimed"),
		ClaimAmount:        factory.Histogram("rewards.claim.amount"),

		TokensClaimed: factory.Counter("rewards.tokens.claimed"),
		MintAmount:    factory.Histogram("rewards.mint.amount"),

		ClaimsRejected: factory.Counter("rewards.claims.rejected"),
		SupplyCapHits:  factory.Counter("rewards.supply_cap.hits"),
		ConfigChanges:  factory.Counter("rewards.config.changes"),

		StoreErrors:  factory.Counter("rewards.store.errors"),
		PluginErrors: factory.Counter("rewards.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Fee & revenue hooks
// ──────────────────────────────────────────────────

// OnFeeCollected implements plugin.OnFeeCollected.
func (m *MetricsExtension) OnFeeCollected(_ context.Context, event interface{}) error {
	m.FeesCollected.Inc()
	if ev, ok := event.(*revenue.FeeEvent); ok {
		m.FeeAmount.Observe(float64(ev.Amount.Amount))
	}
	return nil
}

// OnRevenueDistributed implements plugin.OnRevenueDistributed.
func (m *MetricsExtension) OnRevenueDistributed(_ context.Context, distribution interface{}) error {
	m.RevenueDistributed.Inc()
	if d, ok := distribution.(*revenue.Distribution); ok {
		m.DistributionAmount.Observe(float64(d.Amount.Amount))
	}
	return nil
}

// OnRewardsClaimed implements plugin.OnRewardsClaimed.
func (m *MetricsExtension) OnRewardsClaimed(_ context.Context, claim interface{}) error {
	m.RewardsClaimed.Inc()
	if c, ok := claim.(*revenue.Claim); ok {
		m.ClaimAmount.Observe(float64(c.Amount.Amount))
	}
	return nil
}

// ──────────────────────────────────────────────────
// Emission hooks
// ──────────────────────────────────────────────────

// OnTokensClaimed implements plugin.OnTokensClaimed.
func (m *MetricsExtension) OnTokensClaimed(_ context.Context, mint interface{}) error {
	m.TokensClaimed.Inc()
	if mt, ok := mint.(*emission.Mint); ok {
		m.MintAmount.Observe(float64(mt.Amount))
	}
	return nil
}

// OnClaimRejected implements plugin.OnClaimRejected.
func (m *MetricsExtension) OnClaimRejected(_ context.Context, _, _ string, _ error) error {
	m.ClaimsRejected.Inc()
	return nil
}

// OnSupplyCapReached implements plugin.OnSupplyCapReached.
func (m *MetricsExtension) OnSupplyCapReached(_ context.Context, _ string, _, _ int64) error {
	m.SupplyCapHits.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Admin hooks
// ──────────────────────────────────────────────────

// OnConfigChanged implements plugin.OnConfigChanged.
func (m *MetricsExtension) OnConfigChanged(_ context.Context, _ string, _ interface{}) error {
	m.ConfigChanges.Inc()
	return nil
}
