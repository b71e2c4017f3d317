// Package plugin provides an extensible plugin system for the rewards engine.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Fee & revenue hooks
// ──────────────────────────────────────────────────

// OnFeeCollected is called after a platform fee has been pulled into a pool.
type OnFeeCollected interface {
	Plugin
	OnFeeCollected(ctx context.Context, event interface{}) error
}

// OnRevenueDistributed is called after pending revenue is marked distributed.
type OnRevenueDistributed interface {
	Plugin
	OnRevenueDistributed(ctx context.Context, distribution interface{}) error
}

// OnRewardsClaimed is called after a holder claims stablecoin rewards.
type OnRewardsClaimed interface {
	Plugin
	OnRewardsClaimed(ctx context.Context, claim interface{}) error
}

// ──────────────────────────────────────────────────
// Emission hooks
// ──────────────────────────────────────────────────

// OnTokensClaimed is called after tokens are minted for a holder.
type OnTokensClaimed interface {
	Plugin
	OnTokensClaimed(ctx context.Context, mint interface{}) error
}

// OnClaimRejected is called when a claim attempt is rejected.
type OnClaimRejected interface {
	Plugin
	OnClaimRejected(ctx context.Context, credential, holder string, reason error) error
}

// OnSupplyCapReached is called when a mint is clamped or blocked by the
// token's supply cap.
type OnSupplyCapReached interface {
	Plugin
	OnSupplyCapReached(ctx context.Context, credential string, supply, maxSupply int64) error
}

// ──────────────────────────────────────────────────
// Admin hooks
// ──────────────────────────────────────────────────

// OnConfigChanged is called when fee rates or emission parameters change.
type OnConfigChanged interface {
	Plugin
	OnConfigChanged(ctx context.Context, what string, config interface{}) error
}
