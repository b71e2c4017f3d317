package revenue

import (
	"time"

	"github.com/veritoken/rewards/id"
	"github.com/veritoken/rewards/types"
)

type FeeKind string

const (
	FeeMinting      FeeKind = "minting"
	FeeVerification FeeKind = "verification"
	FeeHighValue    FeeKind = "high_value"
)

// MaxFeeRateBps is the hard ceiling on any fee rate (10%).
const MaxFeeRateBps = 1000

// FeeConfig holds the fee rates for one credential. The record with the
// zero credential ID is the global default, used whenever a credential has
// no active config of its own.
type FeeConfig struct {
	types.Entity
	Credential      types.CredentialID `json:"credential"`
	MintingBps      int64              `json:"minting_bps"`
	VerificationBps int64              `json:"verification_bps"`
	HighValueBps    int64              `json:"high_value_bps"`
	Active          bool               `json:"active"`
}

// RateFor returns the basis-point rate for the given fee kind.
// Unknown kinds rate at zero, which makes the fee a no-op.
func (c *FeeConfig) RateFor(kind FeeKind) int64 {
	switch kind {
	case FeeMinting:
		return c.MintingBps
	case FeeVerification:
		return c.VerificationBps
	case FeeHighValue:
		return c.HighValueBps
	default:
		return 0
	}
}

// WithinBounds reports whether every rate is within [0, MaxFeeRateBps].
func (c *FeeConfig) WithinBounds() bool {
	for _, bps := range []int64{c.MintingBps, c.VerificationBps, c.HighValueBps} {
		if bps < 0 || bps > MaxFeeRateBps {
			return false
		}
	}
	return true
}

// Pool is the per-credential revenue pool. All three accumulators are
// non-negative and satisfy TotalCollected == TotalDistributed + PendingDistribution
// outside of an in-flight operation.
type Pool struct {
	types.Entity
	Credential          types.CredentialID `json:"credential"`
	TotalCollected      types.Money        `json:"total_collected"`
	TotalDistributed    types.Money        `json:"total_distributed"`
	PendingDistribution types.Money        `json:"pending_distribution"`
	LastDistributionAt  time.Time          `json:"last_distribution_at"`
}

// Balanced reports whether the pool accumulators reconcile.
func (p *Pool) Balanced() bool {
	return p.TotalCollected.Amount == p.TotalDistributed.Amount+p.PendingDistribution.Amount
}

// HolderReward tracks one holder's claim history against one credential's
// pool. The claimable share is always computed live; only the claimed
// total and the last claim time are durable.
type HolderReward struct {
	types.Entity
	Credential   types.CredentialID `json:"credential"`
	Holder       types.Address      `json:"holder"`
	TotalClaimed types.Money        `json:"total_claimed"`
	LastClaimAt  time.Time          `json:"last_claim_at"`
}

// FeeEvent is the durable receipt of one fee collection.
type FeeEvent struct {
	types.Entity
	ID         id.FeeEventID      `json:"id"`
	Credential types.CredentialID `json:"credential"`
	Payer      types.Address      `json:"payer"`
	Kind       FeeKind            `json:"kind"`
	Amount     types.Money        `json:"amount"`
}

// Distribution is the durable receipt of one revenue distribution snapshot.
type Distribution struct {
	types.Entity
	ID         id.DistributionID  `json:"id"`
	Credential types.CredentialID `json:"credential"`
	Amount     types.Money        `json:"amount"`
	Supply     int64              `json:"supply"`
}

// Claim is the durable receipt of one reward claim payout.
type Claim struct {
	types.Entity
	ID         id.RewardClaimID   `json:"id"`
	Credential types.CredentialID `json:"credential"`
	Holder     types.Address      `json:"holder"`
	Amount     types.Money        `json:"amount"`
}
