package store

import (
	"context"

	"github.com/veritoken/rewards/emission"
	"github.com/veritoken/rewards/revenue"
	"github.com/veritoken/rewards/types"
)

// Store is the unified storage interface for all rewards engine records.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Fee & revenue ledger methods
	GetFeeConfig(ctx context.Context, credential types.CredentialID) (*revenue.FeeConfig, error)
	PutFeeConfig(ctx context.Context, cfg *revenue.FeeConfig) error
	GetPool(ctx context.Context, credential types.CredentialID) (*revenue.Pool, error)
	PutPool(ctx context.Context, p *revenue.Pool) error
	GetHolderReward(ctx context.Context, credential types.CredentialID, holder types.Address) (*revenue.HolderReward, error)
	PutHolderReward(ctx context.Context, r *revenue.HolderReward) error
	RecordFeeEvent(ctx context.Context, ev *revenue.FeeEvent) error
	RecordDistribution(ctx context.Context, d *revenue.Distribution) error
	RecordClaim(ctx context.Context, c *revenue.Claim) error
	ListFeeEvents(ctx context.Context, credential types.CredentialID, opts revenue.ListOpts) ([]*revenue.FeeEvent, error)
	ListClaims(ctx context.Context, credential types.CredentialID, opts revenue.ListOpts) ([]*revenue.Claim, error)

	// Emission ledger methods
	GetParams(ctx context.Context) (*emission.Params, error)
	PutParams(ctx context.Context, p *emission.Params) error
	GetOverride(ctx context.Context, credential types.CredentialID) (*emission.Override, error)
	PutOverride(ctx context.Context, o *emission.Override) error
	GetCredentialState(ctx context.Context, credential types.CredentialID) (*emission.CredentialState, error)
	PutCredentialState(ctx context.Context, s *emission.CredentialState) error
	GetHolderState(ctx context.Context, credential types.CredentialID, holder types.Address) (*emission.HolderState, error)
	PutHolderState(ctx context.Context, s *emission.HolderState) error
	GetGlobalStats(ctx context.Context) (*emission.GlobalStats, error)
	PutGlobalStats(ctx context.Context, g *emission.GlobalStats) error
	RecordMint(ctx context.Context, m *emission.Mint) error
	ListMints(ctx context.Context, credential types.CredentialID, opts emission.ListOpts) ([]*emission.Mint, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
