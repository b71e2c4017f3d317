package revenue

import (
	"context"

	"github.com/veritoken/rewards/types"
)

// Store is the narrow persistence interface of the fee & revenue ledger.
// Get methods return an error when the record does not exist; callers that
// want get-or-default semantics wrap them.
type Store interface {
	GetFeeConfig(ctx context.Context, credential types.CredentialID) (*FeeConfig, error)
	PutFeeConfig(ctx context.Context, cfg *FeeConfig) error

	GetPool(ctx context.Context, credential types.CredentialID) (*Pool, error)
	PutPool(ctx context.Context, p *Pool) error

	GetHolderReward(ctx context.Context, credential types.CredentialID, holder types.Address) (*HolderReward, error)
	PutHolderReward(ctx context.Context, r *HolderReward) error

	RecordFeeEvent(ctx context.Context, ev *FeeEvent) error
	RecordDistribution(ctx context.Context, d *Distribution) error
	RecordClaim(ctx context.Context, c *Claim) error

	ListFeeEvents(ctx context.Context, credential types.CredentialID, opts ListOpts) ([]*FeeEvent, error)
	ListClaims(ctx context.Context, credential types.CredentialID, opts ListOpts) ([]*Claim, error)
}

type ListOpts struct {
	Limit  int
	Offset int
}
