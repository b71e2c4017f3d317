package emission

import (
	"context"

	"github.com/veritoken/rewards/types"
)

// Store is the narrow persistence interface of the emission ledger.
// Get methods return an error when the record does not exist; the engine
// wraps them with get-or-default accessors.
type Store interface {
	GetParams(ctx context.Context) (*Params, error)
	PutParams(ctx context.Context, p *Params) error

	GetOverride(ctx context.Context, credential types.CredentialID) (*Override, error)
	PutOverride(ctx context.Context, o *Override) error

	GetCredentialState(ctx context.Context, credential types.CredentialID) (*CredentialState, error)
	PutCredentialState(ctx context.Context, s *CredentialState) error

	GetHolderState(ctx context.Context, credential types.CredentialID, holder types.Address) (*HolderState, error)
	PutHolderState(ctx context.Context, s *HolderState) error

	GetGlobalStats(ctx context.Context) (*GlobalStats, error)
	PutGlobalStats(ctx context.Context, g *GlobalStats) error

	RecordMint(ctx context.Context, m *Mint) error
	ListMints(ctx context.Context, credential types.CredentialID, opts ListOpts) ([]*Mint, error)
}

type ListOpts struct {
	Limit  int
	Offset int
}
