// Package chain defines the engine's boundary to the on-chain world.
//
// The rewards engine never talks to a node directly. It depends on three
// narrow interfaces: the credential registry (who owns which credential and
// which token backs it), the token ledger (supply, balances, minting), and
// the settlement currency (the stablecoin fees are paid and rewards are
// claimed in). Callers supply implementations backed by whatever transport
// they use; tests supply in-memory fakes.
package chain

import (
	"context"
	"time"

	"github.com/veritoken/rewards/types"
)

// Registry resolves credentials to their backing tokens and answers
// ownership queries. A credential that resolves to the zero address is
// unknown to the registry.
type Registry interface {
	// ResolveToken returns the address of the token backing the credential,
	// or the zero address when the credential does not exist.
	ResolveToken(ctx context.Context, credential types.CredentialID) (types.Address, error)

	// IsOwner reports whether holder currently holds at least one unit of
	// the credential's token.
	IsOwner(ctx context.Context, credential types.CredentialID, holder types.Address) (bool, error)
}

// Token is the ledger of the per-credential reward tokens. Amounts are
// whole tokens; the tokens carry no sub-unit decimals.
type Token interface {
	// BalanceOf returns holder's balance of the given token.
	BalanceOf(ctx context.Context, token, holder types.Address) (int64, error)

	// TotalSupply returns the current circulating supply of the token.
	TotalSupply(ctx context.Context, token types.Address) (int64, error)

	// MaxSupply returns the hard supply cap of the token.
	MaxSupply(ctx context.Context, token types.Address) (int64, error)

	// CreatedAt returns the token's creation time.
	CreatedAt(ctx context.Context, token types.Address) (time.Time, error)

	// BaseEmissionRate returns the token's own emission rate in whole
	// tokens per day, or zero when the token defines none.
	BaseEmissionRate(ctx context.Context, token types.Address) (int64, error)

	// Mint creates amount new tokens and credits them to the recipient.
	Mint(ctx context.Context, token, to types.Address, amount int64) error
}

// Settlement moves the settlement currency (a stablecoin) between the
// engine's pool account and external accounts.
type Settlement interface {
	// TransferFrom pulls amount from the payer into the engine's pool.
	// It fails when the payer's balance or allowance is insufficient.
	TransferFrom(ctx context.Context, from types.Address, amount types.Money) error

	// Transfer pays amount out of the engine's pool to the recipient.
	Transfer(ctx context.Context, to types.Address, amount types.Money) error
}
