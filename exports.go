package rewards

import "github.com/veritoken/rewards/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// CredentialID is re-exported from types package.
type CredentialID = types.CredentialID

// Address is re-exported from types package.
type Address = types.Address

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Money constructors
var (
	USDC = types.USDC
	USDT = types.USDT
	DAI  = types.DAI
	USD  = types.USD
	Zero = types.Zero
	Sum  = types.Sum
)

// Re-export CredentialID parsers
var (
	ParseCredentialID     = types.ParseCredentialID
	MustParseCredentialID = types.MustParseCredentialID
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
