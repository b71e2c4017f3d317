package emission

import (
	"time"

	"github.com/veritoken/rewards/id"
	"github.com/veritoken/rewards/types"
)

// Parameter bounds. Setters reject values outside these ranges.
const (
	MinBaseRate     = 10
	MaxBaseRate     = 50
	DefaultBaseRate = 10

	MinAntiInflationBps     = 8000
	MaxAntiInflationBps     = 12000
	DefaultAntiInflationBps = 10000

	MinMultiplier     = 80
	MaxMultiplier     = 500
	DefaultMultiplier = 100

	// MinClaimInterval is the floor for the per-credential claim interval
	// and its default.
	MinClaimInterval = 24 * time.Hour

	// DecayPeriod is the interval at which the decay factor compounds.
	DecayPeriod = 30 * 24 * time.Hour

	// decayKeepBps is the fraction of the decay factor retained per
	// elapsed period, in basis points.
	decayKeepBps = 9900

	// FullDecayBps is the undecayed decay factor (1.0x).
	FullDecayBps = 10000
)

// Params is the global emission configuration. It is versioned: every
// setter bumps Version, and each engine operation reads one snapshot up
// front so a concurrent config change cannot straddle a computation.
type Params struct {
	types.Entity
	Version          int64     `json:"version"`
	BaseRate         int64     `json:"base_rate"` // tokens per day, fallback when the token defines none
	AntiInflationBps int64     `json:"anti_inflation_bps"`
	DeployedAt       time.Time `json:"deployed_at"` // immutable decay anchor
}

// Override holds the per-credential emission tuning. Absent records read
// as the defaults.
type Override struct {
	types.Entity
	Credential       types.CredentialID `json:"credential"`
	Multiplier       int64              `json:"multiplier"` // percent, 100 = 1.0x
	MinClaimInterval time.Duration      `json:"min_claim_interval"`
}

// CredentialState is the per-credential emission aggregate.
type CredentialState struct {
	types.Entity
	Credential    types.CredentialID `json:"credential"`
	TotalMinted   int64              `json:"total_minted"`
	ActiveHolders int64              `json:"active_holders"`
}

// HolderState tracks one holder's emission claims against one credential.
// A zero LastClaimAt means the holder has never claimed; accrual then
// starts at the token's creation time and the min-interval check is
// skipped. Active flips to true exactly once, on the first successful
// claim, and drives the active-holder counters.
type HolderState struct {
	types.Entity
	Credential  types.CredentialID `json:"credential"`
	Holder      types.Address      `json:"holder"`
	LastClaimAt time.Time          `json:"last_claim_at"`
	Active      bool               `json:"active"`
}

// GlobalStats is the cross-credential aggregate, maintained incrementally.
type GlobalStats struct {
	types.Entity
	TotalMinted            int64 `json:"total_minted"`
	ActiveHolders          int64 `json:"active_holders"`
	CredentialsWithMinting int64 `json:"credentials_with_minting"`
}

// Stats is the per-credential statistics view returned to callers.
type Stats struct {
	TotalMinted   int64 `json:"total_minted"`
	ActiveHolders int64 `json:"active_holders"`
	AverageRate   int64 `json:"average_rate"` // tokenBaseRate x multiplier / 100
}

// Mint is the durable receipt of one emission claim.
type Mint struct {
	types.Entity
	ID         id.MintID          `json:"id"`
	Credential types.CredentialID `json:"credential"`
	Holder     types.Address      `json:"holder"`
	Amount     int64              `json:"amount"`
	Rate       int64              `json:"rate"` // effective rate at mint time
}
