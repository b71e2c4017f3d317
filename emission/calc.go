package emission

import (
	"math/big"
	"time"
)

// DecayFactor returns the compounded decay factor in basis points for the
// given observation time. The factor starts at 10000 (1.0x) and loses 1%
// once per full 30-day period elapsed since the deployment anchor:
//
//	f = floor(f x 9900 / 10000), applied once per period.
//
// The stepwise truncating loop is deliberate. Integer truncation
// accumulates differently than a closed-form power, and claim amounts
// depend on the exact truncated sequence.
func DecayFactor(deployedAt, now time.Time) int64 {
	f := int64(FullDecayBps)
	if !now.After(deployedAt) {
		return f
	}
	periods := int64(now.Sub(deployedAt) / DecayPeriod)
	for i := int64(0); i < periods && f > 0; i++ {
		f = f * decayKeepBps / FullDecayBps
	}
	return f
}

// EffectiveRate computes the per-day emission rate:
//
//	floor(tokenBaseRate x multiplier x decayBps x antiInflationBps / (100 x 10000 x 10000))
//
// The division happens once over the full product. Flooring each factor
// separately would compound rounding loss, so the intermediate product is
// taken in arbitrary precision and divided at the end.
func EffectiveRate(tokenBaseRate, multiplier, decayBps, antiInflationBps int64) int64 {
	if tokenBaseRate <= 0 || multiplier <= 0 || decayBps <= 0 || antiInflationBps <= 0 {
		return 0
	}

	num := new(big.Int).SetInt64(tokenBaseRate)
	num.Mul(num, big.NewInt(multiplier))
	num.Mul(num, big.NewInt(decayBps))
	num.Mul(num, big.NewInt(antiInflationBps))

	den := new(big.Int).SetInt64(100)
	den.Mul(den, big.NewInt(FullDecayBps))
	den.Mul(den, big.NewInt(FullDecayBps))

	return num.Div(num, den).Int64()
}

// Input carries everything the pure emission computation needs. The
// engine assembles one from a Params snapshot, the credential's override,
// and the token ledger's view of the backing token.
type Input struct {
	TokenBaseRate    int64 // tokens per day
	Multiplier       int64 // percent, 100 = 1.0x
	AntiInflationBps int64
	DeployedAt       time.Time // decay anchor (engine deployment, not token creation)
	StartTime        time.Time // last claim, or token creation when never claimed
	Now              time.Time
	CurrentSupply    int64
	MaxSupply        int64
}

// Calculate returns the claimable emission amount and the effective
// per-day rate. Partial days never accrue; the amount is clamped to the
// token's remaining mint headroom. A zero amount with a nonzero rate
// means the holder accrued nothing yet (or the cap absorbed it all).
func Calculate(in Input) (amount, rate int64) {
	if !in.Now.After(in.StartTime) {
		return 0, 0
	}
	days := int64(in.Now.Sub(in.StartTime) / (24 * time.Hour))
	if days == 0 {
		return 0, 0
	}

	decay := DecayFactor(in.DeployedAt, in.Now)
	rate = EffectiveRate(in.TokenBaseRate, in.Multiplier, decay, in.AntiInflationBps)

	amount = rate * days
	headroom := in.MaxSupply - in.CurrentSupply
	if headroom <= 0 {
		return 0, rate
	}
	if amount > headroom {
		amount = headroom
	}
	return amount, rate
}
