// Package rewards provides the credential rewards engine for Go applications.
//
// The engine is designed as a library, not a service. Import it directly into
// the application that fronts your credential platform. It runs two ledgers
// over one store:
//
//   - Fee & revenue ledger: platform fees collected in a stablecoin per
//     credential operation, pooled per credential, distributed to token
//     holders pro rata, claimed on a cooldown.
//   - Emission ledger: reward tokens minted against holding time at a
//     decaying, tunable per-day rate, capped by the token's max supply.
//
// All on-chain effects go through three narrow interfaces in the chain
// package (credential registry, token ledger, settlement currency); the
// engine itself never talks to a node.
//
// # Quick Start
//
// Create an engine instance with your preferred store:
//
//	import (
//	    "github.com/veritoken/rewards"
//	    "github.com/veritoken/rewards/store/memory"
//	)
//
//	eng := rewards.New(memory.New(), registry, token,
//	    rewards.WithSettlement(settlement),
//	)
//
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
// # Core Concepts
//
// Fees are charged as basis points of a fixed base operation value:
//
//	// 1% minting fee, 0.5% verification fee, 2% high-value fee
//	eng.SetFeeConfig(ctx, credential, 100, 50, 200)
//
//	fee, err := eng.CollectFee(ctx, credential, payer, revenue.FeeMinting)
//
// Collected fees accumulate in the credential's pool as pending revenue.
// Distribution opens the pending amount for holder claims; no money moves
// until a holder pulls their share:
//
//	distributed, err := eng.DistributeRevenue(ctx, credential)
//	pending, err := eng.PendingRewards(ctx, credential, holder)
//	paid, err := eng.ClaimRewards(ctx, credential, holder)
//
// Token emissions accrue per whole day held and are minted on claim:
//
//	amount, err := eng.ClaimTokens(ctx, credential, holder)
//
// # Arithmetic
//
// All monetary and emission calculations use integer arithmetic; there is
// no floating point anywhere in the engine. Money amounts are in the
// smallest unit of the settlement currency (six decimals for usdc).
// Divisions floor exactly once over the full product, with big.Int
// intermediates where products could overflow.
//
// # TypeID
//
// The engine's own durable records use TypeID identifiers:
//
//	fevt_01h2xcejqtf2nbrexx3vqjhp41  // fee event
//	dist_01h2xcejqtf2nbrexx3vqjhp41  // distribution
//	clm_01h455vb4pex5vsknk084sn02q   // reward claim
//	mint_01h455vb4pex5vsknk084sn02q  // emission mint
//
// Credential identifiers are not TypeIDs: they are opaque 32-byte values
// assigned by the credential platform (types.CredentialID).
package rewards
