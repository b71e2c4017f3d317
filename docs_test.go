package rewards_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/veritoken/rewards"
	"github.com/veritoken/rewards/chain/chaintest"
	"github.com/veritoken/rewards/revenue"
	"github.com/veritoken/rewards/store/memory"
	"github.com/veritoken/rewards/types"
)

// TestDocumentationExamples verifies that the examples in the package
// documentation compile and run.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		credential := types.MustParseCredentialID(
			"00000000000000000000000000000000000000000000000000000000000000aa")
		token := types.Address("0xtoken-aa")
		payer := types.Address("0xpayer")
		holder := types.Address("0xholder")

		// Wire the chain boundary (fakes for the demo; real adapters in
		// production).
		registry := chaintest.NewRegistry()
		registry.Register(credential, token)
		registry.SetOwner(credential, holder, true)

		tokens := chaintest.NewToken()
		tokens.Create(token, 1_000_000, time.Now().Add(-48*time.Hour), 0)
		tokens.SetBalance(token, holder, 100)

		settlement := chaintest.NewSettlement()

		// Create the engine (memory store for demo, use PostgreSQL in
		// production).
		eng := rewards.New(memory.New(), registry, tokens,
			rewards.WithLogger(slog.Default()),
			rewards.WithSettlement(settlement),
		)

		ctx := context.Background()
		if err := eng.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer eng.Stop()

		// 1% minting fee, 0.5% verification fee, 2% high-value fee.
		if err := eng.SetFeeConfig(ctx, credential, 100, 50, 200); err != nil {
			t.Fatal(err)
		}

		// Collect a minting fee: 1% of the 10 usdc base operation value.
		fee, err := eng.CollectFee(ctx, credential, payer, revenue.FeeMinting)
		if err != nil {
			t.Fatal(err)
		}
		if fee.Amount != 100_000 {
			t.Fatalf("fee = %v, want 100000 units", fee)
		}

		// Open the pool for claims, then pull the holder's share.
		if _, err := eng.DistributeRevenue(ctx, credential); err != nil {
			t.Fatal(err)
		}

		pending, err := eng.PendingRewards(ctx, credential, holder)
		if err != nil {
			t.Fatal(err)
		}
		if !pending.IsPositive() {
			t.Fatalf("pending = %v, want > 0", pending)
		}

		paid, err := eng.ClaimRewards(ctx, credential, holder)
		if err != nil {
			t.Fatal(err)
		}
		if !paid.Equal(pending) {
			t.Fatalf("paid = %v, want %v", paid, pending)
		}

		// Token emissions accrue per whole day held.
		minted, err := eng.ClaimTokens(ctx, credential, holder)
		if err != nil {
			t.Fatal(err)
		}
		if minted <= 0 {
			t.Fatalf("minted = %d, want > 0", minted)
		}
	})

	t.Run("MoneyExamples", func(t *testing.T) {
		// Constructors
		_ = types.USDC(10_000000) // 10 usdc
		_ = types.USD(4900)       // $49.00
		_ = types.Zero("usdc")

		// Arithmetic
		m1 := types.USDC(100)
		m2 := types.USDC(200)
		_ = m1.Add(m2)
		_ = m1.Multiply(3)
		_ = m1.Divide(2)
		_ = m1.ScaleBps(100) // 1% of m1

		// Comparison
		if m1.LessThan(m2) {
			// m1 is less than m2
		}

		// Formatting
		_ = m1.String()
		_ = m1.FormatMajor()
	})
}
