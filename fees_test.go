package rewards_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/veritoken/rewards"
	"github.com/veritoken/rewards/chain/chaintest"
	"github.com/veritoken/rewards/revenue"
	"github.com/veritoken/rewards/store/memory"
	"github.com/veritoken/rewards/types"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// clock is a mutable time source for driving cooldowns and accrual windows.
type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// env bundles an engine with its chain fakes.
type env struct {
	eng        *rewards.Engine
	store      *memory.Store
	registry   *chaintest.Registry
	tokens     *chaintest.Token
	settlement *chaintest.Settlement
	clk        *clock
}

func newEnv(t *testing.T, opts ...rewards.Option) *env {
	t.Helper()

	e := &env{
		store:      memory.New(),
		registry:   chaintest.NewRegistry(),
		tokens:     chaintest.NewToken(),
		settlement: chaintest.NewSettlement(),
		clk:        &clock{now: testStart},
	}

	base := []rewards.Option{
		rewards.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		rewards.WithClock(e.clk.Now),
		rewards.WithSettlement(e.settlement),
	}
	e.eng = rewards.New(e.store, e.registry, e.tokens, append(base, opts...)...)

	if err := e.eng.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = e.eng.Stop() })

	return e
}

// addCredential registers a credential backed by a fresh token and returns
// both. The token carries the given cap and per-day base emission rate and
// was created at the current clock time.
func (e *env) addCredential(id byte, maxSupply, baseRate int64) (types.CredentialID, types.Address) {
	credential := types.CredentialID{id}
	token := types.Address("0xtoken-" + string(rune('a'+id)))
	e.registry.Register(credential, token)
	e.tokens.Create(token, maxSupply, e.clk.now, baseRate)
	return credential, token
}

// addHolder marks the holder as owning the credential with the given token
// balance.
func (e *env) addHolder(credential types.CredentialID, token, holder types.Address, balance int64) {
	e.registry.SetOwner(credential, holder, true)
	e.tokens.SetBalance(token, holder, balance)
}

func TestCollectFee(t *testing.T) {
	ctx := context.Background()
	payer := types.Address("0xpayer")

	t.Run("charges the configured rate", func(t *testing.T) {
		e := newEnv(t)
		credential, _ := e.addCredential(1, 0, 0)

		if err := e.eng.SetFeeConfig(ctx, credential, 100, 50, 200); err != nil {
			t.Fatal(err)
		}

		tests := []struct {
			kind revenue.FeeKind
			want int64
		}{
			{revenue.FeeMinting, 100_000},     // 1% of 10 usdc
			{revenue.FeeVerification, 50_000}, // 0.5%
			{revenue.FeeHighValue, 200_000},   // 2%
		}
		var collected int64
		for _, tt := range tests {
			fee, err := e.eng.CollectFee(ctx, credential, payer, tt.kind)
			if err != nil {
				t.Fatalf("CollectFee(%s): %v", tt.kind, err)
			}
			if fee.Amount != tt.want {
				t.Errorf("CollectFee(%s) = %d, want %d", tt.kind, fee.Amount, tt.want)
			}
			collected += tt.want
		}

		pool, err := e.eng.Pool(ctx, credential)
		if err != nil {
			t.Fatal(err)
		}
		if pool.TotalCollected.Amount != collected {
			t.Errorf("TotalCollected = %d, want %d", pool.TotalCollected.Amount, collected)
		}
		if pool.PendingDistribution.Amount != collected {
			t.Errorf("PendingDistribution = %d, want %d", pool.PendingDistribution.Amount, collected)
		}
		if !pool.Balanced() {
			t.Error("pool accumulators out of balance")
		}
		if len(e.settlement.Pulls) != len(tests) {
			t.Errorf("Pulls = %d, want %d", len(e.settlement.Pulls), len(tests))
		}
	})

	t.Run("unknown credential", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.eng.CollectFee(ctx, types.CredentialID{99}, payer, revenue.FeeMinting)
		if !errors.Is(err, rewards.ErrUnknownCredential) {
			t.Fatalf("err = %v, want ErrUnknownCredential", err)
		}
	})

	t.Run("no config means no fee", func(t *testing.T) {
		e := newEnv(t)
		credential, _ := e.addCredential(1, 0, 0)

		fee, err := e.eng.CollectFee(ctx, credential, payer, revenue.FeeMinting)
		if err != nil {
			t.Fatal(err)
		}
		if !fee.IsZero() {
			t.Errorf("fee = %v, want zero", fee)
		}
		if len(e.settlement.Pulls) != 0 {
			t.Error("unexpected settlement pull for an unconfigured credential")
		}
	})

	t.Run("zero rate is a no-op", func(t *testing.T) {
		e := newEnv(t)
		credential, _ := e.addCredential(1, 0, 0)

		if err := e.eng.SetFeeConfig(ctx, credential, 100, 0, 200); err != nil {
			t.Fatal(err)
		}
		fee, err := e.eng.CollectFee(ctx, credential, payer, revenue.FeeVerification)
		if err != nil {
			t.Fatal(err)
		}
		if !fee.IsZero() {
			t.Errorf("fee = %v, want zero", fee)
		}
	})

	t.Run("global fallback rates", func(t *testing.T) {
		e := newEnv(t)
		credential, _ := e.addCredential(1, 0, 0)

		if err := e.eng.SetGlobalFees(ctx, 30, 30, 30); err != nil {
			t.Fatal(err)
		}
		fee, err := e.eng.CollectFee(ctx, credential, payer, revenue.FeeMinting)
		if err != nil {
			t.Fatal(err)
		}
		if fee.Amount != 30_000 {
			t.Errorf("fee = %d, want 30000", fee.Amount)
		}

		// A per-credential config wins over the global one.
		if err := e.eng.SetFeeConfig(ctx, credential, 100, 100, 100); err != nil {
			t.Fatal(err)
		}
		fee, err = e.eng.CollectFee(ctx, credential, payer, revenue.FeeMinting)
		if err != nil {
			t.Fatal(err)
		}
		if fee.Amount != 100_000 {
			t.Errorf("fee = %d, want 100000", fee.Amount)
		}
	})

	t.Run("inactive credential config falls back to global", func(t *testing.T) {
		e := newEnv(t)
		credential, _ := e.addCredential(1, 0, 0)

		if err := e.eng.SetGlobalFees(ctx, 30, 30, 30); err != nil {
			t.Fatal(err)
		}
		// A stored but deactivated per-credential record must not shadow
		// the global rates.
		err := e.store.PutFeeConfig(ctx, &revenue.FeeConfig{
			Entity:     types.NewEntityAt(testStart),
			Credential: credential,
			MintingBps: 999,
			Active:     false,
		})
		if err != nil {
			t.Fatal(err)
		}

		fee, err := e.eng.CollectFee(ctx, credential, payer, revenue.FeeMinting)
		if err != nil {
			t.Fatal(err)
		}
		if fee.Amount != 30_000 {
			t.Errorf("fee = %d, want the global 30000", fee.Amount)
		}
	})

	t.Run("failed pull leaves the pool untouched", func(t *testing.T) {
		e := newEnv(t)
		credential, _ := e.addCredential(1, 0, 0)

		if err := e.eng.SetFeeConfig(ctx, credential, 100, 100, 100); err != nil {
			t.Fatal(err)
		}
		e.settlement.TransferFromErr = errors.New("insufficient allowance")

		_, err := e.eng.CollectFee(ctx, credential, payer, revenue.FeeMinting)
		if !errors.Is(err, rewards.ErrTransferFailed) {
			t.Fatalf("err = %v, want ErrTransferFailed", err)
		}

		pool, err := e.eng.Pool(ctx, credential)
		if err != nil {
			t.Fatal(err)
		}
		if !pool.TotalCollected.IsZero() || !pool.PendingDistribution.IsZero() {
			t.Errorf("pool mutated after failed pull: %+v", pool)
		}
	})

	t.Run("rates above ten percent are rejected", func(t *testing.T) {
		e := newEnv(t)
		credential, _ := e.addCredential(1, 0, 0)

		tests := []struct{ minting, verification, highValue int64 }{
			{1001, 0, 0},
			{0, 1001, 0},
			{0, 0, 1001},
			{-1, 0, 0},
		}
		for _, tt := range tests {
			err := e.eng.SetFeeConfig(ctx, credential, tt.minting, tt.verification, tt.highValue)
			if !errors.Is(err, rewards.ErrInvalidFeePercentage) {
				t.Errorf("SetFeeConfig(%d, %d, %d) = %v, want ErrInvalidFeePercentage",
					tt.minting, tt.verification, tt.highValue, err)
			}
		}
	})
}

func TestDistributeRevenue(t *testing.T) {
	ctx := context.Background()
	payer := types.Address("0xpayer")
	holder := types.Address("0xholder")

	t.Run("moves pending to distributed", func(t *testing.T) {
		e := newEnv(t)
		credential, token := e.addCredential(1, 0, 0)
		e.addHolder(credential, token, holder, 1000)

		if err := e.eng.SetFeeConfig(ctx, credential, 100, 100, 100); err != nil {
			t.Fatal(err)
		}
		if _, err := e.eng.CollectFee(ctx, credential, payer, revenue.FeeMinting); err != nil {
			t.Fatal(err)
		}

		amount, err := e.eng.DistributeRevenue(ctx, credential)
		if err != nil {
			t.Fatal(err)
		}
		if amount.Amount != 100_000 {
			t.Errorf("distributed = %d, want 100000", amount.Amount)
		}

		pool, err := e.eng.Pool(ctx, credential)
		if err != nil {
			t.Fatal(err)
		}
		if !pool.PendingDistribution.IsZero() {
			t.Errorf("PendingDistribution = %v, want zero", pool.PendingDistribution)
		}
		if pool.TotalDistributed.Amount != 100_000 {
			t.Errorf("TotalDistributed = %d, want 100000", pool.TotalDistributed.Amount)
		}
		if !pool.Balanced() {
			t.Error("pool accumulators out of balance")
		}

		// Nothing pending anymore, so a second call is a no-op.
		amount, err = e.eng.DistributeRevenue(ctx, credential)
		if err != nil {
			t.Fatal(err)
		}
		if !amount.IsZero() {
			t.Errorf("second distribution = %v, want zero", amount)
		}
	})

	t.Run("no supply means nothing to distribute against", func(t *testing.T) {
		e := newEnv(t)
		credential, _ := e.addCredential(1, 0, 0)

		if err := e.eng.SetFeeConfig(ctx, credential, 100, 100, 100); err != nil {
			t.Fatal(err)
		}
		if _, err := e.eng.CollectFee(ctx, credential, payer, revenue.FeeMinting); err != nil {
			t.Fatal(err)
		}

		amount, err := e.eng.DistributeRevenue(ctx, credential)
		if err != nil {
			t.Fatal(err)
		}
		if !amount.IsZero() {
			t.Errorf("distributed = %v, want zero", amount)
		}

		pool, err := e.eng.Pool(ctx, credential)
		if err != nil {
			t.Fatal(err)
		}
		if pool.PendingDistribution.Amount != 100_000 {
			t.Errorf("PendingDistribution = %d, want it preserved", pool.PendingDistribution.Amount)
		}
	})

	t.Run("batch skips failures", func(t *testing.T) {
		e := newEnv(t)
		good, token := e.addCredential(1, 0, 0)
		e.addHolder(good, token, holder, 1000)
		unknown := types.CredentialID{42}

		if err := e.eng.SetFeeConfig(ctx, good, 100, 100, 100); err != nil {
			t.Fatal(err)
		}
		if _, err := e.eng.CollectFee(ctx, good, payer, revenue.FeeMinting); err != nil {
			t.Fatal(err)
		}

		total, err := e.eng.BatchDistributeRevenue(ctx, []types.CredentialID{unknown, good})
		if err != nil {
			t.Fatal(err)
		}
		if total.Amount != 100_000 {
			t.Errorf("total = %d, want 100000", total.Amount)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.eng.BatchDistributeRevenue(ctx, nil)
		if !errors.Is(err, rewards.ErrEmptyBatch) {
			t.Fatalf("err = %v, want ErrEmptyBatch", err)
		}
	})
}

// fundAndDistribute collects one minting fee at 100 bps and opens the pool
// for claims.
func fundAndDistribute(t *testing.T, e *env, credential types.CredentialID) {
	t.Helper()
	ctx := context.Background()
	if err := e.eng.SetFeeConfig(ctx, credential, 100, 100, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := e.eng.CollectFee(ctx, credential, "0xpayer", revenue.FeeMinting); err != nil {
		t.Fatal(err)
	}
	if _, err := e.eng.DistributeRevenue(ctx, credential); err != nil {
		t.Fatal(err)
	}
}

func TestPendingRewards(t *testing.T) {
	ctx := context.Background()
	holder := types.Address("0xholder")
	other := types.Address("0xother")

	t.Run("proportional to balance", func(t *testing.T) {
		e := newEnv(t)
		credential, token := e.addCredential(1, 0, 0)
		e.addHolder(credential, token, holder, 100)
		e.addHolder(credential, token, other, 900)

		fundAndDistribute(t, e, credential)

		pending, err := e.eng.PendingRewards(ctx, credential, holder)
		if err != nil {
			t.Fatal(err)
		}
		// 100000 x 100 / 1000
		if pending.Amount != 10_000 {
			t.Errorf("pending = %d, want 10000", pending.Amount)
		}

		pending, err = e.eng.PendingRewards(ctx, credential, other)
		if err != nil {
			t.Fatal(err)
		}
		if pending.Amount != 90_000 {
			t.Errorf("pending = %d, want 90000", pending.Amount)
		}
	})

	t.Run("supply growth dilutes unclaimed shares", func(t *testing.T) {
		e := newEnv(t)
		credential, token := e.addCredential(1, 0, 0)
		e.addHolder(credential, token, holder, 100)
		e.addHolder(credential, token, other, 900)

		fundAndDistribute(t, e, credential)

		before, err := e.eng.PendingRewards(ctx, credential, holder)
		if err != nil {
			t.Fatal(err)
		}

		// Someone else's balance doubles the supply; the share is computed
		// against live supply, so the unclaimed amount shrinks.
		e.tokens.SetBalance(token, "0xlate", 1000)

		after, err := e.eng.PendingRewards(ctx, credential, holder)
		if err != nil {
			t.Fatal(err)
		}
		if !after.LessThan(before) {
			t.Errorf("pending after dilution = %v, want less than %v", after, before)
		}
	})

	t.Run("unknown credential or zero balance", func(t *testing.T) {
		e := newEnv(t)
		credential, token := e.addCredential(1, 0, 0)
		e.addHolder(credential, token, holder, 100)
		fundAndDistribute(t, e, credential)

		pending, err := e.eng.PendingRewards(ctx, types.CredentialID{42}, holder)
		if err != nil {
			t.Fatal(err)
		}
		if !pending.IsZero() {
			t.Errorf("pending = %v, want zero for unknown credential", pending)
		}

		pending, err = e.eng.PendingRewards(ctx, credential, "0xstranger")
		if err != nil {
			t.Fatal(err)
		}
		if !pending.IsZero() {
			t.Errorf("pending = %v, want zero for zero balance", pending)
		}
	})
}

func TestClaimRewards(t *testing.T) {
	ctx := context.Background()
	holder := types.Address("0xholder")

	t.Run("pays out and enforces the cooldown", func(t *testing.T) {
		e := newEnv(t)
		credential, token := e.addCredential(1, 0, 0)
		e.addHolder(credential, token, holder, 1000)
		fundAndDistribute(t, e, credential)

		paid, err := e.eng.ClaimRewards(ctx, credential, holder)
		if err != nil {
			t.Fatal(err)
		}
		if paid.Amount != 100_000 {
			t.Errorf("paid = %d, want 100000", paid.Amount)
		}
		if got := e.settlement.TotalPaid(holder); got.Amount != 100_000 {
			t.Errorf("TotalPaid = %d, want 100000", got.Amount)
		}

		// Within the 24h cooldown every further claim is rejected.
		e.clk.Advance(time.Hour)
		_, err = e.eng.ClaimRewards(ctx, credential, holder)
		if !errors.Is(err, rewards.ErrClaimTooSoon) {
			t.Fatalf("err = %v, want ErrClaimTooSoon", err)
		}
		var tooSoon *rewards.ClaimTooSoonError
		if !errors.As(err, &tooSoon) {
			t.Fatalf("err = %T, want *ClaimTooSoonError", err)
		}
		if want := testStart.Add(24 * time.Hour); !tooSoon.NextClaimAt.Equal(want) {
			t.Errorf("NextClaimAt = %v, want %v", tooSoon.NextClaimAt, want)
		}

		// Past the cooldown a fresh distribution is claimable again.
		e.clk.Advance(24 * time.Hour)
		fundAndDistribute(t, e, credential)
		paid, err = e.eng.ClaimRewards(ctx, credential, holder)
		if err != nil {
			t.Fatal(err)
		}
		if paid.Amount != 100_000 {
			t.Errorf("second claim = %d, want 100000", paid.Amount)
		}
	})

	t.Run("rejections", func(t *testing.T) {
		e := newEnv(t)
		credential, token := e.addCredential(1, 0, 0)
		e.addHolder(credential, token, holder, 1000)

		// Nothing distributed yet.
		_, err := e.eng.ClaimRewards(ctx, credential, holder)
		if !errors.Is(err, rewards.ErrNoRewardsAvailable) {
			t.Fatalf("err = %v, want ErrNoRewardsAvailable", err)
		}

		fundAndDistribute(t, e, credential)

		_, err = e.eng.ClaimRewards(ctx, credential, "0xstranger")
		if !errors.Is(err, rewards.ErrNotCredentialHolder) {
			t.Fatalf("err = %v, want ErrNotCredentialHolder", err)
		}

		_, err = e.eng.ClaimRewards(ctx, types.CredentialID{42}, holder)
		if !errors.Is(err, rewards.ErrUnknownCredential) {
			t.Fatalf("err = %v, want ErrUnknownCredential", err)
		}
	})

	t.Run("failed payout restores the claim record", func(t *testing.T) {
		e := newEnv(t)
		credential, token := e.addCredential(1, 0, 0)
		e.addHolder(credential, token, holder, 1000)
		fundAndDistribute(t, e, credential)

		e.settlement.TransferErr = errors.New("bridge down")

		_, err := e.eng.ClaimRewards(ctx, credential, holder)
		if !errors.Is(err, rewards.ErrTransferFailed) {
			t.Fatalf("err = %v, want ErrTransferFailed", err)
		}
		if len(e.settlement.Payouts) != 0 {
			t.Error("unexpected recorded payout")
		}

		// The pending share survives for a retry.
		e.settlement.TransferErr = nil
		pending, err := e.eng.PendingRewards(ctx, credential, holder)
		if err != nil {
			t.Fatal(err)
		}
		if pending.Amount != 100_000 {
			t.Errorf("pending after restore = %d, want 100000", pending.Amount)
		}
		if _, err := e.eng.ClaimRewards(ctx, credential, holder); err != nil {
			t.Fatalf("retry after restore: %v", err)
		}
	})
}

func TestBatchClaimRewards(t *testing.T) {
	ctx := context.Background()
	holder := types.Address("0xholder")

	t.Run("aggregates per holder", func(t *testing.T) {
		e := newEnv(t)
		credA, tokenA := e.addCredential(1, 0, 0)
		credB, tokenB := e.addCredential(2, 0, 0)
		e.addHolder(credA, tokenA, holder, 1000)
		e.addHolder(credB, tokenB, holder, 1000)
		fundAndDistribute(t, e, credA)
		fundAndDistribute(t, e, credB)

		payoutsBefore := len(e.settlement.Payouts)
		total, err := e.eng.BatchClaimRewards(ctx,
			[]types.CredentialID{credA, credB},
			[]types.Address{holder, holder},
		)
		if err != nil {
			t.Fatal(err)
		}
		if total.Amount != 200_000 {
			t.Errorf("total = %d, want 200000", total.Amount)
		}
		if got := len(e.settlement.Payouts) - payoutsBefore; got != 1 {
			t.Errorf("payout transfers = %d, want 1 aggregate per holder", got)
		}
	})

	t.Run("skips failing pairs", func(t *testing.T) {
		e := newEnv(t)
		credA, tokenA := e.addCredential(1, 0, 0)
		e.addHolder(credA, tokenA, holder, 1000)
		fundAndDistribute(t, e, credA)

		total, err := e.eng.BatchClaimRewards(ctx,
			[]types.CredentialID{credA, {42}},
			[]types.Address{holder, holder},
		)
		if err != nil {
			t.Fatal(err)
		}
		if total.Amount != 100_000 {
			t.Errorf("total = %d, want 100000", total.Amount)
		}
	})

	t.Run("input validation", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.eng.BatchClaimRewards(ctx, nil, nil)
		if !errors.Is(err, rewards.ErrEmptyBatch) {
			t.Fatalf("err = %v, want ErrEmptyBatch", err)
		}

		_, err = e.eng.BatchClaimRewards(ctx,
			[]types.CredentialID{{1}, {2}},
			[]types.Address{holder},
		)
		if !errors.Is(err, rewards.ErrArrayLengthMismatch) {
			t.Fatalf("err = %v, want ErrArrayLengthMismatch", err)
		}
	})
}

func TestSetSettlement(t *testing.T) {
	ctx := context.Background()
	holder := types.Address("0xholder")

	e := newEnv(t)
	credential, token := e.addCredential(1, 0, 0)
	e.addHolder(credential, token, holder, 1000)
	fundAndDistribute(t, e, credential)

	if err := e.eng.SetSettlement(nil); err == nil || !errors.Is(err, rewards.ErrNilSettlement) {
		t.Fatalf("SetSettlement(nil) = %v, want ErrNilSettlement", err)
	}

	// Payouts go through the swapped-in settlement currency.
	replacement := chaintest.NewSettlement()
	if err := e.eng.SetSettlement(replacement); err != nil {
		t.Fatal(err)
	}
	if _, err := e.eng.ClaimRewards(ctx, credential, holder); err != nil {
		t.Fatal(err)
	}
	if len(replacement.Payouts) != 1 {
		t.Errorf("replacement payouts = %d, want 1", len(replacement.Payouts))
	}
	if len(e.settlement.Payouts) != 0 {
		t.Errorf("old settlement payouts = %d, want 0", len(e.settlement.Payouts))
	}
}

func TestReceiptQueries(t *testing.T) {
	ctx := context.Background()
	holder := types.Address("0xholder")

	e := newEnv(t)
	credential, token := e.addCredential(1, 0, 0)
	e.addHolder(credential, token, holder, 1000)

	if err := e.eng.SetFeeConfig(ctx, credential, 100, 50, 200); err != nil {
		t.Fatal(err)
	}
	kinds := []revenue.FeeKind{revenue.FeeMinting, revenue.FeeVerification, revenue.FeeHighValue}
	for _, kind := range kinds {
		if _, err := e.eng.CollectFee(ctx, credential, "0xpayer", kind); err != nil {
			t.Fatal(err)
		}
		e.clk.Advance(time.Minute)
	}

	events, err := e.eng.FeeEvents(ctx, credential, revenue.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != len(kinds) {
		t.Fatalf("events = %d, want %d", len(events), len(kinds))
	}
	// Newest first.
	if events[0].Kind != revenue.FeeHighValue {
		t.Errorf("events[0].Kind = %s, want %s", events[0].Kind, revenue.FeeHighValue)
	}

	limited, err := e.eng.FeeEvents(ctx, credential, revenue.ListOpts{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].Kind != revenue.FeeVerification {
		t.Errorf("limited page = %+v, want the verification event", limited)
	}

	if _, err := e.eng.DistributeRevenue(ctx, credential); err != nil {
		t.Fatal(err)
	}
	if _, err := e.eng.ClaimRewards(ctx, credential, holder); err != nil {
		t.Fatal(err)
	}

	claims, err := e.eng.RewardClaims(ctx, credential, revenue.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(claims) != 1 {
		t.Fatalf("claims = %d, want 1", len(claims))
	}
	if claims[0].Holder != holder {
		t.Errorf("claims[0].Holder = %s, want %s", claims[0].Holder, holder)
	}
}
