package rewards

import (
	"context"
	"fmt"
	"math/big"

	"github.com/veritoken/rewards/chain"
	"github.com/veritoken/rewards/id"
	"github.com/veritoken/rewards/revenue"
	"github.com/veritoken/rewards/types"
)

// ──────────────────────────────────────────────────
// Fee collection
// ──────────────────────────────────────────────────

// CollectFee charges the platform fee for one operation on a credential.
// The fee is pulled from the payer into the credential's revenue pool and
// both pool accumulators grow together, so the pool invariant
// TotalCollected == TotalDistributed + PendingDistribution holds.
//
// A zero configured rate makes the whole call a no-op returning zero. The
// external transfer-in happens before any pool mutation: if the pull fails,
// no state changes.
func (e *Engine) CollectFee(ctx context.Context, credential types.CredentialID, payer types.Address, kind revenue.FeeKind) (types.Money, error) {
	mu := e.lock(credential)
	mu.Lock()
	defer mu.Unlock()

	if _, err := e.resolveToken(ctx, credential); err != nil {
		return e.zero(), err
	}

	cfg, err := e.feeConfig(ctx, credential)
	if err != nil {
		return e.zero(), err
	}
	if !cfg.Active {
		return e.zero(), nil
	}

	fee := e.baseFeeAmount.ScaleBps(cfg.RateFor(kind))
	if fee.IsZero() {
		return e.zero(), nil
	}

	settlement := e.currentSettlement()
	if settlement == nil {
		return e.zero(), ErrNilSettlement
	}

	// Transfer in before effects.
	if err := settlement.TransferFrom(ctx, payer, fee); err != nil {
		return e.zero(), fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	pool, err := e.pool(ctx, credential)
	if err != nil {
		return e.zero(), err
	}
	pool.TotalCollected = pool.TotalCollected.Add(fee)
	pool.PendingDistribution = pool.PendingDistribution.Add(fee)
	pool.TouchAt(e.now())

	if err := e.store.PutPool(ctx, pool); err != nil {
		return e.zero(), err
	}

	event := &revenue.FeeEvent{
		Entity:     types.NewEntityAt(e.now()),
		ID:         id.NewFeeEventID(),
		Credential: credential,
		Payer:      payer,
		Kind:       kind,
		Amount:     fee,
	}
	if err := e.store.RecordFeeEvent(ctx, event); err != nil {
		e.logger.Warn("failed to record fee event",
			"credential", credential,
			"error", err,
		)
	}

	e.plugins.EmitFeeCollected(ctx, event)

	e.logger.Debug("fee collected",
		"credential", credential,
		"payer", payer,
		"kind", kind,
		"amount", fee,
	)

	return fee, nil
}

// ──────────────────────────────────────────────────
// Revenue distribution
// ──────────────────────────────────────────────────

// DistributeRevenue marks the credential's pending revenue as distributed,
// opening it up for holder claims. No money moves; holders pull their share
// later via ClaimRewards. The call is a no-op returning zero when nothing is
// pending or the token has no supply.
func (e *Engine) DistributeRevenue(ctx context.Context, credential types.CredentialID) (types.Money, error) {
	mu := e.lock(credential)
	mu.Lock()
	defer mu.Unlock()

	return e.distributeLocked(ctx, credential)
}

func (e *Engine) distributeLocked(ctx context.Context, credential types.CredentialID) (types.Money, error) {
	token, err := e.resolveToken(ctx, credential)
	if err != nil {
		return e.zero(), err
	}

	pool, err := e.pool(ctx, credential)
	if err != nil {
		return e.zero(), err
	}
	if !pool.PendingDistribution.IsPositive() {
		return e.zero(), nil
	}

	supply, err := e.token.TotalSupply(ctx, token)
	if err != nil {
		return e.zero(), err
	}
	if supply == 0 {
		return e.zero(), nil
	}

	amount := pool.PendingDistribution
	pool.TotalDistributed = pool.TotalDistributed.Add(amount)
	pool.PendingDistribution = e.zero()
	pool.LastDistributionAt = e.now()
	pool.TouchAt(e.now())

	if err := e.store.PutPool(ctx, pool); err != nil {
		return e.zero(), err
	}

	dist := &revenue.Distribution{
		Entity:     types.NewEntityAt(e.now()),
		ID:         id.NewDistributionID(),
		Credential: credential,
		Amount:     amount,
		Supply:     supply,
	}
	if err := e.store.RecordDistribution(ctx, dist); err != nil {
		e.logger.Warn("failed to record distribution",
			"credential", credential,
			"error", err,
		)
	}

	e.plugins.EmitRevenueDistributed(ctx, dist)

	e.logger.Debug("revenue distributed",
		"credential", credential,
		"amount", amount,
		"supply", supply,
	)

	return amount, nil
}

// BatchDistributeRevenue distributes pending revenue for several credentials.
// Failures are skipped and logged; the returned total covers the credentials
// that succeeded. An empty batch is an error.
func (e *Engine) BatchDistributeRevenue(ctx context.Context, credentials []types.CredentialID) (types.Money, error) {
	if len(credentials) == 0 {
		return e.zero(), ErrEmptyBatch
	}

	total := e.zero()
	for _, credential := range credentials {
		mu := e.lock(credential)
		mu.Lock()
		amount, err := e.distributeLocked(ctx, credential)
		mu.Unlock()
		if err != nil {
			e.logger.Warn("skipping distribution in batch",
				"credential", credential,
				"error", err,
			)
			continue
		}
		total = total.Add(amount)
	}
	return total, nil
}

// ──────────────────────────────────────────────────
// Reward claims
// ──────────────────────────────────────────────────

// PendingRewards returns the holder's claimable share of distributed
// revenue: floor(TotalDistributed x balance / supply) - TotalClaimed,
// floored at zero.
//
// The share is computed against the live token supply. When supply grows
// after a distribution, unclaimed shares shrink; early claimers lock in the
// larger share. That dilution is intended behavior of the share formula.
func (e *Engine) PendingRewards(ctx context.Context, credential types.CredentialID, holder types.Address) (types.Money, error) {
	token, err := e.registry.ResolveToken(ctx, credential)
	if err != nil {
		return e.zero(), err
	}
	if token.IsZero() {
		return e.zero(), nil
	}

	reward, err := e.holderReward(ctx, credential, holder)
	if err != nil {
		return e.zero(), err
	}
	pool, err := e.pool(ctx, credential)
	if err != nil {
		return e.zero(), err
	}

	return e.pendingShare(ctx, token, holder, pool, reward)
}

// pendingShare computes the holder's unclaimed share against live chain data.
func (e *Engine) pendingShare(ctx context.Context, token types.Address, holder types.Address, pool *revenue.Pool, reward *revenue.HolderReward) (types.Money, error) {
	supply, err := e.token.TotalSupply(ctx, token)
	if err != nil {
		return e.zero(), err
	}
	if supply <= 0 {
		return e.zero(), nil
	}

	balance, err := e.token.BalanceOf(ctx, token, holder)
	if err != nil {
		return e.zero(), err
	}
	if balance <= 0 {
		return e.zero(), nil
	}

	// One floor over the full product; intermediate in big.Int so a large
	// distributed total times a large balance cannot overflow.
	share := new(big.Int).Mul(big.NewInt(pool.TotalDistributed.Amount), big.NewInt(balance))
	share.Div(share, big.NewInt(supply))

	pending := share.Int64() - reward.TotalClaimed.Amount
	if pending < 0 {
		pending = 0
	}
	return types.Money{Amount: pending, Currency: e.baseFeeAmount.Currency}, nil
}

// appliedRewardClaim is one validated, state-applied claim awaiting its
// outbound transfer.
type appliedRewardClaim struct {
	amount types.Money
	undo   func(ctx context.Context)
}

// applyRewardClaim validates a claim and writes the holder's updated record.
// The caller still owns the outbound transfer and must call undo when it
// fails. Must be called with the credential's stripe lock held.
func (e *Engine) applyRewardClaim(ctx context.Context, credential types.CredentialID, holder types.Address) (*appliedRewardClaim, error) {
	token, err := e.resolveToken(ctx, credential)
	if err != nil {
		return nil, err
	}

	owns, err := e.registry.IsOwner(ctx, credential, holder)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, ErrNotCredentialHolder
	}

	reward, err := e.holderReward(ctx, credential, holder)
	if err != nil {
		return nil, err
	}

	now := e.now()
	if !reward.LastClaimAt.IsZero() {
		next := reward.LastClaimAt.Add(e.claimCooldown)
		if now.Before(next) {
			return nil, &ClaimTooSoonError{NextClaimAt: next}
		}
	}

	pool, err := e.pool(ctx, credential)
	if err != nil {
		return nil, err
	}

	amount, err := e.pendingShare(ctx, token, holder, pool, reward)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, ErrNoRewardsAvailable
	}

	prior := *reward
	reward.TotalClaimed = reward.TotalClaimed.Add(amount)
	reward.LastClaimAt = now
	reward.TouchAt(now)

	if err := e.store.PutHolderReward(ctx, reward); err != nil {
		return nil, err
	}

	return &appliedRewardClaim{
		amount: amount,
		undo: func(ctx context.Context) {
			restored := prior
			if err := e.store.PutHolderReward(ctx, &restored); err != nil {
				e.logger.Error("failed to restore holder reward after transfer failure",
					"credential", credential,
					"holder", holder,
					"error", err,
				)
			}
		},
	}, nil
}

// recordClaim persists and announces a successful reward claim.
func (e *Engine) recordClaim(ctx context.Context, credential types.CredentialID, holder types.Address, amount types.Money) {
	claim := &revenue.Claim{
		Entity:     types.NewEntityAt(e.now()),
		ID:         id.NewRewardClaimID(),
		Credential: credential,
		Holder:     holder,
		Amount:     amount,
	}
	if err := e.store.RecordClaim(ctx, claim); err != nil {
		e.logger.Warn("failed to record claim",
			"credential", credential,
			"holder", holder,
			"error", err,
		)
	}
	e.plugins.EmitRewardsClaimed(ctx, claim)
}

// ClaimRewards pays out the holder's pending share of distributed revenue.
// State is updated before the outbound transfer; if the transfer fails the
// engine restores the prior record and surfaces the error.
func (e *Engine) ClaimRewards(ctx context.Context, credential types.CredentialID, holder types.Address) (types.Money, error) {
	settlement := e.currentSettlement()
	if settlement == nil {
		return e.zero(), ErrNilSettlement
	}

	mu := e.lock(credential)
	mu.Lock()

	applied, err := e.applyRewardClaim(ctx, credential, holder)
	if err != nil {
		mu.Unlock()
		e.plugins.EmitClaimRejected(ctx, credential.String(), holder.String(), err)
		return e.zero(), err
	}
	mu.Unlock()

	if err := settlement.Transfer(ctx, holder, applied.amount); err != nil {
		e.logger.Warn("reward payout failed, restoring state",
			"credential", credential,
			"holder", holder,
			"amount", applied.amount,
			"error", err,
		)
		applied.undo(ctx)
		return e.zero(), fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	e.recordClaim(ctx, credential, holder, applied.amount)

	e.logger.Debug("rewards claimed",
		"credential", credential,
		"holder", holder,
		"amount", applied.amount,
	)

	return applied.amount, nil
}

// BatchClaimRewards claims rewards for parallel (credential, holder) pairs.
// Claims are aggregated per holder into a single outbound transfer each.
// Pairs that fail validation are skipped and logged; the returned total
// covers the transfers that settled.
func (e *Engine) BatchClaimRewards(ctx context.Context, credentials []types.CredentialID, holders []types.Address) (types.Money, error) {
	if len(credentials) == 0 {
		return e.zero(), ErrEmptyBatch
	}
	if len(credentials) != len(holders) {
		return e.zero(), ErrArrayLengthMismatch
	}

	settlement := e.currentSettlement()
	if settlement == nil {
		return e.zero(), ErrNilSettlement
	}

	type holderBatch struct {
		total   types.Money
		applied []*appliedRewardClaim
		pairs   []int
	}

	byHolder := make(map[types.Address]*holderBatch)
	order := make([]types.Address, 0, len(holders))

	for i := range credentials {
		mu := e.lock(credentials[i])
		mu.Lock()
		applied, err := e.applyRewardClaim(ctx, credentials[i], holders[i])
		mu.Unlock()
		if err != nil {
			e.plugins.EmitClaimRejected(ctx, credentials[i].String(), holders[i].String(), err)
			e.logger.Warn("skipping reward claim in batch",
				"credential", credentials[i],
				"holder", holders[i],
				"error", err,
			)
			continue
		}

		hb, ok := byHolder[holders[i]]
		if !ok {
			hb = &holderBatch{total: e.zero()}
			byHolder[holders[i]] = hb
			order = append(order, holders[i])
		}
		hb.total = hb.total.Add(applied.amount)
		hb.applied = append(hb.applied, applied)
		hb.pairs = append(hb.pairs, i)
	}

	total := e.zero()
	for _, holder := range order {
		hb := byHolder[holder]
		if err := settlement.Transfer(ctx, holder, hb.total); err != nil {
			e.logger.Warn("batch reward payout failed, restoring state",
				"holder", holder,
				"amount", hb.total,
				"error", err,
			)
			for _, applied := range hb.applied {
				applied.undo(ctx)
			}
			continue
		}
		for j, applied := range hb.applied {
			e.recordClaim(ctx, credentials[hb.pairs[j]], holder, applied.amount)
		}
		total = total.Add(hb.total)
	}

	return total, nil
}

// ──────────────────────────────────────────────────
// Fee administration
// ──────────────────────────────────────────────────

// SetFeeConfig sets the per-operation fee rates for one credential and
// activates fee collection on it. Any rate above 1000 basis points (10%)
// is rejected.
func (e *Engine) SetFeeConfig(ctx context.Context, credential types.CredentialID, mintingBps, verificationBps, highValueBps int64) error {
	return e.putFeeConfig(ctx, credential, mintingBps, verificationBps, highValueBps)
}

// SetGlobalFees sets the fallback fee rates applied to credentials without
// their own configuration.
func (e *Engine) SetGlobalFees(ctx context.Context, mintingBps, verificationBps, highValueBps int64) error {
	return e.putFeeConfig(ctx, types.ZeroCredentialID, mintingBps, verificationBps, highValueBps)
}

func (e *Engine) putFeeConfig(ctx context.Context, credential types.CredentialID, mintingBps, verificationBps, highValueBps int64) error {
	cfg := &revenue.FeeConfig{
		Entity:          types.NewEntityAt(e.now()),
		Credential:      credential,
		MintingBps:      mintingBps,
		VerificationBps: verificationBps,
		HighValueBps:    highValueBps,
		Active:          true,
	}
	if !cfg.WithinBounds() {
		return ErrInvalidFeePercentage
	}

	if err := e.store.PutFeeConfig(ctx, cfg); err != nil {
		return err
	}

	e.plugins.EmitConfigChanged(ctx, "fee_config", cfg)

	e.logger.Info("fee config updated",
		"credential", credential,
		"minting_bps", mintingBps,
		"verification_bps", verificationBps,
		"high_value_bps", highValueBps,
	)

	return nil
}

// SetSettlement swaps the settlement currency reference. A nil reference is
// rejected; payouts must never be silently dropped.
func (e *Engine) SetSettlement(s chain.Settlement) error {
	if s == nil {
		return ErrNilSettlement
	}

	e.mu.Lock()
	e.settlement = s
	e.mu.Unlock()

	return nil
}

// ──────────────────────────────────────────────────
// Receipt queries
// ──────────────────────────────────────────────────

// FeeEvents lists the credential's fee collection receipts, newest first.
func (e *Engine) FeeEvents(ctx context.Context, credential types.CredentialID, opts revenue.ListOpts) ([]*revenue.FeeEvent, error) {
	return e.store.ListFeeEvents(ctx, credential, opts)
}

// RewardClaims lists the credential's reward claim receipts, newest first.
func (e *Engine) RewardClaims(ctx context.Context, credential types.CredentialID, opts revenue.ListOpts) ([]*revenue.Claim, error) {
	return e.store.ListClaims(ctx, credential, opts)
}

// Pool returns the credential's revenue pool snapshot.
func (e *Engine) Pool(ctx context.Context, credential types.CredentialID) (*revenue.Pool, error) {
	return e.pool(ctx, credential)
}
