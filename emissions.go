package rewards

import (
	"context"
	"fmt"
	"time"

	"github.com/veritoken/rewards/emission"
	"github.com/veritoken/rewards/id"
	"github.com/veritoken/rewards/types"
)

// ──────────────────────────────────────────────────
// Emission calculation
// ──────────────────────────────────────────────────

// emissionInput assembles the pure-math input for one (credential, holder)
// pair from a params snapshot and the token ledger.
func (e *Engine) emissionInput(ctx context.Context, credential types.CredentialID, holder types.Address, params *emission.Params) (emission.Input, error) {
	token, err := e.resolveToken(ctx, credential)
	if err != nil {
		return emission.Input{}, err
	}

	override, err := e.override(ctx, credential)
	if err != nil {
		return emission.Input{}, err
	}

	baseRate, err := e.tokenBaseRate(ctx, token, params)
	if err != nil {
		return emission.Input{}, err
	}

	state, err := e.holderState(ctx, credential, holder)
	if err != nil {
		return emission.Input{}, err
	}

	start := state.LastClaimAt
	if start.IsZero() {
		// Never claimed: accrual runs from the token's creation.
		start, err = e.token.CreatedAt(ctx, token)
		if err != nil {
			return emission.Input{}, err
		}
	}

	supply, err := e.token.TotalSupply(ctx, token)
	if err != nil {
		return emission.Input{}, err
	}
	maxSupply, err := e.token.MaxSupply(ctx, token)
	if err != nil {
		return emission.Input{}, err
	}

	return emission.Input{
		TokenBaseRate:    baseRate,
		Multiplier:       override.Multiplier,
		AntiInflationBps: params.AntiInflationBps,
		DeployedAt:       params.DeployedAt,
		StartTime:        start,
		Now:              e.now(),
		CurrentSupply:    supply,
		MaxSupply:        maxSupply,
	}, nil
}

// CalculateEmission returns the tokens the holder could claim right now and
// the effective per-day rate, without mutating any state.
func (e *Engine) CalculateEmission(ctx context.Context, credential types.CredentialID, holder types.Address) (amount, rate int64, err error) {
	params, err := e.params(ctx)
	if err != nil {
		return 0, 0, err
	}

	in, err := e.emissionInput(ctx, credential, holder, params)
	if err != nil {
		return 0, 0, err
	}

	amount, rate = emission.Calculate(in)
	return amount, rate, nil
}

// ──────────────────────────────────────────────────
// Token claims
// ──────────────────────────────────────────────────

// appliedTokenClaim is one validated, state-applied emission claim awaiting
// its on-chain mint.
type appliedTokenClaim struct {
	token  types.Address
	amount int64
	rate   int64
	undo   func(ctx context.Context)
}

// applyTokenClaim validates an emission claim and writes the holder, the
// credential aggregate and the global aggregate. The caller still owns the
// on-chain mint and must call undo when it fails. Must be called with the
// credential's stripe lock held; undo re-acquires it, so release the lock
// before the mint.
func (e *Engine) applyTokenClaim(ctx context.Context, credential types.CredentialID, holder types.Address) (*appliedTokenClaim, error) {
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

	params, err := e.params(ctx)
	if err != nil {
		return nil, err
	}
	override, err := e.override(ctx, credential)
	if err != nil {
		return nil, err
	}
	holderState, err := e.holderState(ctx, credential, holder)
	if err != nil {
		return nil, err
	}

	// The first-ever claim is exempt from the min-interval check; a zero
	// LastClaimAt means the holder has never claimed.
	now := e.now()
	if !holderState.LastClaimAt.IsZero() {
		next := holderState.LastClaimAt.Add(override.MinClaimInterval)
		if now.Before(next) {
			return nil, &ClaimTooSoonError{NextClaimAt: next}
		}
	}

	in, err := e.emissionInput(ctx, credential, holder, params)
	if err != nil {
		return nil, err
	}

	amount, rate := emission.Calculate(in)
	if amount <= 0 {
		if rate > 0 && in.MaxSupply > 0 && in.CurrentSupply >= in.MaxSupply {
			e.plugins.EmitSupplyCapReached(ctx, credential.String(), in.CurrentSupply, in.MaxSupply)
			return nil, ErrSupplyCapReached
		}
		return nil, ErrNoTokensToClaim
	}
	if in.MaxSupply > 0 && amount == in.MaxSupply-in.CurrentSupply {
		// Clamped: this mint exhausts the cap.
		e.plugins.EmitSupplyCapReached(ctx, credential.String(), in.CurrentSupply+amount, in.MaxSupply)
	}

	credState, err := e.credentialState(ctx, credential)
	if err != nil {
		return nil, err
	}

	priorHolder := *holderState

	var activeDelta, credDelta int64
	if !holderState.Active {
		activeDelta = 1
	}
	if credState.TotalMinted == 0 {
		credDelta = 1
	}

	holderState.LastClaimAt = now
	holderState.Active = true
	holderState.TouchAt(now)

	credState.TotalMinted += amount
	credState.ActiveHolders += activeDelta
	credState.TouchAt(now)

	if err := e.store.PutHolderState(ctx, holderState); err != nil {
		return nil, err
	}
	if err := e.store.PutCredentialState(ctx, credState); err != nil {
		return nil, err
	}
	if err := e.bumpGlobalStats(ctx, amount, activeDelta, credDelta); err != nil {
		return nil, err
	}

	return &appliedTokenClaim{
		token:  token,
		amount: amount,
		rate:   rate,
		undo: func(ctx context.Context) {
			// Compensate with deltas rather than restoring snapshots:
			// other claims may have committed between the mint attempt
			// and this rollback, and a snapshot would erase them. The
			// holder record is the exception; claims for the same
			// (credential, holder) pair are interval-gated meanwhile, so
			// its prior state is still accurate.
			mu := e.lock(credential)
			mu.Lock()
			h := priorHolder
			if err := e.store.PutHolderState(ctx, &h); err != nil {
				e.logger.Error("failed to restore holder state after mint failure",
					"credential", credential, "holder", holder, "error", err)
			}
			cred, err := e.credentialState(ctx, credential)
			if err != nil {
				e.logger.Error("failed to load credential state after mint failure",
					"credential", credential, "error", err)
				mu.Unlock()
				return
			}
			cred.TotalMinted -= amount
			cred.ActiveHolders -= activeDelta
			if credDelta > 0 && cred.TotalMinted > 0 {
				// Another holder minted on this credential meanwhile;
				// it stays in the minting set.
				credDelta = 0
			}
			cred.TouchAt(e.now())
			if err := e.store.PutCredentialState(ctx, cred); err != nil {
				e.logger.Error("failed to restore credential state after mint failure",
					"credential", credential, "error", err)
			}
			mu.Unlock()

			if err := e.bumpGlobalStats(ctx, -amount, -activeDelta, -credDelta); err != nil {
				e.logger.Error("failed to restore global stats after mint failure",
					"error", err)
			}
		},
	}, nil
}

// bumpGlobalStats applies deltas to the cross-credential aggregate under its
// dedicated lock. Stripe locks do not cover GlobalStats because every
// credential writes it.
func (e *Engine) bumpGlobalStats(ctx context.Context, minted, activeHolders, credentialsWithMinting int64) error {
	e.globalMu.Lock()
	defer e.globalMu.Unlock()

	global, err := e.globalStats(ctx)
	if err != nil {
		return err
	}

	global.TotalMinted += minted
	global.ActiveHolders += activeHolders
	global.CredentialsWithMinting += credentialsWithMinting
	global.TouchAt(e.now())

	return e.store.PutGlobalStats(ctx, global)
}

// recordMint persists and announces a successful emission claim.
func (e *Engine) recordMint(ctx context.Context, credential types.CredentialID, holder types.Address, amount, rate int64) {
	mint := &emission.Mint{
		Entity:     types.NewEntityAt(e.now()),
		ID:         id.NewMintID(),
		Credential: credential,
		Holder:     holder,
		Amount:     amount,
		Rate:       rate,
	}
	if err := e.store.RecordMint(ctx, mint); err != nil {
		e.logger.Warn("failed to record mint",
			"credential", credential,
			"holder", holder,
			"error", err,
		)
	}
	e.plugins.EmitTokensClaimed(ctx, mint)
}

// ClaimTokens mints the holder's accrued emission. State is updated before
// the on-chain mint; if the mint fails the engine restores the prior records
// and surfaces the error.
func (e *Engine) ClaimTokens(ctx context.Context, credential types.CredentialID, holder types.Address) (int64, error) {
	mu := e.lock(credential)
	mu.Lock()

	applied, err := e.applyTokenClaim(ctx, credential, holder)
	if err != nil {
		mu.Unlock()
		e.plugins.EmitClaimRejected(ctx, credential.String(), holder.String(), err)
		return 0, err
	}
	mu.Unlock()

	if err := e.token.Mint(ctx, applied.token, holder, applied.amount); err != nil {
		e.logger.Warn("token mint failed, restoring state",
			"credential", credential,
			"holder", holder,
			"amount", applied.amount,
			"error", err,
		)
		applied.undo(ctx)
		return 0, fmt.Errorf("%w: %v", ErrMintFailed, err)
	}

	e.recordMint(ctx, credential, holder, applied.amount, applied.rate)

	e.logger.Debug("tokens claimed",
		"credential", credential,
		"holder", holder,
		"amount", applied.amount,
		"rate", applied.rate,
	)

	return applied.amount, nil
}

// BatchClaimTokens claims emissions for one holder across several
// credentials. Credentials that fail validation or minting are skipped and
// logged; the returned total covers the mints that settled. An empty batch
// is an error.
func (e *Engine) BatchClaimTokens(ctx context.Context, credentials []types.CredentialID, holder types.Address) (int64, error) {
	if len(credentials) == 0 {
		return 0, ErrEmptyBatch
	}

	var total int64
	for _, credential := range credentials {
		mu := e.lock(credential)
		mu.Lock()
		applied, err := e.applyTokenClaim(ctx, credential, holder)
		mu.Unlock()
		if err != nil {
			e.plugins.EmitClaimRejected(ctx, credential.String(), holder.String(), err)
			e.logger.Warn("skipping token claim in batch",
				"credential", credential,
				"holder", holder,
				"error", err,
			)
			continue
		}

		if err := e.token.Mint(ctx, applied.token, holder, applied.amount); err != nil {
			e.logger.Warn("token mint failed in batch, restoring state",
				"credential", credential,
				"holder", holder,
				"error", err,
			)
			applied.undo(ctx)
			continue
		}

		e.recordMint(ctx, credential, holder, applied.amount, applied.rate)
		total += applied.amount
	}

	return total, nil
}

// ClaimableTokens returns the tokens the holder could claim right now and,
// when the holder is inside the claim cooldown, the time the cooldown
// expires. An unknown credential or a non-holder gets (0, zero time) rather
// than an error.
func (e *Engine) ClaimableTokens(ctx context.Context, credential types.CredentialID, holder types.Address) (int64, time.Time, error) {
	token, err := e.registry.ResolveToken(ctx, credential)
	if err != nil {
		return 0, time.Time{}, err
	}
	if token.IsZero() {
		return 0, time.Time{}, nil
	}

	owns, err := e.registry.IsOwner(ctx, credential, holder)
	if err != nil {
		return 0, time.Time{}, err
	}
	if !owns {
		return 0, time.Time{}, nil
	}

	override, err := e.override(ctx, credential)
	if err != nil {
		return 0, time.Time{}, err
	}
	state, err := e.holderState(ctx, credential, holder)
	if err != nil {
		return 0, time.Time{}, err
	}

	if !state.LastClaimAt.IsZero() {
		next := state.LastClaimAt.Add(override.MinClaimInterval)
		if e.now().Before(next) {
			return 0, next, nil
		}
	}

	params, err := e.params(ctx)
	if err != nil {
		return 0, time.Time{}, err
	}
	in, err := e.emissionInput(ctx, credential, holder, params)
	if err != nil {
		return 0, time.Time{}, err
	}

	amount, _ := emission.Calculate(in)
	return amount, time.Time{}, nil
}

// ──────────────────────────────────────────────────
// Emission administration
// ──────────────────────────────────────────────────

// SetBaseEmissionRate sets the global fallback emission rate in tokens per
// day. Bumps the parameter version.
func (e *Engine) SetBaseEmissionRate(ctx context.Context, rate int64) error {
	if rate < emission.MinBaseRate || rate > emission.MaxBaseRate {
		return &ParamRangeError{Param: "base_rate", Value: rate, Min: emission.MinBaseRate, Max: emission.MaxBaseRate}
	}

	return e.updateParams(ctx, "base_emission_rate", func(p *emission.Params) {
		p.BaseRate = rate
	})
}

// SetAntiInflationFactor sets the global anti-inflation factor in basis
// points. Bumps the parameter version.
func (e *Engine) SetAntiInflationFactor(ctx context.Context, bps int64) error {
	if bps < emission.MinAntiInflationBps || bps > emission.MaxAntiInflationBps {
		return &ParamRangeError{Param: "anti_inflation_bps", Value: bps, Min: emission.MinAntiInflationBps, Max: emission.MaxAntiInflationBps}
	}

	return e.updateParams(ctx, "anti_inflation_factor", func(p *emission.Params) {
		p.AntiInflationBps = bps
	})
}

func (e *Engine) updateParams(ctx context.Context, what string, mutate func(*emission.Params)) error {
	params, err := e.params(ctx)
	if err != nil {
		return err
	}

	mutate(params)
	params.Version++
	params.TouchAt(e.now())

	if err := e.store.PutParams(ctx, params); err != nil {
		return err
	}

	e.plugins.EmitConfigChanged(ctx, what, params)

	e.logger.Info("emission params updated",
		"what", what,
		"version", params.Version,
		"base_rate", params.BaseRate,
		"anti_inflation_bps", params.AntiInflationBps,
	)

	return nil
}

// SetEmissionMultiplier sets the credential's emission multiplier in
// percent (100 = 1.0x).
func (e *Engine) SetEmissionMultiplier(ctx context.Context, credential types.CredentialID, multiplier int64) error {
	if multiplier < emission.MinMultiplier || multiplier > emission.MaxMultiplier {
		return &ParamRangeError{Param: "multiplier", Value: multiplier, Min: emission.MinMultiplier, Max: emission.MaxMultiplier}
	}

	return e.updateOverride(ctx, credential, "emission_multiplier", func(o *emission.Override) {
		o.Multiplier = multiplier
	})
}

// SetMinClaimInterval sets the credential's minimum interval between
// emission claims. Intervals below 24 hours are rejected.
func (e *Engine) SetMinClaimInterval(ctx context.Context, credential types.CredentialID, interval time.Duration) error {
	if interval < emission.MinClaimInterval {
		return &ParamRangeError{
			Param: "min_claim_interval_secs",
			Value: int64(interval / time.Second),
			Min:   int64(emission.MinClaimInterval / time.Second),
			Max:   0,
		}
	}

	return e.updateOverride(ctx, credential, "min_claim_interval", func(o *emission.Override) {
		o.MinClaimInterval = interval
	})
}

func (e *Engine) updateOverride(ctx context.Context, credential types.CredentialID, what string, mutate func(*emission.Override)) error {
	override, err := e.override(ctx, credential)
	if err != nil {
		return err
	}

	mutate(override)
	override.TouchAt(e.now())

	if err := e.store.PutOverride(ctx, override); err != nil {
		return err
	}

	e.plugins.EmitConfigChanged(ctx, what, override)

	e.logger.Info("emission override updated",
		"credential", credential,
		"what", what,
		"multiplier", override.Multiplier,
		"min_claim_interval", override.MinClaimInterval,
	)

	return nil
}

// ──────────────────────────────────────────────────
// Statistics
// ──────────────────────────────────────────────────

// CredentialEmissionStats returns the credential's minting statistics. The
// average rate is the undecayed tokenBaseRate x multiplier / 100.
func (e *Engine) CredentialEmissionStats(ctx context.Context, credential types.CredentialID) (*emission.Stats, error) {
	token, err := e.resolveToken(ctx, credential)
	if err != nil {
		return nil, err
	}

	params, err := e.params(ctx)
	if err != nil {
		return nil, err
	}
	override, err := e.override(ctx, credential)
	if err != nil {
		return nil, err
	}
	state, err := e.credentialState(ctx, credential)
	if err != nil {
		return nil, err
	}

	baseRate, err := e.tokenBaseRate(ctx, token, params)
	if err != nil {
		return nil, err
	}

	return &emission.Stats{
		TotalMinted:   state.TotalMinted,
		ActiveHolders: state.ActiveHolders,
		AverageRate:   baseRate * override.Multiplier / 100,
	}, nil
}

// GlobalEmissionStats returns the cross-credential emission aggregate.
func (e *Engine) GlobalEmissionStats(ctx context.Context) (*emission.GlobalStats, error) {
	return e.globalStats(ctx)
}

// Mints lists the credential's emission receipts, newest first.
func (e *Engine) Mints(ctx context.Context, credential types.CredentialID, opts emission.ListOpts) ([]*emission.Mint, error) {
	return e.store.ListMints(ctx, credential, opts)
}
