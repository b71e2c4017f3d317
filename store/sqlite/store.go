// Package sqlite implements the rewards store on SQLite via the Grove
// ORM. It mirrors the postgres backend with SQLite placeholders and DDL;
// useful for single-process deployments and integration tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/veritoken/rewards"
	"github.com/veritoken/rewards/emission"
	"github.com/veritoken/rewards/revenue"
	rewardsstore "github.com/veritoken/rewards/store"
	"github.com/veritoken/rewards/types"
)

// compile-time interface check
var _ rewardsstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("rewards/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("rewards/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Fee & revenue ledger ====================

func (s *Store) GetFeeConfig(ctx context.Context, credential types.CredentialID) (*revenue.FeeConfig, error) {
	m := new(feeConfigModel)
	err := s.sdb.NewSelect(m).
		Where("credential = ?", credential.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, err
	}
	return fromFeeConfigModel(m)
}

func (s *Store) PutFeeConfig(ctx context.Context, cfg *revenue.FeeConfig) error {
	m := toFeeConfigModel(cfg)
	_, err := s.sdb.NewInsert(m).
		OnConflict("(credential) DO UPDATE").
		Set("minting_bps = excluded.minting_bps").
		Set("verification_bps = excluded.verification_bps").
		Set("high_value_bps = excluded.high_value_bps").
		Set("active = excluded.active").
		Set("updated_at = excluded.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetPool(ctx context.Context, credential types.CredentialID) (*revenue.Pool, error) {
	m := new(poolModel)
	err := s.sdb.NewSelect(m).
		Where("credential = ?", credential.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, err
	}
	return fromPoolModel(m)
}

func (s *Store) PutPool(ctx context.Context, p *revenue.Pool) error {
	m := toPoolModel(p)
	_, err := s.sdb.NewInsert(m).
		OnConflict("(credential) DO UPDATE").
		Set("collected_units = excluded.collected_units").
		Set("distributed_units = excluded.distributed_units").
		Set("pending_units = excluded.pending_units").
		Set("currency = excluded.currency").
		Set("last_distribution_at = excluded.last_distribution_at").
		Set("updated_at = excluded.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetHolderReward(ctx context.Context, credential types.CredentialID, holder types.Address) (*revenue.HolderReward, error) {
	m := new(holderRewardModel)
	err := s.sdb.NewSelect(m).
		Where("record_key = ?", holderRecordKey(credential.String(), holder.String())).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, err
	}
	return fromHolderRewardModel(m)
}

func (s *Store) PutHolderReward(ctx context.Context, r *revenue.HolderReward) error {
	m := toHolderRewardModel(r)
	_, err := s.sdb.NewInsert(m).
		OnConflict("(record_key) DO UPDATE").
		Set("claimed_units = excluded.claimed_units").
		Set("currency = excluded.currency").
		Set("last_claim_at = excluded.last_claim_at").
		Set("updated_at = excluded.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) RecordFeeEvent(ctx context.Context, ev *revenue.FeeEvent) error {
	m := toFeeEventModel(ev)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) RecordDistribution(ctx context.Context, d *revenue.Distribution) error {
	m := toDistributionModel(d)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) RecordClaim(ctx context.Context, c *revenue.Claim) error {
	m := toClaimModel(c)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListFeeEvents(ctx context.Context, credential types.CredentialID, opts revenue.ListOpts) ([]*revenue.FeeEvent, error) {
	var models []feeEventModel
	q := s.sdb.NewSelect(&models).
		Where("credential = ?", credential.String())

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*revenue.FeeEvent, len(models))
	for i := range models {
		ev, err := fromFeeEventModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = ev
	}
	return result, nil
}

func (s *Store) ListClaims(ctx context.Context, credential types.CredentialID, opts revenue.ListOpts) ([]*revenue.Claim, error) {
	var models []claimModel
	q := s.sdb.NewSelect(&models).
		Where("credential = ?", credential.String())

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*revenue.Claim, len(models))
	for i := range models {
		c, err := fromClaimModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

// ==================== Emission ledger ====================

func (s *Store) GetParams(ctx context.Context) (*emission.Params, error) {
	m := new(emissionParamsModel)
	err := s.sdb.NewSelect(m).
		Where("record_key = ?", paramsKey).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, err
	}
	return fromParamsModel(m), nil
}

func (s *Store) PutParams(ctx context.Context, p *emission.Params) error {
	m := toParamsModel(p)
	_, err := s.sdb.NewInsert(m).
		OnConflict("(record_key) DO UPDATE").
		Set("version = excluded.version").
		Set("base_rate = excluded.base_rate").
		Set("anti_inflation_bps = excluded.anti_inflation_bps").
		Set("deployed_at = excluded.deployed_at").
		Set("updated_at = excluded.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetOverride(ctx context.Context, credential types.CredentialID) (*emission.Override, error) {
	m := new(overrideModel)
	err := s.sdb.NewSelect(m).
		Where("credential = ?", credential.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, err
	}
	return fromOverrideModel(m)
}

func (s *Store) PutOverride(ctx context.Context, o *emission.Override) error {
	m := toOverrideModel(o)
	_, err := s.sdb.NewInsert(m).
		OnConflict("(credential) DO UPDATE").
		Set("multiplier = excluded.multiplier").
		Set("min_claim_interval_secs = excluded.min_claim_interval_secs").
		Set("updated_at = excluded.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetCredentialState(ctx context.Context, credential types.CredentialID) (*emission.CredentialState, error) {
	m := new(credentialStateModel)
	err := s.sdb.NewSelect(m).
		Where("credential = ?", credential.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, err
	}
	return fromCredentialStateModel(m)
}

func (s *Store) PutCredentialState(ctx context.Context, st *emission.CredentialState) error {
	m := toCredentialStateModel(st)
	_, err := s.sdb.NewInsert(m).
		OnConflict("(credential) DO UPDATE").
		Set("total_minted = excluded.total_minted").
		Set("active_holders = excluded.active_holders").
		Set("updated_at = excluded.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetHolderState(ctx context.Context, credential types.CredentialID, holder types.Address) (*emission.HolderState, error) {
	m := new(holderStateModel)
	err := s.sdb.NewSelect(m).
		Where("record_key = ?", holderRecordKey(credential.String(), holder.String())).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, err
	}
	return fromHolderStateModel(m)
}

func (s *Store) PutHolderState(ctx context.Context, st *emission.HolderState) error {
	m := toHolderStateModel(st)
	_, err := s.sdb.NewInsert(m).
		OnConflict("(record_key) DO UPDATE").
		Set("last_claim_at = excluded.last_claim_at").
		Set("active = excluded.active").
		Set("updated_at = excluded.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetGlobalStats(ctx context.Context) (*emission.GlobalStats, error) {
	m := new(globalStatsModel)
	err := s.sdb.NewSelect(m).
		Where("record_key = ?", paramsKey).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, err
	}
	return fromGlobalStatsModel(m), nil
}

func (s *Store) PutGlobalStats(ctx context.Context, g *emission.GlobalStats) error {
	m := toGlobalStatsModel(g)
	_, err := s.sdb.NewInsert(m).
		OnConflict("(record_key) DO UPDATE").
		Set("total_minted = excluded.total_minted").
		Set("active_holders = excluded.active_holders").
		Set("credentials_with_minting = excluded.credentials_with_minting").
		Set("updated_at = excluded.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) RecordMint(ctx context.Context, m *emission.Mint) error {
	model := toMintModel(m)
	_, err := s.sdb.NewInsert(model).Exec(ctx)
	return err
}

func (s *Store) ListMints(ctx context.Context, credential types.CredentialID, opts emission.ListOpts) ([]*emission.Mint, error) {
	var models []mintModel
	q := s.sdb.NewSelect(&models).
		Where("credential = ?", credential.String())

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*emission.Mint, len(models))
	for i := range models {
		mint, err := fromMintModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = mint
	}
	return result, nil
}

// ==================== Helpers ====================

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
