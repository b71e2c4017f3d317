// Package mongo provides a MongoDB implementation of the rewards store
// using Grove ORM with the mongodriver backend.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	rewards "github.com/veritoken/rewards"
	"github.com/veritoken/rewards/emission"
	"github.com/veritoken/rewards/revenue"
	rewardsstore "github.com/veritoken/rewards/store"
	"github.com/veritoken/rewards/types"
)

// Collection name constants.
const (
	colFeeConfigs       = "rewards_fee_configs"
	colPools            = "rewards_pools"
	colHolderRewards    = "rewards_holder_rewards"
	colFeeEvents        = "rewards_fee_events"
	colDistributions    = "rewards_distributions"
	colRewardClaims     = "rewards_reward_claims"
	colEmissionParams   = "rewards_emission_params"
	colOverrides        = "rewards_emission_overrides"
	colCredentialStates = "rewards_emission_states"
	colHolderStates     = "rewards_holder_states"
	colGlobalStats      = "rewards_global_stats"
	colMints            = "rewards_mints"
)

// compile-time interface check
var _ rewardsstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all rewards collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("rewards/mongo: migrate %s indexes: %w", col, err)
		}
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

// ==================== Fee config ====================

func (s *Store) GetFeeConfig(ctx context.Context, credential types.CredentialID) (*revenue.FeeConfig, error) {
	var m feeConfigModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": credential.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, fmt.Errorf("rewards/mongo: get fee config: %w", err)
	}
	return fromFeeConfigModel(&m)
}

func (s *Store) PutFeeConfig(ctx context.Context, cfg *revenue.FeeConfig) error {
	m := toFeeConfigModel(cfg)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Credential}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":              m.Credential,
			"minting_bps":      m.MintingBps,
			"verification_bps": m.VerificationBps,
			"high_value_bps":   m.HighValueBps,
			"active":           m.Active,
			"created_at":       m.CreatedAt,
			"updated_at":       m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rewards/mongo: put fee config: %w", err)
	}
	return nil
}

// ==================== Revenue pool ====================

func (s *Store) GetPool(ctx context.Context, credential types.CredentialID) (*revenue.Pool, error) {
	var m poolModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": credential.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, fmt.Errorf("rewards/mongo: get pool: %w", err)
	}
	return fromPoolModel(&m)
}

func (s *Store) PutPool(ctx context.Context, p *revenue.Pool) error {
	m := toPoolModel(p)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Credential}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":                  m.Credential,
			"collected_units":      m.CollectedUnits,
			"distributed_units":    m.DistributedUnits,
			"pending_units":        m.PendingUnits,
			"currency":             m.Currency,
			"last_distribution_at": m.LastDistributionAt,
			"created_at":           m.CreatedAt,
			"updated_at":           m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rewards/mongo: put pool: %w", err)
	}
	return nil
}

// ==================== Holder rewards ====================

func (s *Store) GetHolderReward(ctx context.Context, credential types.CredentialID, holder types.Address) (*revenue.HolderReward, error) {
	var m holderRewardModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": holderRecordKey(credential.String(), holder.String())}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, fmt.Errorf("rewards/mongo: get holder reward: %w", err)
	}
	return fromHolderRewardModel(&m)
}

func (s *Store) PutHolderReward(ctx context.Context, r *revenue.HolderReward) error {
	m := toHolderRewardModel(r)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.RecordKey}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":           m.RecordKey,
			"credential":    m.Credential,
			"holder":        m.Holder,
			"claimed_units": m.ClaimedUnits,
			"currency":      m.Currency,
			"last_claim_at": m.LastClaimAt,
			"created_at":    m.CreatedAt,
			"updated_at":    m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rewards/mongo: put holder reward: %w", err)
	}
	return nil
}

// ==================== Receipts ====================

func (s *Store) RecordFeeEvent(ctx context.Context, ev *revenue.FeeEvent) error {
	m := toFeeEventModel(ev)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rewards/mongo: record fee event: %w", err)
	}
	return nil
}

func (s *Store) RecordDistribution(ctx context.Context, d *revenue.Distribution) error {
	m := toDistributionModel(d)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rewards/mongo: record distribution: %w", err)
	}
	return nil
}

func (s *Store) RecordClaim(ctx context.Context, c *revenue.Claim) error {
	m := toClaimModel(c)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rewards/mongo: record claim: %w", err)
	}
	return nil
}

func (s *Store) ListFeeEvents(ctx context.Context, credential types.CredentialID, opts revenue.ListOpts) ([]*revenue.FeeEvent, error) {
	var models []feeEventModel
	q := s.mdb.NewFind(&models).
		Filter(bson.M{"credential": credential.String()}).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rewards/mongo: list fee events: %w", err)
	}

	events := make([]*revenue.FeeEvent, 0, len(models))
	for i := range models {
		ev, err := fromFeeEventModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("rewards/mongo: list fee events: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *Store) ListClaims(ctx context.Context, credential types.CredentialID, opts revenue.ListOpts) ([]*revenue.Claim, error) {
	var models []claimModel
	q := s.mdb.NewFind(&models).
		Filter(bson.M{"credential": credential.String()}).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rewards/mongo: list claims: %w", err)
	}

	claims := make([]*revenue.Claim, 0, len(models))
	for i := range models {
		c, err := fromClaimModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("rewards/mongo: list claims: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, nil
}

// ==================== Emission params ====================

func (s *Store) GetParams(ctx context.Context) (*emission.Params, error) {
	var m emissionParamsModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": paramsKey}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, fmt.Errorf("rewards/mongo: get params: %w", err)
	}
	return fromParamsModel(&m), nil
}

func (s *Store) PutParams(ctx context.Context, p *emission.Params) error {
	m := toParamsModel(p)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.RecordKey}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":                m.RecordKey,
			"version":            m.Version,
			"base_rate":          m.BaseRate,
			"anti_inflation_bps": m.AntiInflationBps,
			"deployed_at":        m.DeployedAt,
			"created_at":         m.CreatedAt,
			"updated_at":         m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rewards/mongo: put params: %w", err)
	}
	return nil
}

// ==================== Emission overrides ====================

func (s *Store) GetOverride(ctx context.Context, credential types.CredentialID) (*emission.Override, error) {
	var m overrideModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": credential.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, fmt.Errorf("rewards/mongo: get override: %w", err)
	}
	return fromOverrideModel(&m)
}

func (s *Store) PutOverride(ctx context.Context, o *emission.Override) error {
	m := toOverrideModel(o)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Credential}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":                     m.Credential,
			"multiplier":              m.Multiplier,
			"min_claim_interval_secs": m.MinClaimIntervalSecs,
			"created_at":              m.CreatedAt,
			"updated_at":              m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rewards/mongo: put override: %w", err)
	}
	return nil
}

// ==================== Credential emission state ====================

func (s *Store) GetCredentialState(ctx context.Context, credential types.CredentialID) (*emission.CredentialState, error) {
	var m credentialStateModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": credential.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, fmt.Errorf("rewards/mongo: get credential state: %w", err)
	}
	return fromCredentialStateModel(&m)
}

func (s *Store) PutCredentialState(ctx context.Context, st *emission.CredentialState) error {
	m := toCredentialStateModel(st)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Credential}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":            m.Credential,
			"total_minted":   m.TotalMinted,
			"active_holders": m.ActiveHolders,
			"created_at":     m.CreatedAt,
			"updated_at":     m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rewards/mongo: put credential state: %w", err)
	}
	return nil
}

// ==================== Holder emission state ====================

func (s *Store) GetHolderState(ctx context.Context, credential types.CredentialID, holder types.Address) (*emission.HolderState, error) {
	var m holderStateModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": holderRecordKey(credential.String(), holder.String())}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, fmt.Errorf("rewards/mongo: get holder state: %w", err)
	}
	return fromHolderStateModel(&m)
}

func (s *Store) PutHolderState(ctx context.Context, st *emission.HolderState) error {
	m := toHolderStateModel(st)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.RecordKey}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":           m.RecordKey,
			"credential":    m.Credential,
			"holder":        m.Holder,
			"last_claim_at": m.LastClaimAt,
			"active":        m.Active,
			"created_at":    m.CreatedAt,
			"updated_at":    m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rewards/mongo: put holder state: %w", err)
	}
	return nil
}

// ==================== Global stats ====================

func (s *Store) GetGlobalStats(ctx context.Context) (*emission.GlobalStats, error) {
	var m globalStatsModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": paramsKey}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rewards.ErrNotFound
		}
		return nil, fmt.Errorf("rewards/mongo: get global stats: %w", err)
	}
	return fromGlobalStatsModel(&m), nil
}

func (s *Store) PutGlobalStats(ctx context.Context, g *emission.GlobalStats) error {
	m := toGlobalStatsModel(g)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.RecordKey}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":                      m.RecordKey,
			"total_minted":             m.TotalMinted,
			"active_holders":           m.ActiveHolders,
			"credentials_with_minting": m.CredentialsWithMinting,
			"created_at":               m.CreatedAt,
			"updated_at":               m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rewards/mongo: put global stats: %w", err)
	}
	return nil
}

// ==================== Mints ====================

func (s *Store) RecordMint(ctx context.Context, mt *emission.Mint) error {
	m := toMintModel(mt)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rewards/mongo: record mint: %w", err)
	}
	return nil
}

func (s *Store) ListMints(ctx context.Context, credential types.CredentialID, opts emission.ListOpts) ([]*emission.Mint, error) {
	var models []mintModel
	q := s.mdb.NewFind(&models).
		Filter(bson.M{"credential": credential.String()}).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rewards/mongo: list mints: %w", err)
	}

	mints := make([]*emission.Mint, 0, len(models))
	for i := range models {
		mt, err := fromMintModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("rewards/mongo: list mints: %w", err)
		}
		mints = append(mints, mt)
	}
	return mints, nil
}

// ==================== Helpers ====================

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all rewards collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colFeeConfigs: {},
		colPools:      {},
		colHolderRewards: {
			{Keys: bson.D{{Key: "credential", Value: 1}}},
			{
				Keys:    bson.D{{Key: "credential", Value: 1}, {Key: "holder", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colFeeEvents: {
			{Keys: bson.D{{Key: "credential", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "payer", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colDistributions: {
			{Keys: bson.D{{Key: "credential", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colRewardClaims: {
			{Keys: bson.D{{Key: "credential", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "holder", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colEmissionParams: {},
		colOverrides:      {},
		colCredentialStates: {
			{Keys: bson.D{{Key: "total_minted", Value: -1}}},
		},
		colHolderStates: {
			{Keys: bson.D{{Key: "credential", Value: 1}}},
			{
				Keys:    bson.D{{Key: "credential", Value: 1}, {Key: "holder", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colGlobalStats: {},
		colMints: {
			{Keys: bson.D{{Key: "credential", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "holder", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
}
