package sqlite

import (
	"time"

	"github.com/xraph/grove"

	"github.com/veritoken/rewards/emission"
	"github.com/veritoken/rewards/id"
	"github.com/veritoken/rewards/revenue"
	"github.com/veritoken/rewards/types"
)

// paramsKey is the fixed primary key of the singleton rows.
const paramsKey = "global"

func holderRecordKey(credential, holder string) string {
	return credential + ":" + holder
}

// timePtr maps the zero time to NULL.
func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// timeVal maps NULL back to the zero time.
func timeVal(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// ==================== Fee config models ====================

type feeConfigModel struct {
	grove.BaseModel `grove:"table:rewards_fee_configs"`

	Credential      string    `grove:"credential,pk"`
	MintingBps      int64     `grove:"minting_bps"`
	VerificationBps int64     `grove:"verification_bps"`
	HighValueBps    int64     `grove:"high_value_bps"`
	Active          bool      `grove:"active"`
	CreatedAt       time.Time `grove:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at"`
}

func toFeeConfigModel(cfg *revenue.FeeConfig) *feeConfigModel {
	return &feeConfigModel{
		Credential:      cfg.Credential.String(),
		MintingBps:      cfg.MintingBps,
		VerificationBps: cfg.VerificationBps,
		HighValueBps:    cfg.HighValueBps,
		Active:          cfg.Active,
		CreatedAt:       cfg.CreatedAt,
		UpdatedAt:       cfg.UpdatedAt,
	}
}

func fromFeeConfigModel(m *feeConfigModel) (*revenue.FeeConfig, error) {
	credential, err := types.ParseCredentialID(m.Credential)
	if err != nil {
		return nil, err
	}

	return &revenue.FeeConfig{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Credential:      credential,
		MintingBps:      m.MintingBps,
		VerificationBps: m.VerificationBps,
		HighValueBps:    m.HighValueBps,
		Active:          m.Active,
	}, nil
}

// ==================== Revenue pool models ====================

type poolModel struct {
	grove.BaseModel `grove:"table:rewards_pools"`

	Credential         string     `grove:"credential,pk"`
	CollectedUnits     int64      `grove:"collected_units"`
	DistributedUnits   int64      `grove:"distributed_units"`
	PendingUnits       int64      `grove:"pending_units"`
	Currency           string     `grove:"currency"`
	LastDistributionAt *time.Time `grove:"last_distribution_at"`
	CreatedAt          time.Time  `grove:"created_at"`
	UpdatedAt          time.Time  `grove:"updated_at"`
}

func toPoolModel(p *revenue.Pool) *poolModel {
	return &poolModel{
		Credential:         p.Credential.String(),
		CollectedUnits:     p.TotalCollected.Amount,
		DistributedUnits:   p.TotalDistributed.Amount,
		PendingUnits:       p.PendingDistribution.Amount,
		Currency:           p.TotalCollected.Currency,
		LastDistributionAt: timePtr(p.LastDistributionAt),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func fromPoolModel(m *poolModel) (*revenue.Pool, error) {
	credential, err := types.ParseCredentialID(m.Credential)
	if err != nil {
		return nil, err
	}

	return &revenue.Pool{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Credential:          credential,
		TotalCollected:      types.Money{Amount: m.CollectedUnits, Currency: m.Currency},
		TotalDistributed:    types.Money{Amount: m.DistributedUnits, Currency: m.Currency},
		PendingDistribution: types.Money{Amount: m.PendingUnits, Currency: m.Currency},
		LastDistributionAt:  timeVal(m.LastDistributionAt),
	}, nil
}

// ==================== Holder reward models ====================

type holderRewardModel struct {
	grove.BaseModel `grove:"table:rewards_holder_rewards"`

	RecordKey    string     `grove:"record_key,pk"`
	Credential   string     `grove:"credential"`
	Holder       string     `grove:"holder"`
	ClaimedUnits int64      `grove:"claimed_units"`
	Currency     string     `grove:"currency"`
	LastClaimAt  *time.Time `grove:"last_claim_at"`
	CreatedAt    time.Time  `grove:"created_at"`
	UpdatedAt    time.Time  `grove:"updated_at"`
}

func toHolderRewardModel(r *revenue.HolderReward) *holderRewardModel {
	return &holderRewardModel{
		RecordKey:    holderRecordKey(r.Credential.String(), r.Holder.String()),
		Credential:   r.Credential.String(),
		Holder:       r.Holder.String(),
		ClaimedUnits: r.TotalClaimed.Amount,
		Currency:     r.TotalClaimed.Currency,
		LastClaimAt:  timePtr(r.LastClaimAt),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func fromHolderRewardModel(m *holderRewardModel) (*revenue.HolderReward, error) {
	credential, err := types.ParseCredentialID(m.Credential)
	if err != nil {
		return nil, err
	}

	return &revenue.HolderReward{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Credential:   credential,
		Holder:       types.Address(m.Holder),
		TotalClaimed: types.Money{Amount: m.ClaimedUnits, Currency: m.Currency},
		LastClaimAt:  timeVal(m.LastClaimAt),
	}, nil
}

// ==================== Receipt models ====================

type feeEventModel struct {
	grove.BaseModel `grove:"table:rewards_fee_events"`

	ID          string    `grove:"id,pk"`
	Credential  string    `grove:"credential"`
	Payer       string    `grove:"payer"`
	Kind        string    `grove:"kind"`
	AmountUnits int64     `grove:"amount_units"`
	Currency    string    `grove:"currency"`
	CreatedAt   time.Time `grove:"created_at"`
}

func toFeeEventModel(ev *revenue.FeeEvent) *feeEventModel {
	return &feeEventModel{
		ID:          ev.ID.String(),
		Credential:  ev.Credential.String(),
		Payer:       ev.Payer.String(),
		Kind:        string(ev.Kind),
		AmountUnits: ev.Amount.Amount,
		Currency:    ev.Amount.Currency,
		CreatedAt:   ev.CreatedAt,
	}
}

func fromFeeEventModel(m *feeEventModel) (*revenue.FeeEvent, error) {
	evtID, err := id.ParseFeeEventID(m.ID)
	if err != nil {
		return nil, err
	}
	credential, err := types.ParseCredentialID(m.Credential)
	if err != nil {
		return nil, err
	}

	return &revenue.FeeEvent{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.CreatedAt,
		},
		ID:         evtID,
		Credential: credential,
		Payer:      types.Address(m.Payer),
		Kind:       revenue.FeeKind(m.Kind),
		Amount:     types.Money{Amount: m.AmountUnits, Currency: m.Currency},
	}, nil
}

type distributionModel struct {
	grove.BaseModel `grove:"table:rewards_distributions"`

	ID          string    `grove:"id,pk"`
	Credential  string    `grove:"credential"`
	AmountUnits int64     `grove:"amount_units"`
	Currency    string    `grove:"currency"`
	Supply      int64     `grove:"supply"`
	CreatedAt   time.Time `grove:"created_at"`
}

func toDistributionModel(d *revenue.Distribution) *distributionModel {
	return &distributionModel{
		ID:          d.ID.String(),
		Credential:  d.Credential.String(),
		AmountUnits: d.Amount.Amount,
		Currency:    d.Amount.Currency,
		Supply:      d.Supply,
		CreatedAt:   d.CreatedAt,
	}
}

type claimModel struct {
	grove.BaseModel `grove:"table:rewards_reward_claims"`

	ID          string    `grove:"id,pk"`
	Credential  string    `grove:"credential"`
	Holder      string    `grove:"holder"`
	AmountUnits int64     `grove:"amount_units"`
	Currency    string    `grove:"currency"`
	CreatedAt   time.Time `grove:"created_at"`
}

func toClaimModel(c *revenue.Claim) *claimModel {
	return &claimModel{
		ID:          c.ID.String(),
		Credential:  c.Credential.String(),
		Holder:      c.Holder.String(),
		AmountUnits: c.Amount.Amount,
		Currency:    c.Amount.Currency,
		CreatedAt:   c.CreatedAt,
	}
}

func fromClaimModel(m *claimModel) (*revenue.Claim, error) {
	claimID, err := id.ParseRewardClaimID(m.ID)
	if err != nil {
		return nil, err
	}
	credential, err := types.ParseCredentialID(m.Credential)
	if err != nil {
		return nil, err
	}

	return &revenue.Claim{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.CreatedAt,
		},
		ID:         claimID,
		Credential: credential,
		Holder:     types.Address(m.Holder),
		Amount:     types.Money{Amount: m.AmountUnits, Currency: m.Currency},
	}, nil
}

// ==================== Emission models ====================

type emissionParamsModel struct {
	grove.BaseModel `grove:"table:rewards_emission_params"`

	RecordKey        string    `grove:"record_key,pk"`
	Version          int64     `grove:"version"`
	BaseRate         int64     `grove:"base_rate"`
	AntiInflationBps int64     `grove:"anti_inflation_bps"`
	DeployedAt       time.Time `grove:"deployed_at"`
	CreatedAt        time.Time `grove:"created_at"`
	UpdatedAt        time.Time `grove:"updated_at"`
}

func toParamsModel(p *emission.Params) *emissionParamsModel {
	return &emissionParamsModel{
		RecordKey:        paramsKey,
		Version:          p.Version,
		BaseRate:         p.BaseRate,
		AntiInflationBps: p.AntiInflationBps,
		DeployedAt:       p.DeployedAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func fromParamsModel(m *emissionParamsModel) *emission.Params {
	return &emission.Params{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version:          m.Version,
		BaseRate:         m.BaseRate,
		AntiInflationBps: m.AntiInflationBps,
		DeployedAt:       m.DeployedAt,
	}
}

type overrideModel struct {
	grove.BaseModel `grove:"table:rewards_emission_overrides"`

	Credential           string    `grove:"credential,pk"`
	Multiplier           int64     `grove:"multiplier"`
	MinClaimIntervalSecs int64     `grove:"min_claim_interval_secs"`
	CreatedAt            time.Time `grove:"created_at"`
	UpdatedAt            time.Time `grove:"updated_at"`
}

func toOverrideModel(o *emission.Override) *overrideModel {
	return &overrideModel{
		Credential:           o.Credential.String(),
		Multiplier:           o.Multiplier,
		MinClaimIntervalSecs: int64(o.MinClaimInterval / time.Second),
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

func fromOverrideModel(m *overrideModel) (*emission.Override, error) {
	credential, err := types.ParseCredentialID(m.Credential)
	if err != nil {
		return nil, err
	}

	return &emission.Override{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Credential:       credential,
		Multiplier:       m.Multiplier,
		MinClaimInterval: time.Duration(m.MinClaimIntervalSecs) * time.Second,
	}, nil
}

type credentialStateModel struct {
	grove.BaseModel `grove:"table:rewards_emission_states"`

	Credential    string    `grove:"credential,pk"`
	TotalMinted   int64     `grove:"total_minted"`
	ActiveHolders int64     `grove:"active_holders"`
	CreatedAt     time.Time `grove:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"`
}

func toCredentialStateModel(s *emission.CredentialState) *credentialStateModel {
	return &credentialStateModel{
		Credential:    s.Credential.String(),
		TotalMinted:   s.TotalMinted,
		ActiveHolders: s.ActiveHolders,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func fromCredentialStateModel(m *credentialStateModel) (*emission.CredentialState, error) {
	credential, err := types.ParseCredentialID(m.Credential)
	if err != nil {
		return nil, err
	}

	return &emission.CredentialState{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Credential:    credential,
		TotalMinted:   m.TotalMinted,
		ActiveHolders: m.ActiveHolders,
	}, nil
}

type holderStateModel struct {
	grove.BaseModel `grove:"table:rewards_holder_states"`

	RecordKey   string     `grove:"record_key,pk"`
	Credential  string     `grove:"credential"`
	Holder      string     `grove:"holder"`
	LastClaimAt *time.Time `grove:"last_claim_at"`
	Active      bool       `grove:"active"`
	CreatedAt   time.Time  `grove:"created_at"`
	UpdatedAt   time.Time  `grove:"updated_at"`
}

func toHolderStateModel(s *emission.HolderState) *holderStateModel {
	return &holderStateModel{
		RecordKey:   holderRecordKey(s.Credential.String(), s.Holder.String()),
		Credential:  s.Credential.String(),
		Holder:      s.Holder.String(),
		LastClaimAt: timePtr(s.LastClaimAt),
		Active:      s.Active,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func fromHolderStateModel(m *holderStateModel) (*emission.HolderState, error) {
	credential, err := types.ParseCredentialID(m.Credential)
	if err != nil {
		return nil, err
	}

	return &emission.HolderState{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Credential:  credential,
		Holder:      types.Address(m.Holder),
		LastClaimAt: timeVal(m.LastClaimAt),
		Active:      m.Active,
	}, nil
}

type globalStatsModel struct {
	grove.BaseModel `grove:"table:rewards_global_stats"`

	RecordKey              string    `grove:"record_key,pk"`
	TotalMinted            int64     `grove:"total_minted"`
	ActiveHolders          int64     `grove:"active_holders"`
	CredentialsWithMinting int64     `grove:"credentials_with_minting"`
	CreatedAt              time.Time `grove:"created_at"`
	UpdatedAt              time.Time `grove:"updated_at"`
}

func toGlobalStatsModel(g *emission.GlobalStats) *globalStatsModel {
	return &globalStatsModel{
		RecordKey:              paramsKey,
		TotalMinted:            g.TotalMinted,
		ActiveHolders:          g.ActiveHolders,
		CredentialsWithMinting: g.CredentialsWithMinting,
		CreatedAt:              g.CreatedAt,
		UpdatedAt:              g.UpdatedAt,
	}
}

func fromGlobalStatsModel(m *globalStatsModel) *emission.GlobalStats {
	return &emission.GlobalStats{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TotalMinted:            m.TotalMinted,
		ActiveHolders:          m.ActiveHolders,
		CredentialsWithMinting: m.CredentialsWithMinting,
	}
}

type mintModel struct {
	grove.BaseModel `grove:"table:rewards_mints"`

	ID         string    `grove:"id,pk"`
	Credential string    `grove:"credential"`
	Holder     string    `grove:"holder"`
	Amount     int64     `grove:"amount"`
	Rate       int64     `grove:"rate"`
	CreatedAt  time.Time `grove:"created_at"`
}

func toMintModel(m *emission.Mint) *mintModel {
	return &mintModel{
		ID:         m.ID.String(),
		Credential: m.Credential.String(),
		Holder:     m.Holder.String(),
		Amount:     m.Amount,
		Rate:       m.Rate,
		CreatedAt:  m.CreatedAt,
	}
}

func fromMintModel(m *mintModel) (*emission.Mint, error) {
	mintID, err := id.ParseMintID(m.ID)
	if err != nil {
		return nil, err
	}
	credential, err := types.ParseCredentialID(m.Credential)
	if err != nil {
		return nil, err
	}

	return &emission.Mint{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.CreatedAt,
		},
		ID:         mintID,
		Credential: credential,
		Holder:     types.Address(m.Holder),
		Amount:     m.Amount,
		Rate:       m.Rate,
	}, nil
}
