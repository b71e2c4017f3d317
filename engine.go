package rewards

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/veritoken/rewards/chain"
	"github.com/veritoken/rewards/emission"
	"github.com/veritoken/rewards/plugin"
	"github.com/veritoken/rewards/revenue"
	"github.com/veritoken/rewards/store"
	"github.com/veritoken/rewards/types"
)

// lockStripes is the size of the per-credential mutex table.
const lockStripes = 64

// Engine is the credential rewards engine. It runs two ledgers over one
// store: the fee & revenue ledger (stablecoin in, stablecoin out) and the
// emission ledger (reward tokens minted against holding time).
type Engine struct {
	store    store.Store
	registry chain.Registry
	token    chain.Token
	plugins  *plugin.Registry
	logger   *slog.Logger

	// settlement is swappable at runtime via SetSettlement.
	mu         sync.RWMutex
	settlement chain.Settlement

	// locks serialize same-credential operations. Different credentials
	// hash to different stripes and proceed concurrently.
	locks [lockStripes]sync.Mutex

	// globalMu serializes read-modify-write of the cross-credential
	// aggregate, which every stripe writes.
	globalMu sync.Mutex

	// Configuration
	now           func() time.Time
	baseFeeAmount types.Money
	claimCooldown time.Duration
}

// New creates a new Engine instance.
func New(s store.Store, registry chain.Registry, token chain.Token, opts ...Option) *Engine {
	e := &Engine{
		store:         s,
		registry:      registry,
		token:         token,
		plugins:       plugin.NewRegistry(),
		logger:        slog.Default(),
		now:           time.Now,
		baseFeeAmount: types.USDC(10_000000),
		claimCooldown: 24 * time.Hour,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithSettlement sets the settlement currency used to move fees and rewards.
func WithSettlement(s chain.Settlement) Option {
	return func(e *Engine) {
		e.settlement = s
	}
}

// WithClock overrides the engine's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithBaseFeeAmount sets the base operation value fees are computed against.
func WithBaseFeeAmount(amount types.Money) Option {
	return func(e *Engine) {
		e.baseFeeAmount = amount
	}
}

// WithClaimCooldown sets the minimum interval between revenue claims by the
// same holder on the same credential.
func WithClaimCooldown(d time.Duration) Option {
	return func(e *Engine) {
		e.claimCooldown = d
	}
}

// Start migrates the store, seeds the emission parameters and initializes
// plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	// Seed the global emission parameters on first start. DeployedAt is the
	// decay anchor and never changes afterwards.
	if _, err := e.store.GetParams(ctx); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		params := &emission.Params{
			Entity:           types.NewEntityAt(e.now()),
			Version:          1,
			BaseRate:         emission.DefaultBaseRate,
			AntiInflationBps: emission.DefaultAntiInflationBps,
			DeployedAt:       e.now(),
		}
		if err := e.store.PutParams(ctx, params); err != nil {
			return err
		}
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("rewards engine started",
		"base_fee", e.baseFeeAmount,
		"claim_cooldown", e.claimCooldown,
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Internal accessors
// ──────────────────────────────────────────────────

// lock returns the stripe mutex for a credential.
func (e *Engine) lock(credential types.CredentialID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(credential[:]) //nolint:errcheck // fnv never fails
	return &e.locks[h.Sum32()%lockStripes]
}

// currentSettlement returns the settlement reference, or nil when unset.
func (e *Engine) currentSettlement() chain.Settlement {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settlement
}

// zero returns zero money in the engine's settlement currency.
func (e *Engine) zero() types.Money {
	return types.Zero(e.baseFeeAmount.Currency)
}

// resolveToken maps a credential to its backing token. The zero address
// means the registry does not know the credential.
func (e *Engine) resolveToken(ctx context.Context, credential types.CredentialID) (types.Address, error) {
	token, err := e.registry.ResolveToken(ctx, credential)
	if err != nil {
		return types.ZeroAddress, err
	}
	if token.IsZero() {
		return types.ZeroAddress, ErrUnknownCredential
	}
	return token, nil
}

// feeConfig returns the credential's fee configuration, falling back to the
// global record (keyed by the zero credential) and then to an inactive
// zero-rate default. A stored per-credential record only applies while
// active; an inactive one falls through to the global rates.
func (e *Engine) feeConfig(ctx context.Context, credential types.CredentialID) (*revenue.FeeConfig, error) {
	cfg, err := e.store.GetFeeConfig(ctx, credential)
	if err == nil && cfg.Active {
		return cfg, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	cfg, err = e.store.GetFeeConfig(ctx, types.ZeroCredentialID)
	if err == nil {
		cfg.Credential = credential
		return cfg, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return &revenue.FeeConfig{Credential: credential}, nil
}

// pool returns the credential's revenue pool, or a fresh zero pool.
func (e *Engine) pool(ctx context.Context, credential types.CredentialID) (*revenue.Pool, error) {
	p, err := e.store.GetPool(ctx, credential)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return &revenue.Pool{
		Entity:              types.NewEntityAt(e.now()),
		Credential:          credential,
		TotalCollected:      e.zero(),
		TotalDistributed:    e.zero(),
		PendingDistribution: e.zero(),
	}, nil
}

// holderReward returns the holder's revenue claim record, or a fresh zero
// record.
func (e *Engine) holderReward(ctx context.Context, credential types.CredentialID, holder types.Address) (*revenue.HolderReward, error) {
	r, err := e.store.GetHolderReward(ctx, credential, holder)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return &revenue.HolderReward{
		Entity:       types.NewEntityAt(e.now()),
		Credential:   credential,
		Holder:       holder,
		TotalClaimed: e.zero(),
	}, nil
}

// params returns one snapshot of the global emission parameters. Before the
// first Start the defaults apply with the current time as decay anchor.
func (e *Engine) params(ctx context.Context) (*emission.Params, error) {
	p, err := e.store.GetParams(ctx)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return &emission.Params{
		Entity:           types.NewEntityAt(e.now()),
		BaseRate:         emission.DefaultBaseRate,
		AntiInflationBps: emission.DefaultAntiInflationBps,
		DeployedAt:       e.now(),
	}, nil
}

// override returns the credential's emission tuning, or the defaults.
func (e *Engine) override(ctx context.Context, credential types.CredentialID) (*emission.Override, error) {
	o, err := e.store.GetOverride(ctx, credential)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return &emission.Override{
		Entity:           types.NewEntityAt(e.now()),
		Credential:       credential,
		Multiplier:       emission.DefaultMultiplier,
		MinClaimInterval: emission.MinClaimInterval,
	}, nil
}

// credentialState returns the credential's emission aggregate, or a fresh
// zero record.
func (e *Engine) credentialState(ctx context.Context, credential types.CredentialID) (*emission.CredentialState, error) {
	s, err := e.store.GetCredentialState(ctx, credential)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return &emission.CredentialState{
		Entity:     types.NewEntityAt(e.now()),
		Credential: credential,
	}, nil
}

// holderState returns the holder's emission record, or a fresh zero record.
func (e *Engine) holderState(ctx context.Context, credential types.CredentialID, holder types.Address) (*emission.HolderState, error) {
	s, err := e.store.GetHolderState(ctx, credential, holder)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return &emission.HolderState{
		Entity:     types.NewEntityAt(e.now()),
		Credential: credential,
		Holder:     holder,
	}, nil
}

// globalStats returns the cross-credential aggregate, or a fresh zero record.
func (e *Engine) globalStats(ctx context.Context) (*emission.GlobalStats, error) {
	g, err := e.store.GetGlobalStats(ctx)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return &emission.GlobalStats{Entity: types.NewEntityAt(e.now())}, nil
}

// tokenBaseRate returns the token's own emission rate, falling back to the
// global base rate when the token defines none.
func (e *Engine) tokenBaseRate(ctx context.Context, token types.Address, params *emission.Params) (int64, error) {
	rate, err := e.token.BaseEmissionRate(ctx, token)
	if err != nil {
		return 0, err
	}
	if rate == 0 {
		rate = params.BaseRate
	}
	return rate, nil
}
