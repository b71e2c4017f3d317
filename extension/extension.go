// Package extension provides the Forge extension adapter for the rewards
// engine.
//
// It implements the forge.Extension interface to integrate the engine
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.rewards" or "rewards"
// keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	rewards "github.com/veritoken/rewards"
	"github.com/veritoken/rewards/chain"
	"github.com/veritoken/rewards/store"
	"github.com/veritoken/rewards/store/memory"
	"github.com/veritoken/rewards/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "rewards"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Credential fee, revenue and token emission engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the rewards engine as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *rewards.Engine
	store      store.Store
	registry   chain.Registry
	token      chain.Token
	engineOpts []rewards.Option
}

// New creates a new rewards Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying rewards engine.
// This is nil until Register is called.
func (e *Extension) Engine() *rewards.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the rewards engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// The chain bindings have no config representation. They must come in
	// programmatically.
	if e.registry == nil {
		return errors.New("rewards: extension requires a credential registry; use extension.WithRegistry")
	}
	if e.token == nil {
		return errors.New("rewards: extension requires a token binding; use extension.WithToken")
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		if e.config.GroveDatabase != "" {
			e.Logger().Warn("rewards: grove_database is set but no store was injected; falling back to memory store",
				forge.F("grove_database", e.config.GroveDatabase),
			)
		}
		e.store = memory.New()
	}

	// Build engine options from resolved config.
	opts := e.buildEngineOpts()

	eng := rewards.New(e.store, e.registry, e.token, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*rewards.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("rewards: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("rewards: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs rewards.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []rewards.Option {
	opts := make([]rewards.Option, 0, len(e.engineOpts)+2)

	if e.config.BaseFeeAmount > 0 {
		opts = append(opts, rewards.WithBaseFeeAmount(types.USDC(e.config.BaseFeeAmount)))
	}
	if e.config.ClaimCooldown > 0 {
		opts = append(opts, rewards.WithClaimCooldown(e.config.ClaimCooldown))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("rewards: configuration is required but not found in config files; " +
				"ensure 'extensions.rewards' or 'rewards' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("rewards: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("base_fee_amount", e.config.BaseFeeAmount),
		forge.F("claim_cooldown", e.config.ClaimCooldown),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.rewards" first (namespaced pattern).
	if cm.IsSet("extensions.rewards") {
		if err := cm.Bind("extensions.rewards", &cfg); err == nil {
			e.Logger().Debug("rewards: loaded config from file",
				forge.F("key", "extensions.rewards"),
			)
			return cfg, true
		}
		e.Logger().Warn("rewards: failed to bind extensions.rewards config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "rewards" key.
	if cm.IsSet("rewards") {
		if err := cm.Bind("rewards", &cfg); err == nil {
			e.Logger().Debug("rewards: loaded config from file",
				forge.F("key", "rewards"),
			)
			return cfg, true
		}
		e.Logger().Warn("rewards: failed to bind rewards config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BasePath == "" {
		cfg.BasePath = defaults.BasePath
	}
	if cfg.BaseFeeAmount == 0 {
		cfg.BaseFeeAmount = defaults.BaseFeeAmount
	}
	if cfg.ClaimCooldown == 0 {
		cfg.ClaimCooldown = defaults.ClaimCooldown
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.BasePath == "" && programmaticConfig.BasePath != "" {
		yamlConfig.BasePath = programmaticConfig.BasePath
	}
	if yamlConfig.GroveDatabase == "" && programmaticConfig.GroveDatabase != "" {
		yamlConfig.GroveDatabase = programmaticConfig.GroveDatabase
	}

	// Numeric fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.BaseFeeAmount == 0 && programmaticConfig.BaseFeeAmount != 0 {
		yamlConfig.BaseFeeAmount = programmaticConfig.BaseFeeAmount
	}
	if yamlConfig.ClaimCooldown == 0 && programmaticConfig.ClaimCooldown != 0 {
		yamlConfig.ClaimCooldown = programmaticConfig.ClaimCooldown
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
