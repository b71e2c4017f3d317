package extension

import (
	"time"

	rewards "github.com/veritoken/rewards"
	"github.com/veritoken/rewards/chain"
	"github.com/veritoken/rewards/plugin"
	"github.com/veritoken/rewards/store"
)

// Option configures the rewards Forge extension.
type Option func(*Extension)

// WithStore sets the store for the rewards engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithRegistry sets the credential registry binding. Required.
func WithRegistry(r chain.Registry) Option {
	return func(e *Extension) {
		e.registry = r
	}
}

// WithToken sets the reward token binding. Required.
func WithToken(t chain.Token) Option {
	return func(e *Extension) {
		e.token = t
	}
}

// WithSettlement sets the settlement currency binding.
func WithSettlement(s chain.Settlement) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, rewards.WithSettlement(s))
	}
}

// WithEngineOption passes a rewards.Option through to the underlying engine.
func WithEngineOption(opt rewards.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a rewards engine plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, rewards.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes prevents HTTP route registration.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBasePath sets the URL prefix for rewards routes.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithBaseFeeAmount sets the base operation value, in minor currency units.
func WithBaseFeeAmount(amount int64) Option {
	return func(e *Extension) { e.config.BaseFeeAmount = amount }
}

// WithClaimCooldown sets the minimum interval between revenue claims.
func WithClaimCooldown(d time.Duration) Option {
	return func(e *Extension) { e.config.ClaimCooldown = d }
}

// WithGroveDatabase records the name of the grove.DB the host application
// wires the store from. Pass an empty string for the default (unnamed) DB.
// The store itself is still injected via WithStore.
func WithGroveDatabase(name string) Option {
	return func(e *Extension) {
		e.config.GroveDatabase = name
	}
}
