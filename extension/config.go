package extension

import "time"

// Config holds the rewards extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.rewards" or "rewards" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration. The rewards engine
	// currently exposes no routes; the flag exists for config parity with
	// the other extensions in the application config file.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for rewards routes (default: "/rewards").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// BaseFeeAmount is the base operation value percentage fees are computed
	// against, in minor currency units (default: 10000000, meaning 10 usdc).
	BaseFeeAmount int64 `json:"base_fee_amount" mapstructure:"base_fee_amount" yaml:"base_fee_amount"`

	// ClaimCooldown is the minimum interval between revenue claims by the
	// same holder on the same credential (default: 24h).
	ClaimCooldown time.Duration `json:"claim_cooldown" mapstructure:"claim_cooldown" yaml:"claim_cooldown"`

	// GroveDatabase is the name of a grove.DB registered in the DI container.
	// When set, the host application is expected to construct the matching
	// store backend (postgres/sqlite/mongo) and inject it via WithStore.
	GroveDatabase string `json:"grove_database" mapstructure:"grove_database" yaml:"grove_database"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BasePath:      "/rewards",
		BaseFeeAmount: 10_000000,
		ClaimCooldown: 24 * time.Hour,
	}
}
