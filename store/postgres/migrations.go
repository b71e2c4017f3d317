package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the rewards store.
var Migrations = migrate.NewGroup("rewards")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_rewards_revenue_tables",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rewards_fee_configs (
    credential       TEXT PRIMARY KEY,
    minting_bps      BIGINT NOT NULL DEFAULT 0,
    verification_bps BIGINT NOT NULL DEFAULT 0,
    high_value_bps   BIGINT NOT NULL DEFAULT 0,
    active           BOOLEAN NOT NULL DEFAULT FALSE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS rewards_pools (
    credential           TEXT PRIMARY KEY,
    collected_units      BIGINT NOT NULL DEFAULT 0,
    distributed_units    BIGINT NOT NULL DEFAULT 0,
    pending_units        BIGINT NOT NULL DEFAULT 0,
    currency             TEXT NOT NULL DEFAULT 'usdc',
    last_distribution_at TIMESTAMPTZ,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS rewards_holder_rewards (
    record_key    TEXT PRIMARY KEY,
    credential    TEXT NOT NULL DEFAULT '',
    holder        TEXT NOT NULL DEFAULT '',
    claimed_units BIGINT NOT NULL DEFAULT 0,
    currency      TEXT NOT NULL DEFAULT 'usdc',
    last_claim_at TIMESTAMPTZ,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_rewards_holder_rewards_credential ON rewards_holder_rewards (credential);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS rewards_holder_rewards;
DROP TABLE IF EXISTS rewards_pools;
DROP TABLE IF EXISTS rewards_fee_configs;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_rewards_receipt_tables",
			Version: "20260101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rewards_fee_events (
    id           TEXT PRIMARY KEY,
    credential   TEXT NOT NULL DEFAULT '',
    payer        TEXT NOT NULL DEFAULT '',
    kind         TEXT NOT NULL DEFAULT '',
    amount_units BIGINT NOT NULL DEFAULT 0,
    currency     TEXT NOT NULL DEFAULT 'usdc',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_rewards_fee_events_credential ON rewards_fee_events (credential, created_at);

CREATE TABLE IF NOT EXISTS rewards_distributions (
    id           TEXT PRIMARY KEY,
    credential   TEXT NOT NULL DEFAULT '',
    amount_units BIGINT NOT NULL DEFAULT 0,
    currency     TEXT NOT NULL DEFAULT 'usdc',
    supply       BIGINT NOT NULL DEFAULT 0,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_rewards_distributions_credential ON rewards_distributions (credential, created_at);

CREATE TABLE IF NOT EXISTS rewards_reward_claims (
    id           TEXT PRIMARY KEY,
    credential   TEXT NOT NULL DEFAULT '',
    holder       TEXT NOT NULL DEFAULT '',
    amount_units BIGINT NOT NULL DEFAULT 0,
    currency     TEXT NOT NULL DEFAULT 'usdc',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_rewards_reward_claims_credential ON rewards_reward_claims (credential, created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS rewards_reward_claims;
DROP TABLE IF EXISTS rewards_distributions;
DROP TABLE IF EXISTS rewards_fee_events;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_rewards_emission_tables",
			Version: "20260101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rewards_emission_params (
    record_key         TEXT PRIMARY KEY,
    version            BIGINT NOT NULL DEFAULT 0,
    base_rate          BIGINT NOT NULL DEFAULT 10,
    anti_inflation_bps BIGINT NOT NULL DEFAULT 10000,
    deployed_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS rewards_emission_overrides (
    credential              TEXT PRIMARY KEY,
    multiplier              BIGINT NOT NULL DEFAULT 100,
    min_claim_interval_secs BIGINT NOT NULL DEFAULT 86400,
    created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS rewards_emission_states (
    credential     TEXT PRIMARY KEY,
    total_minted   BIGINT NOT NULL DEFAULT 0,
    active_holders BIGINT NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS rewards_holder_states (
    record_key    TEXT PRIMARY KEY,
    credential    TEXT NOT NULL DEFAULT '',
    holder        TEXT NOT NULL DEFAULT '',
    last_claim_at TIMESTAMPTZ,
    active        BOOLEAN NOT NULL DEFAULT FALSE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_rewards_holder_states_credential ON rewards_holder_states (credential);

CREATE TABLE IF NOT EXISTS rewards_global_stats (
    record_key               TEXT PRIMARY KEY,
    total_minted             BIGINT NOT NULL DEFAULT 0,
    active_holders           BIGINT NOT NULL DEFAULT 0,
    credentials_with_minting BIGINT NOT NULL DEFAULT 0,
    created_at               TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS rewards_mints (
    id         TEXT PRIMARY KEY,
    credential TEXT NOT NULL DEFAULT '',
    holder     TEXT NOT NULL DEFAULT '',
    amount     BIGINT NOT NULL DEFAULT 0,
    rate       BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_rewards_mints_credential ON rewards_mints (credential, created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS rewards_mints;
DROP TABLE IF EXISTS rewards_global_stats;
DROP TABLE IF EXISTS rewards_holder_states;
DROP TABLE IF EXISTS rewards_emission_states;
DROP TABLE IF EXISTS rewards_emission_overrides;
DROP TABLE IF EXISTS rewards_emission_params;
`)
				return err
			},
		},
	)
}
