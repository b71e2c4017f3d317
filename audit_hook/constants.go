package audithook

// Action constants for audit events.
const (
	// Fee & revenue actions
	ActionFeeCollected       = "fee.collected"
	ActionRevenueDistributed = "revenue.distributed"
	ActionRewardsClaimed     = "rewards.claimed"

	// Emission actions
	ActionTokensClaimed    = "tokens.claimed"
	ActionClaimRejected    = "claim.rejected"
	ActionSupplyCapReached = "supply_cap.reached"

	// Admin actions
	ActionConfigChanged = "config.changed"
)

// Resource constants for audit events.
const (
	ResourcePool     = "pool"
	ResourceReward   = "reward"
	ResourceEmission = "emission"
	ResourceConfig   = "config"
)

// Category constants for audit events.
const (
	CategoryRevenue  = "revenue"
	CategoryEmission = "emission"
	CategoryAdmin    = "admin"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
