// Package audithook bridges rewards engine lifecycle events to an audit
// trail backend.
//
// It defines a local Recorder interface so the package does not import any
// audit backend directly. Callers inject a RecorderFunc adapter that bridges
// to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veritoken/rewards/emission"
	"github.com/veritoken/rewards/plugin"
	"github.com/veritoken/rewards/revenue"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin               = (*Extension)(nil)
	_ plugin.OnFeeCollected       = (*Extension)(nil)
	_ plugin.OnRevenueDistributed = (*Extension)(nil)
	_ plugin.OnRewardsClaimed     = (*Extension)(nil)
	_ plugin.OnTokensClaimed      = (*Extension)(nil)
	_ plugin.OnClaimRejected      = (*Extension)(nil)
	_ plugin.OnSupplyCapReached   = (*Extension)(nil)
	_ plugin.OnConfigChanged      = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so that the audit_hook package does not import any
// concrete audit backend; callers inject theirs at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges engine lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Fee & revenue hooks
// ──────────────────────────────────────────────────

// OnFeeCollected implements plugin.OnFeeCollected.
func (e *Extension) OnFeeCollected(ctx context.Context, event interface{}) error {
	kv := []any{"event", "fee_collected"}
	resourceID := ""
	if ev, ok := event.(*revenue.FeeEvent); ok {
		resourceID = ev.Credential.String()
		kv = append(kv,
			"payer", ev.Payer.String(),
			"kind", string(ev.Kind),
			"amount", ev.Amount.Amount,
		)
	}
	return e.record(ctx, ActionFeeCollected, SeverityInfo, OutcomeSuccess,
		ResourcePool, resourceID, CategoryRevenue, nil, kv...)
}

// OnRevenueDistributed implements plugin.OnRevenueDistributed.
func (e *Extension) OnRevenueDistributed(ctx context.Context, distribution interface{}) error {
	kv := []any{"event", "revenue_distributed"}
	resourceID := ""
	if d, ok := distribution.(*revenue.Distribution); ok {
		resourceID = d.Credential.String()
		kv = append(kv,
			"amount", d.Amount.Amount,
			"supply", d.Supply,
		)
	}
	return e.record(ctx, ActionRevenueDistributed, SeverityInfo, OutcomeSuccess,
		ResourcePool, resourceID, CategoryRevenue, nil, kv...)
}

// OnRewardsClaimed implements plugin.OnRewardsClaimed.
func (e *Extension) OnRewardsClaimed(ctx context.Context, claim interface{}) error {
	kv := []any{"event", "rewards_claimed"}
	resourceID := ""
	if c, ok := claim.(*revenue.Claim); ok {
		resourceID = c.Credential.String()
		kv = append(kv,
			"holder", c.Holder.String(),
			"amount", c.Amount.Amount,
		)
	}
	return e.record(ctx, ActionRewardsClaimed, SeverityInfo, OutcomeSuccess,
		ResourceReward, resourceID, CategoryRevenue, nil, kv...)
}

// ──────────────────────────────────────────────────
// Emission hooks
// ──────────────────────────────────────────────────

// OnTokensClaimed implements plugin.OnTokensClaimed.
func (e *Extension) OnTokensClaimed(ctx context.Context, mint interface{}) error {
	kv := []any{"event", "tokens_claimed"}
	resourceID := ""
	if m, ok := mint.(*emission.Mint); ok {
		resourceID = m.Credential.String()
		kv = append(kv,
			"holder", m.Holder.String(),
			"amount", m.Amount,
			"rate", m.Rate,
		)
	}
	return e.record(ctx, ActionTokensClaimed, SeverityInfo, OutcomeSuccess,
		ResourceEmission, resourceID, CategoryEmission, nil, kv...)
}

// OnClaimRejected implements plugin.OnClaimRejected.
func (e *Extension) OnClaimRejected(ctx context.Context, credential, holder string, reason error) error {
	return e.record(ctx, ActionClaimRejected, SeverityWarning, OutcomeFailure,
		ResourceReward, credential, CategoryRevenue, reason,
		"holder", holder,
	)
}

// OnSupplyCapReached implements plugin.OnSupplyCapReached.
func (e *Extension) OnSupplyCapReached(ctx context.Context, credential string, supply, maxSupply int64) error {
	return e.record(ctx, ActionSupplyCapReached, SeverityWarning, OutcomePartial,
		ResourceEmission, credential, CategoryEmission, nil,
		"supply", supply,
		"max_supply", maxSupply,
	)
}

// ──────────────────────────────────────────────────
// Admin hooks
// ──────────────────────────────────────────────────

// OnConfigChanged implements plugin.OnConfigChanged.
func (e *Extension) OnConfigChanged(ctx context.Context, what string, _ interface{}) error {
	return e.record(ctx, ActionConfigChanged, SeverityInfo, OutcomeSuccess,
		ResourceConfig, what, CategoryAdmin, nil,
		"what", what,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
