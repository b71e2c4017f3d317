package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit               []OnInit
	onShutdown           []OnShutdown
	onFeeCollected       []OnFeeCollected
	onRevenueDistributed []OnRevenueDistributed
	onRewardsClaimed     []OnRewardsClaimed
	onTokensClaimed      []OnTokensClaimed
	onClaimRejected      []OnClaimRejected
	onSupplyCapReached   []OnSupplyCapReached
	onConfigChanged      []OnConfigChanged
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnFeeCollected); ok {
		r.onFeeCollected = append(r.onFeeCollected, v)
	}
	if v, ok := p.(OnRevenueDistributed); ok {
		r.onRevenueDistributed = append(r.onRevenueDistributed, v)
	}
	if v, ok := p.(OnRewardsClaimed); ok {
		r.onRewardsClaimed = append(r.onRewardsClaimed, v)
	}
	if v, ok := p.(OnTokensClaimed); ok {
		r.onTokensClaimed = append(r.onTokensClaimed, v)
	}
	if v, ok := p.(OnClaimRejected); ok {
		r.onClaimRejected = append(r.onClaimRejected, v)
	}
	if v, ok := p.(OnSupplyCapReached); ok {
		r.onSupplyCapReached = append(r.onSupplyCapReached, v)
	}
	if v, ok := p.(OnConfigChanged); ok {
		r.onConfigChanged = append(r.onConfigChanged, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnFeeCollected)(nil)).Elem(), "OnFeeCollected")
	checkInterface(reflect.TypeOf((*OnRevenueDistributed)(nil)).Elem(), "OnRevenueDistributed")
	checkInterface(reflect.TypeOf((*OnRewardsClaimed)(nil)).Elem(), "OnRewardsClaimed")
	checkInterface(reflect.TypeOf((*OnTokensClaimed)(nil)).Elem(), "OnTokensClaimed")
	checkInterface(reflect.TypeOf((*OnClaimRejected)(nil)).Elem(), "OnClaimRejected")
	checkInterface(reflect.TypeOf((*OnSupplyCapReached)(nil)).Elem(), "OnSupplyCapReached")
	checkInterface(reflect.TypeOf((*OnConfigChanged)(nil)).Elem(), "OnConfigChanged")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitFeeCollected emits a fee collected event.
func (r *Registry) EmitFeeCollected(ctx context.Context, event interface{}) {
	r.mu.RLock()
	plugins := r.onFeeCollected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFeeCollected(ctx, event)
		}); err != nil {
			r.logger.Warn("plugin OnFeeCollected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRevenueDistributed emits a revenue distributed event.
func (r *Registry) EmitRevenueDistributed(ctx context.Context, distribution interface{}) {
	r.mu.RLock()
	plugins := r.onRevenueDistributed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRevenueDistributed(ctx, distribution)
		}); err != nil {
			r.logger.Warn("plugin OnRevenueDistributed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRewardsClaimed emits a rewards claimed event.
func (r *Registry) EmitRewardsClaimed(ctx context.Context, claim interface{}) {
	r.mu.RLock()
	plugins := r.onRewardsClaimed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRewardsClaimed(ctx, claim)
		}); err != nil {
			r.logger.Warn("plugin OnRewardsClaimed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTokensClaimed emits a tokens claimed event.
func (r *Registry) EmitTokensClaimed(ctx context.Context, mint interface{}) {
	r.mu.RLock()
	plugins := r.onTokensClaimed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTokensClaimed(ctx, mint)
		}); err != nil {
			r.logger.Warn("plugin OnTokensClaimed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitClaimRejected emits a claim rejected event.
func (r *Registry) EmitClaimRejected(ctx context.Context, credential, holder string, reason error) {
	r.mu.RLock()
	plugins := r.onClaimRejected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnClaimRejected(ctx, credential, holder, reason)
		}); err != nil {
			r.logger.Warn("plugin OnClaimRejected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSupplyCapReached emits a supply cap reached event.
func (r *Registry) EmitSupplyCapReached(ctx context.Context, credential string, supply, maxSupply int64) {
	r.mu.RLock()
	plugins := r.onSupplyCapReached
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSupplyCapReached(ctx, credential, supply, maxSupply)
		}); err != nil {
			r.logger.Warn("plugin OnSupplyCapReached failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitConfigChanged emits a config changed event.
func (r *Registry) EmitConfigChanged(ctx context.Context, what string, config interface{}) {
	r.mu.RLock()
	plugins := r.onConfigChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnConfigChanged(ctx, what, config)
		}); err != nil {
			r.logger.Warn("plugin OnConfigChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the claim pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
