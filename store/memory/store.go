// Package memory provides an in-memory Store implementation backed by
// maps and a RWMutex. It is the default store for tests and embedding;
// nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/veritoken/rewards"
	"github.com/veritoken/rewards/emission"
	"github.com/veritoken/rewards/revenue"
	"github.com/veritoken/rewards/types"
)

type Store struct {
	mu sync.RWMutex

	// Fee & revenue ledger storage
	feeConfigs    map[string]*revenue.FeeConfig
	pools         map[string]*revenue.Pool
	holderRewards map[string]*revenue.HolderReward
	feeEvents     []revenue.FeeEvent
	distributions []revenue.Distribution
	claims        []revenue.Claim

	// Emission ledger storage
	params           *emission.Params
	overrides        map[string]*emission.Override
	credentialStates map[string]*emission.CredentialState
	holderStates     map[string]*emission.HolderState
	globalStats      *emission.GlobalStats
	mints            []emission.Mint
}

func New() *Store {
	return &Store{
		feeConfigs:       make(map[string]*revenue.FeeConfig),
		pools:            make(map[string]*revenue.Pool),
		holderRewards:    make(map[string]*revenue.HolderReward),
		overrides:        make(map[string]*emission.Override),
		credentialStates: make(map[string]*emission.CredentialState),
		holderStates:     make(map[string]*emission.HolderState),
	}
}

func holderKey(credential types.CredentialID, holder types.Address) string {
	return credential.String() + ":" + holder.String()
}

// Fee & revenue ledger implementation.
// Records are copied on the way in and out so callers never share state
// with the store.

func (s *Store) GetFeeConfig(_ context.Context, credential types.CredentialID) (*revenue.FeeConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cfg, ok := s.feeConfigs[credential.String()]; ok {
		cp := *cfg
		return &cp, nil
	}
	return nil, rewards.ErrNotFound
}

func (s *Store) PutFeeConfig(_ context.Context, cfg *revenue.FeeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *cfg
	s.feeConfigs[cfg.Credential.String()] = &cp
	return nil
}

func (s *Store) GetPool(_ context.Context, credential types.CredentialID) (*revenue.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.pools[credential.String()]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, rewards.ErrNotFound
}

func (s *Store) PutPool(_ context.Context, p *revenue.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.pools[p.Credential.String()] = &cp
	return nil
}

func (s *Store) GetHolderReward(_ context.Context, credential types.CredentialID, holder types.Address) (*revenue.HolderReward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.holderRewards[holderKey(credential, holder)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, rewards.ErrNotFound
}

func (s *Store) PutHolderReward(_ context.Context, r *revenue.HolderReward) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.holderRewards[holderKey(r.Credential, r.Holder)] = &cp
	return nil
}

func (s *Store) RecordFeeEvent(_ context.Context, ev *revenue.FeeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feeEvents = append(s.feeEvents, *ev)
	return nil
}

func (s *Store) RecordDistribution(_ context.Context, d *revenue.Distribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.distributions = append(s.distributions, *d)
	return nil
}

func (s *Store) RecordClaim(_ context.Context, c *revenue.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.claims = append(s.claims, *c)
	return nil
}

func (s *Store) ListFeeEvents(_ context.Context, credential types.CredentialID, opts revenue.ListOpts) ([]*revenue.FeeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Newest first, matching the SQL backends' created_at ordering.
	result := make([]*revenue.FeeEvent, 0)
	for i := len(s.feeEvents) - 1; i >= 0; i-- {
		if s.feeEvents[i].Credential == credential {
			cp := s.feeEvents[i]
			result = append(result, &cp)
		}
	}
	return window(result, opts.Offset, opts.Limit), nil
}

func (s *Store) ListClaims(_ context.Context, credential types.CredentialID, opts revenue.ListOpts) ([]*revenue.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*revenue.Claim, 0)
	for i := len(s.claims) - 1; i >= 0; i-- {
		if s.claims[i].Credential == credential {
			cp := s.claims[i]
			result = append(result, &cp)
		}
	}
	return window(result, opts.Offset, opts.Limit), nil
}

// Emission ledger implementation

func (s *Store) GetParams(_ context.Context) (*emission.Params, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.params == nil {
		return nil, rewards.ErrNotFound
	}
	cp := *s.params
	return &cp, nil
}

func (s *Store) PutParams(_ context.Context, p *emission.Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.params = &cp
	return nil
}

func (s *Store) GetOverride(_ context.Context, credential types.CredentialID) (*emission.Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if o, ok := s.overrides[credential.String()]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, rewards.ErrNotFound
}

func (s *Store) PutOverride(_ context.Context, o *emission.Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *o
	s.overrides[o.Credential.String()] = &cp
	return nil
}

func (s *Store) GetCredentialState(_ context.Context, credential types.CredentialID) (*emission.CredentialState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.credentialStates[credential.String()]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, rewards.ErrNotFound
}

func (s *Store) PutCredentialState(_ context.Context, st *emission.CredentialState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *st
	s.credentialStates[st.Credential.String()] = &cp
	return nil
}

func (s *Store) GetHolderState(_ context.Context, credential types.CredentialID, holder types.Address) (*emission.HolderState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.holderStates[holderKey(credential, holder)]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, rewards.ErrNotFound
}

func (s *Store) PutHolderState(_ context.Context, st *emission.HolderState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *st
	s.holderStates[holderKey(st.Credential, st.Holder)] = &cp
	return nil
}

func (s *Store) GetGlobalStats(_ context.Context) (*emission.GlobalStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.globalStats == nil {
		return nil, rewards.ErrNotFound
	}
	cp := *s.globalStats
	return &cp, nil
}

func (s *Store) PutGlobalStats(_ context.Context, g *emission.GlobalStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *g
	s.globalStats = &cp
	return nil
}

func (s *Store) RecordMint(_ context.Context, m *emission.Mint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mints = append(s.mints, *m)
	return nil
}

func (s *Store) ListMints(_ context.Context, credential types.CredentialID, opts emission.ListOpts) ([]*emission.Mint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*emission.Mint, 0)
	for i := len(s.mints) - 1; i >= 0; i-- {
		if s.mints[i].Credential == credential {
			cp := s.mints[i]
			result = append(result, &cp)
		}
	}
	return window(result, opts.Offset, opts.Limit), nil
}

// Store management

func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

// window applies offset/limit to a result slice.
func window[T any](result []T, offset, limit int) []T {
	start := offset
	if start > len(result) {
		start = len(result)
	}
	end := start + limit
	if limit == 0 || end > len(result) {
		end = len(result)
	}
	return result[start:end]
}
