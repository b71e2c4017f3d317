// Package chaintest provides in-memory fakes for the chain interfaces.
// They are safe for concurrent use and support failure injection, which
// the engine tests use to exercise the transfer ordering contracts.
package chaintest

import (
	"context"
	"sync"
	"time"

	"github.com/veritoken/rewards/types"
)

// Registry is an in-memory chain.Registry fake.
type Registry struct {
	mu     sync.RWMutex
	tokens map[types.CredentialID]types.Address
	owners map[types.CredentialID]map[types.Address]bool

	// ResolveErr and OwnerErr, when set, are returned by every call.
	ResolveErr error
	OwnerErr   error
}

// NewRegistry returns an empty registry fake.
func NewRegistry() *Registry {
	return &Registry{
		tokens: make(map[types.CredentialID]types.Address),
		owners: make(map[types.CredentialID]map[types.Address]bool),
	}
}

// Register maps a credential to its backing token address.
func (r *Registry) Register(credential types.CredentialID, token types.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[credential] = token
}

// SetOwner marks holder as holding (or not holding) the credential's token.
func (r *Registry) SetOwner(credential types.CredentialID, holder types.Address, owns bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.owners[credential]
	if !ok {
		m = make(map[types.Address]bool)
		r.owners[credential] = m
	}
	m[holder] = owns
}

// ResolveToken implements chain.Registry.
func (r *Registry) ResolveToken(_ context.Context, credential types.CredentialID) (types.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.ResolveErr != nil {
		return types.ZeroAddress, r.ResolveErr
	}
	return r.tokens[credential], nil
}

// IsOwner implements chain.Registry.
func (r *Registry) IsOwner(_ context.Context, credential types.CredentialID, holder types.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.OwnerErr != nil {
		return false, r.OwnerErr
	}
	return r.owners[credential][holder], nil
}

type tokenState struct {
	balances  map[types.Address]int64
	supply    int64
	maxSupply int64
	createdAt time.Time
	baseRate  int64
}

// Token is an in-memory chain.Token fake.
type Token struct {
	mu     sync.RWMutex
	tokens map[types.Address]*tokenState

	// MintErr, when set, is returned by every Mint call.
	MintErr error
	// MintCalls counts Mint invocations, including failed ones.
	MintCalls int
}

// NewToken returns an empty token ledger fake.
func NewToken() *Token {
	return &Token{tokens: make(map[types.Address]*tokenState)}
}

// Create registers a token with the given cap, creation time, and base
// emission rate (tokens per day, zero for none).
func (t *Token) Create(token types.Address, maxSupply int64, createdAt time.Time, baseRate int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokens[token] = &tokenState{
		balances:  make(map[types.Address]int64),
		maxSupply: maxSupply,
		createdAt: createdAt,
		baseRate:  baseRate,
	}
}

// SetBalance sets holder's balance, adjusting total supply accordingly.
func (t *Token) SetBalance(token, holder types.Address, balance int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.tokens[token]
	if !ok {
		return
	}
	st.supply += balance - st.balances[holder]
	st.balances[holder] = balance
}

// BalanceOf implements chain.Token.
func (t *Token) BalanceOf(_ context.Context, token, holder types.Address) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st, ok := t.tokens[token]
	if !ok {
		return 0, nil
	}
	return st.balances[holder], nil
}

// TotalSupply implements chain.Token.
func (t *Token) TotalSupply(_ context.Context, token types.Address) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st, ok := t.tokens[token]
	if !ok {
		return 0, nil
	}
	return st.supply, nil
}

// MaxSupply implements chain.Token.
func (t *Token) MaxSupply(_ context.Context, token types.Address) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st, ok := t.tokens[token]
	if !ok {
		return 0, nil
	}
	return st.maxSupply, nil
}

// CreatedAt implements chain.Token.
func (t *Token) CreatedAt(_ context.Context, token types.Address) (time.Time, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st, ok := t.tokens[token]
	if !ok {
		return time.Time{}, nil
	}
	return st.createdAt, nil
}

// BaseEmissionRate implements chain.Token.
func (t *Token) BaseEmissionRate(_ context.Context, token types.Address) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st, ok := t.tokens[token]
	if !ok {
		return 0, nil
	}
	return st.baseRate, nil
}

// Mint implements chain.Token.
func (t *Token) Mint(_ context.Context, token, to types.Address, amount int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.MintCalls++
	if t.MintErr != nil {
		return t.MintErr
	}
	st, ok := t.tokens[token]
	if !ok {
		return nil
	}
	st.balances[to] += amount
	st.supply += amount
	return nil
}

// Settlement is an in-memory chain.Settlement fake. It records every
// transfer in order so tests can assert on the call sequence.
type Settlement struct {
	mu sync.Mutex

	// TransferFromErr and TransferErr, when set, fail the respective calls.
	TransferFromErr error
	TransferErr     error

	// Pulls records TransferFrom calls; Payouts records Transfer calls.
	Pulls   []Movement
	Payouts []Movement
}

// Movement is one recorded settlement transfer.
type Movement struct {
	Account types.Address
	Amount  types.Money
}

// NewSettlement returns an empty settlement fake.
func NewSettlement() *Settlement {
	return &Settlement{}
}

// TransferFrom implements chain.Settlement.
func (s *Settlement) TransferFrom(_ context.Context, from types.Address, amount types.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TransferFromErr != nil {
		return s.TransferFromErr
	}
	s.Pulls = append(s.Pulls, Movement{Account: from, Amount: amount})
	return nil
}

// Transfer implements chain.Settlement.
func (s *Settlement) Transfer(_ context.Context, to types.Address, amount types.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TransferErr != nil {
		return s.TransferErr
	}
	s.Payouts = append(s.Payouts, Movement{Account: to, Amount: amount})
	return nil
}

// TotalPaid sums all successful payouts to the given account.
func (s *Settlement) TotalPaid(to types.Address) types.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := types.Zero("usdc")
	for _, m := range s.Payouts {
		if m.Account == to {
			if total.IsZero() {
				total = m.Amount
				continue
			}
			total = total.Add(m.Amount)
		}
	}
	return total
}
