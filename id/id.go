// Package id defines TypeID-based identity types for the rewards engine's
// own durable records.
//
// Credential identifiers come from the external registry and are NOT
// TypeIDs (see types.CredentialID). The engine mints TypeIDs only for the
// records it creates itself: fee events, distribution snapshots, and claim
// receipts. IDs are K-sortable (UUIDv7-based), globally unique, and
// URL-safe in the format "prefix_suffix".
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the record type encoded in a TypeID.
type Prefix string

// Prefix constants for all engine record types.
const (
	PrefixFeeEvent     Prefix = "fevt" // Fee collection event
	PrefixDistribution Prefix = "dist" // Revenue distribution snapshot
	PrefixRewardClaim  Prefix = "clm"  // Revenue reward claim receipt
	PrefixMint         Prefix = "mint" // Emission mint receipt
)

// ID is the primary identifier type for engine records.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "fevt_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// MustParseWithPrefix is like ParseWithPrefix but panics on error.
func MustParseWithPrefix(s string, expected Prefix) ID {
	parsed, err := ParseWithPrefix(s, expected)
	if err != nil {
		panic(fmt.Sprintf("id: must parse with prefix %q: %v", expected, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Type aliases
// ──────────────────────────────────────────────────

// FeeEventID is a type-safe identifier for fee events (prefix: "fevt").
type FeeEventID = ID

// DistributionID is a type-safe identifier for distribution snapshots (prefix: "dist").
type DistributionID = ID

// RewardClaimID is a type-safe identifier for revenue claim receipts (prefix: "clm").
type RewardClaimID = ID

// MintID is a type-safe identifier for emission mint receipts (prefix: "mint").
type MintID = ID

// AnyID is a type alias that accepts any valid prefix.
type AnyID = ID

// ──────────────────────────────────────────────────
// Convenience constructors
// ──────────────────────────────────────────────────

// NewFeeEventID generates a new unique fee event ID.
func NewFeeEventID() ID { return New(PrefixFeeEvent) }

// NewDistributionID generates a new unique distribution ID.
func NewDistributionID() ID { return New(PrefixDistribution) }

// NewRewardClaimID generates a new unique reward claim receipt ID.
func NewRewardClaimID() ID { return New(PrefixRewardClaim) }

// NewMintID generates a new unique mint receipt ID.
func NewMintID() ID { return New(PrefixMint) }

// ──────────────────────────────────────────────────
// Convenience parsers
// ──────────────────────────────────────────────────

// ParseFeeEventID parses a string and validates the "fevt" prefix.
func ParseFeeEventID(s string) (ID, error) { return ParseWithPrefix(s, PrefixFeeEvent) }

// ParseDistributionID parses a string and validates the "dist" prefix.
func ParseDistributionID(s string) (ID, error) { return ParseWithPrefix(s, PrefixDistribution) }

// ParseRewardClaimID parses a string and validates the "clm" prefix.
func ParseRewardClaimID(s string) (ID, error) { return ParseWithPrefix(s, PrefixRewardClaim) }

// ParseMintID parses a string and validates the "mint" prefix.
func ParseMintID(s string) (ID, error) { return ParseWithPrefix(s, PrefixMint) }

// ParseAny parses a string into an ID without type checking the prefix.
func ParseAny(s string) (ID, error) { return Parse(s) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the Nil ID so that optional foreign key columns store NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}
