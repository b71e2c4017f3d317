package types

import (
	"encoding/hex"
	"fmt"
)

// CredentialIDSize is the fixed byte length of a credential identifier.
const CredentialIDSize = 32

// CredentialID is the opaque fixed-size identifier of a credential.
// It is assigned by the external credential registry; this engine never
// creates or interprets one, only keys state by it.
type CredentialID [CredentialIDSize]byte

// ZeroCredentialID is the zero-value credential identifier.
var ZeroCredentialID CredentialID

// ParseCredentialID parses a 64-character hex string into a CredentialID.
func ParseCredentialID(s string) (CredentialID, error) {
	var c CredentialID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("types: parse credential id %q: %w", s, err)
	}
	if len(raw) != CredentialIDSize {
		return c, fmt.Errorf("types: parse credential id %q: want %d bytes, got %d", s, CredentialIDSize, len(raw))
	}
	copy(c[:], raw)
	return c, nil
}

// MustParseCredentialID is like ParseCredentialID but panics on error.
// Use for hardcoded identifiers in tests.
func MustParseCredentialID(s string) CredentialID {
	c, err := ParseCredentialID(s)
	if err != nil {
		panic(err)
	}
	return c
}

// CredentialIDFromBytes copies raw into a CredentialID. Returns an error
// when raw is not exactly CredentialIDSize bytes.
func CredentialIDFromBytes(raw []byte) (CredentialID, error) {
	var c CredentialID
	if len(raw) != CredentialIDSize {
		return c, fmt.Errorf("types: credential id from bytes: want %d bytes, got %d", CredentialIDSize, len(raw))
	}
	copy(c[:], raw)
	return c, nil
}

// String returns the lowercase hex representation.
func (c CredentialID) String() string { return hex.EncodeToString(c[:]) }

// IsZero reports whether the identifier is the zero value.
func (c CredentialID) IsZero() bool { return c == ZeroCredentialID }

// Bytes returns a copy of the raw identifier bytes.
func (c CredentialID) Bytes() []byte {
	out := make([]byte, CredentialIDSize)
	copy(out, c[:])
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (c CredentialID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CredentialID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*c = ZeroCredentialID
		return nil
	}
	parsed, err := ParseCredentialID(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Address is an account address on the underlying chain. It is treated as
// an opaque case-sensitive string; validation belongs to the wallet layer.
type Address string

// ZeroAddress is the empty address.
const ZeroAddress Address = ""

// IsZero reports whether the address is empty.
func (a Address) IsZero() bool { return a == ZeroAddress }

// String returns the address as a plain string.
func (a Address) String() string { return string(a) }
