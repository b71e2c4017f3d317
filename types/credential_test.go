package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseCredentialID(t *testing.T) {
	valid := strings.Repeat("ab", CredentialIDSize)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", valid, false},
		{"all zeros", strings.Repeat("00", CredentialIDSize), false},
		{"uppercase hex", strings.Repeat("AB", CredentialIDSize), false},
		{"empty", "", true},
		{"too short", valid[:62], true},
		{"too long", valid + "ab", true},
		{"not hex", strings.Repeat("zz", CredentialIDSize), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCredentialID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCredentialID(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCredentialID(%q): %v", tt.input, err)
			}
			if got := c.String(); got != strings.ToLower(tt.input) {
				t.Errorf("round trip = %q, want %q", got, strings.ToLower(tt.input))
			}
		})
	}
}

func TestMustParseCredentialIDPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for invalid input")
		}
	}()

	_ = MustParseCredentialID("nope")
}

func TestCredentialIDFromBytes(t *testing.T) {
	raw := make([]byte, CredentialIDSize)
	raw[0] = 0xaa

	c, err := CredentialIDFromBytes(raw)
	if err != nil {
		t.Fatal(err)
	}
	if c[0] != 0xaa {
		t.Errorf("c[0] = %x, want aa", c[0])
	}

	// The copy must be independent of the input slice.
	raw[0] = 0xbb
	if c[0] != 0xaa {
		t.Error("CredentialID shares memory with the input slice")
	}

	if _, err := CredentialIDFromBytes(raw[:31]); err == nil {
		t.Error("expected error for short input")
	}
	if _, err := CredentialIDFromBytes(append(raw, 0)); err == nil {
		t.Error("expected error for long input")
	}
}

func TestCredentialIDZero(t *testing.T) {
	if !ZeroCredentialID.IsZero() {
		t.Error("ZeroCredentialID.IsZero() = false")
	}

	c := CredentialID{1}
	if c.IsZero() {
		t.Error("nonzero id reported as zero")
	}
}

func TestCredentialIDBytes(t *testing.T) {
	c := CredentialID{1, 2, 3}
	b := c.Bytes()
	if len(b) != CredentialIDSize {
		t.Fatalf("len = %d, want %d", len(b), CredentialIDSize)
	}

	// Mutating the returned slice must not touch the identifier.
	b[0] = 0xff
	if c[0] != 1 {
		t.Error("Bytes() shares memory with the identifier")
	}
}

func TestCredentialIDText(t *testing.T) {
	c := MustParseCredentialID(strings.Repeat("ab", CredentialIDSize))

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if want := `"` + c.String() + `"`; string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	var parsed CredentialID
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed != c {
		t.Errorf("unmarshal = %v, want %v", parsed, c)
	}

	// An empty text value reads as the zero identifier.
	var empty CredentialID
	if err := empty.UnmarshalText(nil); err != nil {
		t.Fatal(err)
	}
	if !empty.IsZero() {
		t.Error("empty text should unmarshal to the zero identifier")
	}
}

func TestAddress(t *testing.T) {
	if !ZeroAddress.IsZero() {
		t.Error("ZeroAddress.IsZero() = false")
	}

	a := Address("0xABCdef")
	if a.IsZero() {
		t.Error("nonzero address reported as zero")
	}
	if a.String() != "0xABCdef" {
		t.Errorf("String() = %s, case must be preserved", a.String())
	}
}
