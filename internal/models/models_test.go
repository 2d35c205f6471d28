package models

import (
	"errors"
	"testing"
)

func TestFingerprintFromHash_RoundTrip(t *testing.T) {
	f := FingerprintFromHash(0x0123456789abcdef)

	if !f.Valid() {
		t.Fatal("fingerprint from hash should be valid")
	}
	if f.String() != "0123456789abcdef" {
		t.Errorf("String() = %q, want 0123456789abcdef", f.String())
	}

	parsed, err := ParseFingerprint(f.String())
	if err != nil {
		t.Fatalf("ParseFingerprint failed: %v", err)
	}
	if parsed.Distance(f) != 0 {
		t.Errorf("round-tripped fingerprint differs: distance %d", parsed.Distance(f))
	}
}

func TestParseFingerprint_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"too short", "0123"},
		{"too long", "0123456789abcdef00"},
		{"not hex", "zzzzzzzzzzzzzzzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFingerprint(tt.in)
			if !errors.Is(err, ErrInvalidFingerprint) {
				t.Errorf("ParseFingerprint(%q) = %v, want ErrInvalidFingerprint", tt.in, err)
			}
		})
	}
}

func TestFingerprint_Distance(t *testing.T) {
	tests := []struct {
		a, b uint64
		want int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{0b1010, 0b0101, 4},
		{0, 0xFFFFFFFFFFFFFFFF, 64},
		{0xFF00000000000000, 0x00FF000000000000, 16},
	}

	for _, tt := range tests {
		a := FingerprintFromHash(tt.a)
		b := FingerprintFromHash(tt.b)
		if got := a.Distance(b); got != tt.want {
			t.Errorf("Distance(%x, %x) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := b.Distance(a); got != tt.want {
			t.Errorf("Distance(%x, %x) = %d, want %d (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestParseKeepBy(t *testing.T) {
	tests := []struct {
		in   string
		want KeepBy
	}{
		{"best", KeepByBest},
		{"most-pixels", KeepByMostPixels},
		{"most-bytes", KeepByMostBytes},
		{"first", KeepByFirst},
	}

	for _, tt := range tests {
		got, err := ParseKeepBy(tt.in)
		if err != nil {
			t.Errorf("ParseKeepBy(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseKeepBy(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}

	if _, err := ParseKeepBy("biggest"); err == nil {
		t.Error("expected error for unknown keep-by policy")
	}
}

func TestParseNameBy(t *testing.T) {
	tests := []struct {
		in   string
		want NameBy
	}{
		{"keep-by", NameByKeep},
		{"first", NameByFirst},
	}

	for _, tt := range tests {
		got, err := ParseNameBy(tt.in)
		if err != nil {
			t.Errorf("ParseNameBy(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseNameBy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseNameBy("last"); err == nil {
		t.Error("expected error for unknown name-by policy")
	}
}
