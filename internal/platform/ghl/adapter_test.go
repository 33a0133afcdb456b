package ghl

import "testing"

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"+16505550100", "6505550100"},
		{"(650) 555-0100", "6505550100"},
		{"650.555.0100", "6505550100"},
		{"16505550100", "6505550100"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeNumber(tt.raw); got != tt.want {
			t.Fatalf("normalizeNumber(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
