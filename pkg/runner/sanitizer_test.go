package runner

import (
	"strings"
	"testing"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeInput(strings.Repeat("a", tt.inputSize))
			if tt.wantErr && err == nil {
				t.Errorf("SanitizeInput() expected error for size %d, got nil", tt.inputSize)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("SanitizeInput() unexpected error: %v", err)
			}
		})
	}
}

func TestSanitizeInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "8")

	if _, err := SanitizeInput("stake 10"); err != nil {
		t.Errorf("unexpected error at limit: %v", err)
	}
	if _, err := SanitizeInput("stake 100"); err == nil {
		t.Error("expected error above overridden limit")
	}
}

func TestSanitizeInput_Cleaning(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "stake 10 tao", "stake 10 tao"},
		{"Line Breaks Fold", "stake 10\r\ntao\tnow", "stake 10 tao now"},
		{"Surrounding Space", "   yes  ", "yes"},
		{"ANSI Code", "\x1b[31myes\x1b[0m", "[31myes[0m"},
		{"Null Byte", "ye\x00s", "yes"},
		{"Bell", "no\x07", "no"},
		{"Unicode Kept", "stake 5 τ", "stake 5 τ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	if _, err := SanitizeInput("stake \xff"); err != ErrInvalidUTF8 {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}
