package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		code    Code
	}{
		{"simple", "a", false, ""},
		{"url like", "https://example.com/page", false, ""},
		{"with spaces", "login form", false, ""},

		{"empty", "", true, ErrCodeMissingID},
		{"too long", strings.Repeat("x", 600), true, ErrCodeInvalidInput},
		{"newline", "foo\nbar", true, ErrCodeInvalidInput},
		{"null byte", "foo\x00bar", true, ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !Is(err, tt.code) {
				t.Errorf("ValidateNodeID(%q) code = %v, want %v", tt.input, GetCode(err), tt.code)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "graph.json", false},
		{"absolute", "/tmp/graph.json", false},
		{"nested", "testdata/site/graph.json", false},

		{"empty", "", true},
		{"null byte", "graph\x00.json", true},
		{"control char", "graph\x01.json", true},
		{"too long", strings.Repeat("a", 5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"http", "http://localhost:9778/graph", false},
		{"https", "https://example.com/graph", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com/graph", true},
		{"no scheme", "localhost:9778/graph", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
