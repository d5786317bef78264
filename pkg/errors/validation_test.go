package errors

import (
	"strings"
	"testing"
)

func TestValidateDocumentID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid v4", "5f1c8a2e-3b7d-4c1a-9e2f-0a1b2c3d4e5f", false},
		{"valid uppercase", "5F1C8A2E-3B7D-4C1A-9E2F-0A1B2C3D4E5F", false},

		{"empty", "", true},
		{"garbage", "not-a-uuid", true},
		{"braced", "{5f1c8a2e-3b7d-4c1a-9e2f-0a1b2c3d4e5f}", true},
		{"urn", "urn:uuid:5f1c8a2e-3b7d-4c1a-9e2f-0a1b2c3d4e5f", true},
		{"path traversal", "../etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("ValidateDocumentID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidID)
			}
		})
	}
}

func TestValidateDocumentName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"simple", "login flow", false},
		{"unicode", "Anmeldung – Ablauf", false},

		{"too long", strings.Repeat("a", 201), true},
		{"newline", "login\nflow", true},
		{"null byte", "login\x00flow", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSource(t *testing.T) {
	if err := ValidateSource("sequenceDiagram\nA->>B: hi"); err != nil {
		t.Errorf("ValidateSource(valid) error = %v", err)
	}
	if err := ValidateSource(""); err != nil {
		t.Errorf("ValidateSource(empty) error = %v, empty input is the parser's concern", err)
	}
	if err := ValidateSource("a\x00b"); err == nil {
		t.Error("ValidateSource should reject null bytes")
	}
	if err := ValidateSource(strings.Repeat("x", MaxSourceBytes+1)); err == nil {
		t.Error("ValidateSource should reject oversized input")
	}
}
