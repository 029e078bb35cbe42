package errors

import (
	"strings"
	"testing"
)

func TestValidateFeatureID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "nfs", false},
		{"with dash", "btrfs-raids", false},
		{"with digit", "k8-cluster", false},
		{"numeric", "404", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"uppercase", "NFS", true},
		{"space", "auto mounts", true},
		{"leading dash", "-nfs", true},
		{"double dash", "nginx--proxy", true},
		{"underscore", "auto_mounts", true},
		{"slash", "nginx/proxy", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFeatureID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFeatureID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFeatureID) {
				t.Errorf("ValidateFeatureID(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateHref(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"site path", "/architecture", false},
		{"anchor", "/features#logs", false},
		{"https", "https://example.com/docs", false},
		{"http", "http://example.com", false},

		{"empty", "", true},
		{"protocol relative", "//evil.example", true},
		{"javascript", "javascript:alert(1)", true},
		{"relative", "architecture", true},
		{"whitespace", "/a b", true},
		{"newline", "/a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHref(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHref(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateColor(t *testing.T) {
	for _, ok := range []string{"#803030", "#fff", "#4A90E2"} {
		if err := ValidateColor(ok); err != nil {
			t.Errorf("ValidateColor(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "803030", "#12345", "#GGGGGG", "red"} {
		if err := ValidateColor(bad); err == nil {
			t.Errorf("ValidateColor(%q) should fail", bad)
		}
	}
}

func TestValidateQueryText(t *testing.T) {
	if err := ValidateQueryText(""); err != nil {
		t.Errorf("empty text should be valid: %v", err)
	}
	if err := ValidateQueryText("network storage"); err != nil {
		t.Errorf("ValidateQueryText = %v", err)
	}
	if err := ValidateQueryText(strings.Repeat("x", 257)); err == nil {
		t.Error("long text should fail")
	}
	if err := ValidateQueryText("nfs\x00"); err == nil {
		t.Error("control characters should fail")
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"hyperhive", false},
		{"lab-2026.v1", false},
		{"", true},
		{"../etc", true},
		{"a/b", true},
		{"a\\b", true},
		{"a\x01", true},
		{strings.Repeat("n", 129), true},
	}
	for _, tt := range tests {
		err := ValidateName(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
