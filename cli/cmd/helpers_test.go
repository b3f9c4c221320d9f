package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pizzashop/pizzasetup/cli/core"
	"github.com/pizzashop/pizzasetup/pkg/probe"
)

// ────────────────────────────────────────────────────────────────────────────
// maskValue
// ────────────────────────────────────────────────────────────────────────────

func TestMaskValue(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  string
	}{
		{probe.KeySMTPPass, "abcdefghijklmnop", "••••••••mnop"},
		{probe.KeyRazorpayKeySecret, "xyz", "•••"},
		{probe.KeyJWTSecret, "", ""},
		{probe.KeyJWTSecretLegacy, "legacy-secret", "••••••••cret"},
		{probe.KeySMTPHost, "smtp.gmail.com", "smtp.gmail.com"},
		{probe.KeyRazorpayKeyID, "rzp_test_123", "rzp_test_123"},
		{"UNKNOWN_KEY", "visible", "visible"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := maskValue(tt.key, tt.value); got != tt.want {
				t.Errorf("maskValue(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
			}
		})
	}
}

// ────────────────────────────────────────────────────────────────────────────
// describeError
// ────────────────────────────────────────────────────────────────────────────

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		prefix string
	}{
		{"connectivity", &core.ConnectivityError{Service: "SMTP", Op: "login", Err: errors.New("535 bad credentials")}, "Connection failed: "},
		{"validation", &core.ValidationError{Key: "SMTP_PORT", Message: "a value is required"}, "Invalid configuration: "},
		{"other", errors.New("disk full"), "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeError(tt.err); !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("describeError() = %q, want prefix %q", got, tt.prefix)
			}
		})
	}
}

// ────────────────────────────────────────────────────────────────────────────
// checkServiceConfig
// ────────────────────────────────────────────────────────────────────────────

func TestCheckServiceConfig(t *testing.T) {
	tests := []struct {
		name    string
		service string
		content string
		wantKey string
	}{
		{"frontend_ok", "frontend", "FRONTEND_URL=http://localhost:3000\n", ""},
		{"frontend_not_http", "frontend", "FRONTEND_URL=ftp://files.example.com\n", probe.KeyFrontendURL},
		{"frontend_missing", "frontend", "", probe.KeyFrontendURL},
		{"smtp_port_not_number", "smtp", "SMTP_HOST=localhost\nSMTP_PORT=abc\nSMTP_USER=a@b.c\nSMTP_PASS=x\n", probe.KeySMTPPort},
		{"jwt_has_no_config", "jwt", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".env")
			if tt.content != "" {
				if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
					t.Fatal(err)
				}
			}
			err := checkServiceConfig(core.OpenEnvStore(path), probe.MustGet(tt.service))
			if tt.wantKey == "" {
				if err != nil {
					t.Fatalf("checkServiceConfig() = %v, want nil", err)
				}
				return
			}
			var ve *core.ValidationError
			if !errors.As(err, &ve) || ve.Key != tt.wantKey {
				t.Fatalf("checkServiceConfig() = %v, want ValidationError for %s", err, tt.wantKey)
			}
		})
	}
}
