package cmd

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/pizzashop/pizzasetup/cli/core"
	"github.com/pizzashop/pizzasetup/pkg/probe"
)

// runCLI executes the root command against envFile with stdin as input and
// returns everything written to stdout.
func runCLI(t *testing.T, envFile, stdin string, args ...string) (string, error) {
	t.Helper()

	// Flag variables outlive a single Execute.
	setupReconfigure = false
	envShowSecrets = false
	envExportFile = ""
	envOverwrite = false
	orderCurrency = core.DefaultCurrency
	orderReceipt = ""
	checkWatch = false
	checkNoEmail = false
	smtpTo = ""
	smtpLoginOnly = false
	_ = rootCmd.PersistentFlags().Set("timeout", defaultTimeout.String())

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--env-file", envFile}, args...))
	err := rootCmd.Execute()
	return stdout.String(), err
}

func tempEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func readEnv(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// stubOrders replaces the Razorpay client for the duration of a test.
type stubOrders struct {
	resp map[string]interface{}
	err  error
}

func (s stubOrders) Create(map[string]interface{}, map[string]string) (map[string]interface{}, error) {
	return s.resp, s.err
}

func useStubOrders(t *testing.T, s stubOrders) {
	t.Helper()
	prev := newOrders
	newOrders = func(core.RazorpayConfig, time.Duration) core.OrderCreator { return s }
	t.Cleanup(func() { newOrders = prev })
}

// ────────────────────────────────────────────────────────────────────────────
// env
// ────────────────────────────────────────────────────────────────────────────

func TestEnvSetGet(t *testing.T) {
	path := tempEnv(t, "")
	if _, err := runCLI(t, path, "", "env", "set", "SMTP_PORT=465", "SMTP_HOST=smtp.zoho.in"); err != nil {
		t.Fatalf("env set error = %v", err)
	}
	if want := "SMTP_PORT=465\nSMTP_HOST=smtp.zoho.in\n"; readEnv(t, path) != want {
		t.Errorf("artifact = %q, want %q", readEnv(t, path), want)
	}

	out, err := runCLI(t, path, "", "env", "get", "SMTP_PORT")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "465" {
		t.Errorf("env get = %q, want 465", out)
	}

	if _, err := runCLI(t, path, "", "env", "get", "MISSING"); err == nil {
		t.Error("env get of a missing key should fail")
	}
}

func TestEnvSet_BadPairWritesNothing(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bare_key", []string{"A=1", "B"}},
		{"space_in_key", []string{"A=1", "B C=2"}},
		{"equals_only", []string{"A=1", "=2"}},
		{"comment_key", []string{"A=1", "#B=2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tempEnv(t, "")
			args := append([]string{"env", "set"}, tt.args...)
			if _, err := runCLI(t, path, "", args...); err == nil {
				t.Fatalf("env set %v should fail", tt.args)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Errorf("env set %v wrote %q; no pair should be written when one is invalid", tt.args, readEnv(t, path))
			}
		})
	}
}

func TestEnvList_MasksSecrets(t *testing.T) {
	path := tempEnv(t, "SMTP_USER=shop@example.com\nSMTP_PASS=supersecretpass\n")

	out, err := runCLI(t, path, "", "env", "list")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "supersecretpass") {
		t.Errorf("env list leaked a secret:\n%s", out)
	}
	if !strings.Contains(out, "••••••••pass") || !strings.Contains(out, "shop@example.com") {
		t.Errorf("env list output:\n%s", out)
	}

	out, err = runCLI(t, path, "", "env", "list", "--show-secrets")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "supersecretpass") {
		t.Errorf("--show-secrets output:\n%s", out)
	}
}

func TestEnvImportExport(t *testing.T) {
	path := tempEnv(t, "SMTP_PORT=587\n")
	src := filepath.Join(t.TempDir(), "staging.env")
	content := "# staging\nSMTP_HOST=\"smtp.zoho.in\"\nexport SMTP_PORT=465\nFRONTEND_URL=https://pizza.example.com\n"
	if err := os.WriteFile(src, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, path, "", "env", "import", src); err != nil {
		t.Fatalf("env import error = %v", err)
	}
	got, err := godotenv.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if got["SMTP_PORT"] != "587" {
		t.Errorf("import without --overwrite replaced SMTP_PORT: %q", got["SMTP_PORT"])
	}
	if got["SMTP_HOST"] != "smtp.zoho.in" || got["FRONTEND_URL"] != "https://pizza.example.com" {
		t.Errorf("imported values = %v", got)
	}

	if _, err := runCLI(t, path, "", "env", "import", "--overwrite", src); err != nil {
		t.Fatal(err)
	}
	if got, _ := godotenv.Read(path); got["SMTP_PORT"] != "465" {
		t.Errorf("--overwrite kept SMTP_PORT = %q", got["SMTP_PORT"])
	}

	dst := filepath.Join(t.TempDir(), "export.env")
	if _, err := runCLI(t, path, "", "env", "export", "-o", dst); err != nil {
		t.Fatal(err)
	}
	exported, err := godotenv.Read(dst)
	if err != nil {
		t.Fatal(err)
	}
	if exported["SMTP_HOST"] != "smtp.zoho.in" || exported["SMTP_PORT"] != "465" {
		t.Errorf("exported = %v", exported)
	}
}

// ────────────────────────────────────────────────────────────────────────────
// jwt
// ────────────────────────────────────────────────────────────────────────────

func TestJWT_GeneratesOnce(t *testing.T) {
	path := tempEnv(t, "")
	if _, err := runCLI(t, path, "", "jwt"); err != nil {
		t.Fatal(err)
	}
	first, _ := godotenv.Read(path)
	secret := first[probe.KeyJWTSecret]
	if raw, err := decodeBase64(secret); err != nil || len(raw) != 32 {
		t.Fatalf("JWT_SECRET = %q is not 32 base64 bytes (err %v)", secret, err)
	}

	out, err := runCLI(t, path, "", "jwt")
	if err != nil {
		t.Fatal(err)
	}
	second, _ := godotenv.Read(path)
	if second[probe.KeyJWTSecret] != secret {
		t.Error("jwt overwrote an existing secret")
	}
	if !strings.Contains(out, "already exists") {
		t.Errorf("second run output:\n%s", out)
	}
}

func TestJWT_CopiesLegacyKey(t *testing.T) {
	path := tempEnv(t, probe.KeyJWTSecretLegacy+"=legacy-value\n")
	if _, err := runCLI(t, path, "", "jwt"); err != nil {
		t.Fatal(err)
	}
	want := probe.KeyJWTSecretLegacy + "=legacy-value\n" + probe.KeyJWTSecret + "=legacy-value\n"
	if got := readEnv(t, path); got != want {
		t.Errorf("artifact = %q, want %q", got, want)
	}
}

// ────────────────────────────────────────────────────────────────────────────
// setup
// ────────────────────────────────────────────────────────────────────────────

func TestSetup_FillsEverything(t *testing.T) {
	path := tempEnv(t, "")
	// mongodb, jwt, smtp host/port/user/pass, razorpay id/secret, frontend
	stdin := "\n\n\n\nshop@example.com\napp-pass\nrzp_test_1\nrzp-secret\n\n"

	out, err := runCLI(t, path, stdin, "setup")
	if err != nil {
		t.Fatalf("setup error = %v\n%s", err, out)
	}
	got, err := godotenv.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		probe.KeyMongoURI:          probe.DefaultMongoURI,
		probe.KeySMTPHost:          probe.DefaultSMTPHost,
		probe.KeySMTPPort:          probe.DefaultSMTPPort,
		probe.KeySMTPUser:          "shop@example.com",
		probe.KeySMTPPass:          "app-pass",
		probe.KeyRazorpayKeyID:     "rzp_test_1",
		probe.KeyRazorpayKeySecret: "rzp-secret",
		probe.KeyFrontendURL:       probe.DefaultFrontendURL,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
	if got[probe.KeyJWTSecret] == "" {
		t.Error("JWT_SECRET was not generated")
	}
	if !strings.Contains(out, "Environment setup completed!") {
		t.Errorf("setup output:\n%s", out)
	}
}

func TestSetup_KeepsExistingValues(t *testing.T) {
	content := strings.Join([]string{
		"MONGODB_URI=mongodb://db:27017/pizza",
		"JWT_SECRET=keep-me",
		"SMTP_HOST=smtp.zoho.in",
		"SMTP_PORT=465",
		"SMTP_USER=shop@example.com",
		"SMTP_PASS=app-pass",
		"RAZORPAY_KEY_ID=rzp_test_1",
		"RAZORPAY_KEY_SECRET=rzp-secret",
		"FRONTEND_URL=http://localhost:5173",
	}, "\n") + "\n"
	path := tempEnv(t, content)

	if _, err := runCLI(t, path, "", "setup"); err != nil {
		t.Fatalf("setup with a complete file should not prompt: %v", err)
	}
	if got := readEnv(t, path); got != content {
		t.Errorf("setup rewrote existing values:\n%s", got)
	}
}

func TestSetup_Reconfigure(t *testing.T) {
	path := tempEnv(t, "MONGODB_URI=mongodb://db:27017/pizza\n")
	// Change the URI, accept every other default or generated value.
	stdin := "mongodb://db2:27017/pizza\n\n\n\nshop@example.com\napp-pass\nrzp_test_1\nrzp-secret\n\n"

	if _, err := runCLI(t, path, stdin, "setup", "--reconfigure"); err != nil {
		t.Fatal(err)
	}
	got, _ := godotenv.Read(path)
	if got[probe.KeyMongoURI] != "mongodb://db2:27017/pizza" {
		t.Errorf("MONGODB_URI = %q", got[probe.KeyMongoURI])
	}
}

func TestSetup_InvalidAnswerIsAskedAgain(t *testing.T) {
	path := tempEnv(t, "")
	// SMTP port "abc" and frontend "localhost:3000" are rejected, then
	// replaced by "2525" and the default.
	stdin := "\n\n\nabc\n2525\nshop@example.com\napp-pass\nrzp_test_1\nrzp-secret\nlocalhost:3000\n\n"

	out, err := runCLI(t, path, stdin, "setup")
	if err != nil {
		t.Fatalf("setup error = %v\n%s", err, out)
	}
	got, _ := godotenv.Read(path)
	if got[probe.KeySMTPPort] != "2525" {
		t.Errorf("SMTP_PORT = %q, want 2525", got[probe.KeySMTPPort])
	}
	if got[probe.KeyFrontendURL] != probe.DefaultFrontendURL {
		t.Errorf("FRONTEND_URL = %q, want default", got[probe.KeyFrontendURL])
	}
	if !strings.Contains(out, `invalid SMTP_PORT: "abc" is not a number`) {
		t.Errorf("setup output does not explain the rejection:\n%s", out)
	}
	if strings.Contains(readEnv(t, path), "abc") {
		t.Error("rejected answer was written to the artifact")
	}
}

func TestSetup_EOFFails(t *testing.T) {
	path := tempEnv(t, "")
	if _, err := runCLI(t, path, "\n\n\n\n", "setup"); err == nil {
		t.Fatal("setup should fail when input ends before SMTP_USER")
	}
	got, _ := godotenv.Read(path)
	if got[probe.KeySMTPHost] != probe.DefaultSMTPHost {
		t.Errorf("values entered before EOF should be kept, got %v", got)
	}
}

// ────────────────────────────────────────────────────────────────────────────
// razorpay
// ────────────────────────────────────────────────────────────────────────────

const razorpayEnv = "RAZORPAY_KEY_ID=rzp_test_1\nRAZORPAY_KEY_SECRET=s3cr3t\n"

func TestRazorpay_TestOrder(t *testing.T) {
	useStubOrders(t, stubOrders{resp: map[string]interface{}{"id": "order_TEST1", "status": "created"}})
	path := tempEnv(t, razorpayEnv)

	out, err := runCLI(t, path, "", "razorpay")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "order_TEST1") {
		t.Errorf("output:\n%s", out)
	}
}

func TestRazorpay_Order(t *testing.T) {
	useStubOrders(t, stubOrders{resp: map[string]interface{}{"id": "order_PAY1", "amount": float64(24950), "status": "created"}})
	path := tempEnv(t, razorpayEnv)

	out, err := runCLI(t, path, "", "razorpay", "order", "249.50", "--receipt", "r-42")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "order_PAY1") || !strings.Contains(out, "24950 INR") {
		t.Errorf("output:\n%s", out)
	}

	if _, err := runCLI(t, path, "", "razorpay", "order", "0"); err == nil {
		t.Error("zero amount should fail")
	}
}

func TestRazorpay_Verify(t *testing.T) {
	path := tempEnv(t, razorpayEnv)
	mac := hmac.New(sha256.New, []byte("s3cr3t"))
	mac.Write([]byte("order_1|pay_1"))
	sig := hex.EncodeToString(mac.Sum(nil))

	if _, err := runCLI(t, path, "", "razorpay", "verify", "order_1", "pay_1", sig); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}
	if _, err := runCLI(t, path, "", "razorpay", "verify", "order_1", "pay_2", sig); err == nil {
		t.Error("signature for another payment accepted")
	}
}

// ────────────────────────────────────────────────────────────────────────────
// check
// ────────────────────────────────────────────────────────────────────────────

func TestCheck_ContinuesPastFailures(t *testing.T) {
	useStubOrders(t, stubOrders{resp: map[string]interface{}{"id": "order_OK"}})
	// Nothing listens on port 1, so both network checks fail fast.
	content := strings.Join([]string{
		"MONGODB_URI=mongodb://127.0.0.1:1/pizza_shop",
		"SMTP_HOST=127.0.0.1",
		"SMTP_PORT=1",
		"SMTP_USER=shop@example.com",
		"SMTP_PASS=app-pass",
		razorpayEnv,
	}, "\n")
	path := tempEnv(t, content)

	out, err := runCLI(t, path, "", "check", "--no-email", "--timeout", "2s")
	if err == nil {
		t.Fatal("check should fail when a probe fails")
	}
	if !core.IsConnectivity(err) {
		t.Errorf("check error = %v, want a ConnectivityError", err)
	}
	if !strings.Contains(out, "order_OK") || !strings.Contains(out, "1 passed, 2 failed") {
		t.Errorf("check output:\n%s", out)
	}
}

func TestCheck_InvalidStoredValuesAreAskedAgain(t *testing.T) {
	useStubOrders(t, stubOrders{resp: map[string]interface{}{"id": "order_OK"}})
	content := strings.Join([]string{
		"MONGODB_URI=localhost",
		"SMTP_HOST=127.0.0.1",
		"SMTP_PORT=not-a-port",
		"SMTP_USER=shop@example.com",
		"SMTP_PASS=app-pass",
		razorpayEnv,
	}, "\n")
	path := tempEnv(t, content)

	stdin := "mongodb://127.0.0.1:1/pizza_shop\n1\n"
	if _, err := runCLI(t, path, stdin, "check", "--no-email", "--timeout", "2s"); !core.IsConnectivity(err) {
		t.Fatalf("check error = %v, want the probes to run and fail to connect", err)
	}
	got, _ := godotenv.Read(path)
	if got[probe.KeyMongoURI] != "mongodb://127.0.0.1:1/pizza_shop" || got[probe.KeySMTPPort] != "1" {
		t.Errorf("invalid stored values were not replaced: %v", got)
	}
}

func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
