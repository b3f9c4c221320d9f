package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pizzashop/pizzasetup/cli/core"
	"github.com/pizzashop/pizzasetup/pkg/probe"
)

// ── Styles ──────────────────────────────────────────────────────

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// out is where operator-facing output goes. Commands point it at
// cmd.OutOrStdout() before running.
var out io.Writer = os.Stdout

func setOutput(w io.Writer) { out = w }

// ── Pretty-print helpers ────────────────────────────────────────

func header(msg string) {
	fmt.Fprintf(out, "\n%s\n", headerStyle.Render("▸ "+msg))
}

func step(emoji, msg string) {
	fmt.Fprintf(out, "  %s  %s\n", emoji, msg)
}

func success(msg string) {
	fmt.Fprintf(out, "  %s\n", successStyle.Render("✓ "+msg))
}

func warn(msg string) {
	fmt.Fprintf(out, "  %s\n", warnStyle.Render("⚠ "+msg))
}

func fail(msg string) {
	fmt.Fprintf(out, "  %s\n", failStyle.Render("✗ "+msg))
}

func dimText(msg string) string {
	return dimStyle.Render(msg)
}

// ── Store helpers ───────────────────────────────────────────────

// openStore builds the single EnvStore for this invocation, prompting on
// the command's stdin.
func openStore(cmd *cobra.Command) *core.EnvStore {
	return core.OpenEnvStore(envFilePath(),
		core.WithPrompter(core.NewLinePrompter(cmd.InOrStdin(), out)),
		core.WithLogger(logger),
	)
}

// needsInput reports whether resolving svc will prompt for anything.
func needsInput(store *core.EnvStore, svc probe.Service) bool {
	for _, spec := range svc.Keys() {
		v, ok, err := store.Get(spec.Key)
		if err != nil || !ok || strings.TrimSpace(v) == "" {
			return true
		}
		if spec.Validate != nil && spec.Validate(v) != nil {
			return true
		}
	}
	return false
}

// resolveService prints the service's help text if anything is missing,
// then resolves all of its keys.
func resolveService(store *core.EnvStore, svc probe.Service) (map[string]string, error) {
	if needsInput(store, svc) {
		for _, line := range svc.Help() {
			fmt.Fprintf(out, "  %s\n", dimText(line))
		}
	}
	values, err := core.ResolveService(store, svc)
	if err != nil {
		return nil, err
	}
	reportParseWarnings(store)
	return values, nil
}

// loadServiceConfig resolves svc and decodes the store into cfg.
func loadServiceConfig(store *core.EnvStore, svc probe.Service, cfg any) error {
	if _, err := resolveService(store, svc); err != nil {
		return err
	}
	snapshot, err := store.Snapshot()
	if err != nil {
		return err
	}
	return core.LoadConfig(snapshot, cfg)
}

// serviceConfig returns a fresh typed config for a service, or nil for
// services that have none (the JWT secret is opaque).
func serviceConfig(name string) any {
	switch name {
	case "mongodb":
		return &core.MongoConfig{}
	case "smtp":
		return &core.SMTPConfig{}
	case "razorpay":
		return &core.RazorpayConfig{}
	case "frontend":
		return &core.FrontendConfig{}
	}
	return nil
}

func reportParseWarnings(store *core.EnvStore) {
	if n := len(store.Warnings()); n > 0 {
		warn(fmt.Sprintf("Skipped %d malformed line(s) in %s", n, store.Path()))
	}
}

// maskValue hides all but the last four characters of secret values.
func maskValue(key, value string) string {
	spec, ok := probe.LookupKey(key)
	if !ok || !spec.Secret || value == "" {
		return value
	}
	if len(value) <= 4 {
		return strings.Repeat("•", len(value))
	}
	return strings.Repeat("•", 8) + value[len(value)-4:]
}

// describeError turns store and check errors into operator-facing text.
func describeError(err error) string {
	switch {
	case core.IsConnectivity(err):
		return "Connection failed: " + err.Error()
	case core.IsValidation(err):
		return "Invalid configuration: " + err.Error()
	}
	return err.Error()
}

// reportCheck prints one check outcome.
func reportCheck(res core.CheckResult) {
	if res.OK() {
		success(fmt.Sprintf("%s %s", res.Name, dimText("("+res.Duration.Round(time.Millisecond).String()+")")))
		if res.Detail != "" {
			step("  ", res.Detail)
		}
		return
	}
	fail(fmt.Sprintf("%s: %s", res.Name, describeError(res.Err)))
}
