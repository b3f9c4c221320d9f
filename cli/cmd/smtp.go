package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pizzashop/pizzasetup/cli/core"
	"github.com/pizzashop/pizzasetup/pkg/probe"
)

var smtpCmd = &cobra.Command{
	Use:   "smtp",
	Short: "Configure SMTP credentials and send a test email",
	Long: `Resolves SMTP_HOST, SMTP_PORT, SMTP_USER and SMTP_PASS (prompting for
any that are missing), logs in to the relay over TLS and sends a test
email. The message goes to SMTP_USER unless --to is given.

Port 465 uses implicit TLS; any other port requires STARTTLS.`,
	Args: cobra.NoArgs,
	RunE: runSMTP,
}

var (
	smtpTo        string
	smtpLoginOnly bool
)

func init() {
	smtpCmd.Flags().StringVar(&smtpTo, "to", "", "Recipient of the test email (default: SMTP_USER)")
	smtpCmd.Flags().BoolVar(&smtpLoginOnly, "login-only", false, "Log in without sending a test email")
	rootCmd.AddCommand(smtpCmd)
}

func runSMTP(cmd *cobra.Command, args []string) error {
	store := openStore(cmd)

	header("SMTP Setup")
	var cfg core.SMTPConfig
	if err := loadServiceConfig(store, probe.MustGet("smtp"), &cfg); err != nil {
		return err
	}
	success("SMTP configuration has been saved")

	checks := []core.Check{{Name: "SMTP login", Run: smtpLoginCheck(cfg)}}
	if !smtpLoginOnly {
		checks = append(checks, core.Check{Name: "SMTP test email", Run: smtpSendCheck(cfg, smtpTo)})
	}
	return core.RunChecks(cmd.Context(), checks, probeTimeout(), reportCheck)
}

func smtpLoginCheck(cfg core.SMTPConfig) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if err := core.DialSMTP(ctx, cfg); err != nil {
			return "", err
		}
		return fmt.Sprintf("Successfully connected to %s:%d", cfg.Host, cfg.Port), nil
	}
}

func smtpSendCheck(cfg core.SMTPConfig, to string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if err := core.SendTestEmail(ctx, cfg, to); err != nil {
			return "", err
		}
		if to == "" {
			to = cfg.User
		}
		return "Test email sent to " + to, nil
	}
}
