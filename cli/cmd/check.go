package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/pizzashop/pizzasetup/cli/core"
	"github.com/pizzashop/pizzasetup/pkg/probe"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run every connectivity probe",
	Long: `Resolves the configuration for MongoDB, SMTP and Razorpay (prompting
for anything missing), then runs each probe in turn: database ping, SMTP
login, SMTP test email and Razorpay test order.

A failing probe does not stop the others. The command exits non-zero if
any probe failed.

With --watch, the probes run again whenever the .env file changes.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

var (
	checkWatch    bool
	checkDebounce time.Duration
	checkNoEmail  bool
)

func init() {
	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "Re-run the probes when the env file changes")
	checkCmd.Flags().DurationVar(&checkDebounce, "debounce", 500*time.Millisecond, "Delay before re-running after a change")
	checkCmd.Flags().BoolVar(&checkNoEmail, "no-email", false, "Skip sending the SMTP test email")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if !checkWatch {
		return checkOnce(cmd)
	}
	return watchChecks(cmd)
}

func checkOnce(cmd *cobra.Command) error {
	header("Connectivity check")
	checks, err := buildChecks(openStore(cmd))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var passed, failed int
	err = core.RunChecks(ctx, checks, probeTimeout(), func(res core.CheckResult) {
		if res.OK() {
			passed++
		} else {
			failed++
		}
		reportCheck(res)
	})

	fmt.Fprintln(out)
	if failed > 0 {
		fail(fmt.Sprintf("%d passed, %d failed", passed, failed))
	} else {
		success(fmt.Sprintf("All %d checks passed", passed))
	}
	return err
}

// buildChecks resolves every probed service before any probe runs, so
// time spent at a prompt never counts against a probe's timeout. A
// service whose stored configuration is invalid becomes a failing check.
func buildChecks(store *core.EnvStore) ([]core.Check, error) {
	var checks []core.Check

	var mongoCfg core.MongoConfig
	switch err := loadServiceConfig(store, probe.MustGet("mongodb"), &mongoCfg); {
	case err == nil:
		checks = append(checks, core.Check{Name: "MongoDB ping", Run: mongoCheck(mongoCfg)})
	case core.IsValidation(err):
		checks = append(checks, failedCheck("MongoDB ping", err))
	default:
		return nil, err
	}

	var smtpCfg core.SMTPConfig
	switch err := loadServiceConfig(store, probe.MustGet("smtp"), &smtpCfg); {
	case err == nil:
		checks = append(checks, core.Check{Name: "SMTP login", Run: smtpLoginCheck(smtpCfg)})
		if !checkNoEmail {
			checks = append(checks, core.Check{Name: "SMTP test email", Run: smtpSendCheck(smtpCfg, "")})
		}
	case core.IsValidation(err):
		checks = append(checks, failedCheck("SMTP login", err))
	default:
		return nil, err
	}

	var rzpCfg core.RazorpayConfig
	switch err := loadServiceConfig(store, probe.MustGet("razorpay"), &rzpCfg); {
	case err == nil:
		checks = append(checks, core.Check{Name: "Razorpay test order", Run: razorpayCheck(rzpCfg)})
	case core.IsValidation(err):
		checks = append(checks, failedCheck("Razorpay test order", err))
	default:
		return nil, err
	}

	return checks, nil
}

func failedCheck(name string, err error) core.Check {
	return core.Check{Name: name, Run: func(context.Context) (string, error) { return "", err }}
}

// watchChecks runs the probes, then again after every settled write to
// the env file, until interrupted.
func watchChecks(cmd *cobra.Command) error {
	path, err := filepath.Abs(envFilePath())
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files by rename, which drops a
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("cannot watch %s: %w", filepath.Dir(path), err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	step("👀", fmt.Sprintf("Watching %s", path))
	fmt.Fprintf(out, "\n  %s\n", dimText("Press Ctrl+C to stop"))

	rerun := func() {
		if err := checkOnce(cmd); err != nil {
			logger.Debug("check run failed", "err", err)
		}
	}
	rerun()

	var debounce <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("env file changed", "op", event.Op.String())
			debounce = time.After(checkDebounce)

		case <-debounce:
			debounce = nil
			fmt.Fprintf(out, "\n  %s\n", dimText("["+time.Now().Format("15:04:05")+"] "+filepath.Base(path)+" changed"))
			rerun()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			warn(fmt.Sprintf("Watch error: %v", err))

		case <-sigCh:
			fmt.Fprintf(out, "\n  %s\n\n", headerStyle.Render("👋 Watch stopped"))
			return nil
		}
	}
}
