package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultEnvFile  = ".env"
	defaultTimeout  = 10 * time.Second
	defaultLogLevel = "warn"
)

var (
	// settings holds the tool's own configuration: flags, overridable by
	// PIZZASETUP_* environment variables.
	settings = viper.New()

	// logger writes diagnostics to stderr; operator output goes through the
	// helpers in helpers.go.
	logger = log.New(io.Discard)
)

var rootCmd = &cobra.Command{
	Use:   "pizzasetup",
	Short: "Credentials setup and smoke tests for the pizza shop backend",
	Long: `pizzasetup collects the credentials the pizza shop backend needs
(MongoDB, SMTP, Razorpay, JWT signing secret, frontend URL), stores them
in a local .env file, and checks that each external service accepts them.

Values already present in the .env file are never asked for again.

Common workflow:

  pizzasetup setup                  # prompt for everything that is missing
  pizzasetup db                     # ping MongoDB
  pizzasetup smtp                   # log in and send a test email
  pizzasetup razorpay               # create a 1 INR test order
  pizzasetup jwt                    # generate JWT_SECRET once
  pizzasetup check                  # run every probe
  pizzasetup env list               # show stored values (secrets masked)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setOutput(cmd.OutOrStdout())
		return initLogger(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("env-file", "e", defaultEnvFile, "Path to the environment file")
	flags.Duration("timeout", defaultTimeout, "Timeout for each connectivity probe")
	flags.String("log-level", defaultLogLevel, "Log level: debug, info, warn, error")

	_ = settings.BindPFlags(flags)
	settings.SetEnvPrefix("PIZZASETUP")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
}

func initLogger(cmd *cobra.Command) error {
	level, err := log.ParseLevel(settings.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix: "pizzasetup",
		Level:  level,
	})
	return nil
}

func envFilePath() string {
	return settings.GetString("env-file")
}

func probeTimeout() time.Duration {
	return settings.GetDuration("timeout")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("pizzasetup: %w", err)
	}
	return nil
}
