package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pizzashop/pizzasetup/cli/core"
	"github.com/pizzashop/pizzasetup/pkg/probe"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Configure MONGODB_URI and ping the database",
	Long: `Resolves MONGODB_URI (prompting if it is not set yet, default
mongodb://localhost:27017/pizza_shop), connects to MongoDB and runs a
ping against the primary.`,
	Args: cobra.NoArgs,
	RunE: runDB,
}

func init() {
	rootCmd.AddCommand(dbCmd)
}

func runDB(cmd *cobra.Command, args []string) error {
	store := openStore(cmd)

	header("MongoDB Setup")
	var cfg core.MongoConfig
	if err := loadServiceConfig(store, probe.MustGet("mongodb"), &cfg); err != nil {
		return err
	}
	success("MongoDB URI has been configured")

	step("🔌", "Connecting to MongoDB...")
	ctx, cancel := withProbeTimeout(cmd.Context())
	defer cancel()
	detail, err := mongoCheck(cfg)(ctx)
	if err != nil {
		fail(describeError(err))
		return err
	}
	success("Successfully connected to MongoDB")
	step("🗄️ ", detail)
	return nil
}

// mongoCheck returns the ping probe for cfg.
func mongoCheck(cfg core.MongoConfig) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		res, err := core.PingMongo(ctx, cfg)
		if err != nil {
			return "", err
		}
		name := res.Database
		if name == "" {
			name = "(none in URI)"
		}
		return fmt.Sprintf("Connected to database: %s (%s)", name, res.RTT.Round(time.Millisecond)), nil
	}
}

func withProbeTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if d := probeTimeout(); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}
