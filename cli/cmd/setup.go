package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pizzashop/pizzasetup/cli/core"
	"github.com/pizzashop/pizzasetup/pkg/probe"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup for all environment variables",
	Long: `Prompts for every value the backend needs and writes it to the .env
file: MongoDB, JWT secret, SMTP, Razorpay and the frontend URL.

Values that are already set are kept and not asked for again. Use
--reconfigure to be asked for every value, with the current one offered
as the default (press Enter to keep it).`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

var setupReconfigure bool

func init() {
	setupCmd.Flags().BoolVar(&setupReconfigure, "reconfigure", false, "Prompt for every value, keeping current ones on Enter")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	store := openStore(cmd)

	header("Environment Setup")
	step("📄", fmt.Sprintf("Writing to %s", store.Path()))
	if setupReconfigure {
		step("↩️ ", "Press Enter to keep existing values")
	}

	for _, svc := range probe.All() {
		header(svc.DisplayName() + " Configuration")

		var err error
		if setupReconfigure {
			for _, line := range svc.Help() {
				fmt.Fprintf(out, "  %s\n", dimText(line))
			}
			_, err = core.ReconfigureService(store, svc)
		} else {
			_, err = resolveService(store, svc)
		}
		if err == nil {
			err = checkServiceConfig(store, svc)
		}
		if err != nil {
			return fmt.Errorf("%s setup failed: %w", svc.DisplayName(), err)
		}
		success(fmt.Sprintf("%s configuration has been saved", svc.DisplayName()))
	}

	fmt.Fprintln(out)
	success("Environment setup completed!")
	step("📄", fmt.Sprintf("Configuration saved to: %s", store.Path()))
	fmt.Fprintln(out)
	return nil
}

// checkServiceConfig decodes the stored values of svc into its typed config.
func checkServiceConfig(store *core.EnvStore, svc probe.Service) error {
	cfg := serviceConfig(svc.Name())
	if cfg == nil {
		return nil
	}
	snapshot, err := store.Snapshot()
	if err != nil {
		return err
	}
	return core.LoadConfig(snapshot, cfg)
}
