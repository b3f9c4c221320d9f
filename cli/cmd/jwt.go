package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pizzashop/pizzasetup/pkg/probe"
)

var jwtCmd = &cobra.Command{
	Use:   "jwt",
	Short: "Generate the JWT signing secret",
	Long: `Generates a random 256-bit secret (base64) and stores it as
JWT_SECRET. An existing secret is never overwritten. A secret stored under
the deprecated JWT_SECRET_KEY name is copied to JWT_SECRET.`,
	Args: cobra.NoArgs,
	RunE: runJWT,
}

func init() {
	rootCmd.AddCommand(jwtCmd)
}

func runJWT(cmd *cobra.Command, args []string) error {
	store := openStore(cmd)
	header("JWT Setup")

	entries, err := store.Entries()
	if err != nil {
		return err
	}
	reportParseWarnings(store)

	stored := map[string]string{}
	for _, e := range entries {
		stored[e.Key] = e.Value
	}

	if v := stored[probe.KeyJWTSecret]; strings.TrimSpace(v) != "" {
		success(probe.KeyJWTSecret + " already exists in " + store.Path())
		return nil
	}

	if v := stored[probe.KeyJWTSecretLegacy]; strings.TrimSpace(v) != "" {
		if err := store.Set(probe.KeyJWTSecret, v); err != nil {
			return err
		}
		warn(probe.KeyJWTSecretLegacy + " is deprecated")
		success("Copied " + probe.KeyJWTSecretLegacy + " to " + probe.KeyJWTSecret)
		return nil
	}

	step("🔑", "Generating JWT secret...")
	secret, err := probe.GenerateJWTSecret()
	if err != nil {
		return err
	}
	if err := store.Set(probe.KeyJWTSecret, secret); err != nil {
		return err
	}
	success("JWT secret has been generated and saved")
	return nil
}
