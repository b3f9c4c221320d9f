package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pizzashop/pizzasetup/cli/core"
	"github.com/pizzashop/pizzasetup/pkg/probe"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Read and edit values in the .env file",
	Long: `Get, set, list, export or import values in the .env file without
going through the interactive prompts.

Examples:
  pizzasetup env set SMTP_PORT=465
  pizzasetup env set SMTP_HOST=smtp.zoho.in SMTP_PORT=587
  pizzasetup env get MONGODB_URI
  pizzasetup env list --show-secrets
  pizzasetup env export -o backend/.env
  pizzasetup env import staging.env --overwrite`,
}

var envGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the stored value of a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnvGet,
}

var envSetCmd = &cobra.Command{
	Use:   "set KEY=VALUE [KEY=VALUE ...]",
	Short: "Store one or more values",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEnvSet,
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored values (secrets masked)",
	Args:  cobra.NoArgs,
	RunE:  runEnvList,
}

var envExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored values in quoted dotenv format",
	Long: `Writes every stored value in quoted dotenv format, suitable for tools
that expect escaped values. Prints to stdout unless -o is given.`,
	Args: cobra.NoArgs,
	RunE: runEnvExport,
}

var envImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Copy values from another dotenv file",
	Long: `Reads FILE with full dotenv syntax (quotes, export prefixes, comments)
and stores its values. Keys that are already set are skipped unless
--overwrite is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnvImport,
}

var (
	envShowSecrets bool
	envExportFile  string
	envOverwrite   bool
)

func init() {
	envListCmd.Flags().BoolVar(&envShowSecrets, "show-secrets", false, "Print secret values in full")
	envExportCmd.Flags().StringVarP(&envExportFile, "output", "o", "", "Write to this file instead of stdout")
	envImportCmd.Flags().BoolVar(&envOverwrite, "overwrite", false, "Replace values that are already set")

	envCmd.AddCommand(envGetCmd)
	envCmd.AddCommand(envSetCmd)
	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envExportCmd)
	envCmd.AddCommand(envImportCmd)
	rootCmd.AddCommand(envCmd)
}

func runEnvGet(cmd *cobra.Command, args []string) error {
	store := openStore(cmd)
	value, ok, err := store.Get(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not set in %s", args[0], store.Path())
	}
	fmt.Fprintln(out, value)
	return nil
}

func runEnvSet(cmd *cobra.Command, args []string) error {
	// Validate every pair before writing any.
	type pair struct{ key, value string }
	pairs := make([]pair, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("invalid format %q: expected KEY=VALUE", arg)
		}
		if err := core.ValidateEntry(key, value); err != nil {
			return err
		}
		pairs = append(pairs, pair{key, value})
	}

	store := openStore(cmd)
	for _, p := range pairs {
		if err := store.Set(p.key, p.value); err != nil {
			return err
		}
		success(fmt.Sprintf("%s = %s", keyStyle.Render(p.key), maskValue(p.key, p.value)))
	}
	for _, p := range pairs {
		if p.key == probe.KeyJWTSecretLegacy {
			warn(probe.KeyJWTSecretLegacy + " is deprecated, use " + probe.KeyJWTSecret)
		}
	}
	return nil
}

func runEnvList(cmd *cobra.Command, args []string) error {
	store := openStore(cmd)
	entries, err := store.Entries()
	if err != nil {
		return err
	}
	reportParseWarnings(store)

	header(fmt.Sprintf("Values in %s", store.Path()))
	if len(entries) == 0 {
		fmt.Fprintf(out, "  %s\n", dimText("(no values set; run 'pizzasetup setup')"))
		return nil
	}

	width := 0
	for _, e := range entries {
		if len(e.Key) > width {
			width = len(e.Key)
		}
	}
	for _, e := range entries {
		value := e.Value
		if !envShowSecrets {
			value = maskValue(e.Key, value)
		}
		pad := strings.Repeat(" ", width-len(e.Key))
		fmt.Fprintf(out, "  %s%s  %s\n", keyStyle.Render(e.Key), pad, value)
	}
	fmt.Fprintln(out)
	return nil
}

func runEnvExport(cmd *cobra.Command, args []string) error {
	store := openStore(cmd)
	snapshot, err := store.Snapshot()
	if err != nil {
		return err
	}

	if envExportFile != "" {
		if err := godotenv.Write(snapshot, envExportFile); err != nil {
			return fmt.Errorf("cannot write %s: %w", envExportFile, err)
		}
		success(fmt.Sprintf("Exported %d value(s) to %s", len(snapshot), envExportFile))
		return nil
	}

	content, err := godotenv.Marshal(snapshot)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), content)
	return nil
}

func runEnvImport(cmd *cobra.Command, args []string) error {
	src := args[0]
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("cannot read %s: %w", src, err)
	}
	values, err := godotenv.Read(src)
	if err != nil {
		return fmt.Errorf("cannot parse %s: %w", src, err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	store := openStore(cmd)
	header(fmt.Sprintf("Importing %s into %s", src, store.Path()))
	var imported, skipped int
	for _, key := range keys {
		if !envOverwrite {
			if current, ok, err := store.Get(key); err != nil {
				return err
			} else if ok && strings.TrimSpace(current) != "" {
				skipped++
				continue
			}
		}
		if err := store.Set(key, values[key]); err != nil {
			warn(fmt.Sprintf("%s: %v", key, err))
			skipped++
			continue
		}
		imported++
		step("↳", fmt.Sprintf("%s = %s", keyStyle.Render(key), maskValue(key, values[key])))
	}
	success(fmt.Sprintf("Imported %d value(s), skipped %d", imported, skipped))
	return nil
}
