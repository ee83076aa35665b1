package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/mnemo/internal/config"
)

var (
	flagDB     string
	flagFormat string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "mnemo",
	Short:         "Persistent knowledge graph of a source tree",
	Long:          "Mnemo extracts code entities by pattern matching and persists them, with relationships and file hashes, in a SQLite snapshot for fast structured queries.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		return checkLicenseForCommand(cmd)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .mnemo/memory.db relative to the project root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: json|text")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(licenseCmd)
	rootCmd.AddCommand(watchCmd)
}

func validateFormat(format string) error {
	switch format {
	case "json", "text":
		return nil
	default:
		return fmt.Errorf("invalid format %q: must be json or text", format)
	}
}

// projectRoot is the directory mnemo operates on: the current working
// directory, matching one-project-per-invocation batch usage.
func projectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}
	return cwd, nil
}

// resolveDBPath returns the database path from the --db flag, the project
// config, or the default, in that order.
func resolveDBPath(root string) (string, error) {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB, nil
		}
		return filepath.Join(root, flagDB), nil
	}
	cfg, err := config.Load(root)
	if err != nil {
		return "", err
	}
	return cfg.DatabasePath(root), nil
}

// ensureDBDir creates the database's parent directory.
func ensureDBDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}
