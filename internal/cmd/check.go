package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oarkflow/mebel"
	"github.com/oarkflow/mebel/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check configuration file",
	Long: `Check if the configuration file is valid.

This validates:
  - YAML syntax
  - Include statements
  - Mode and API address
  - List view page sizes and sort fields
  - Log level`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := cfgFile
		if configPath == "" {
			configPath = config.FileName
		}

		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return fmt.Errorf("config file not found: %s", configPath)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg.ApplyEnv()

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration file %s is valid (mode: %s)\n", configPath, cfg.Mode)
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	Long: `Initialize a new .mebel.yaml configuration file.

This creates a basic configuration file pointing at a local backend
that you can customize.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.FileName
		if cfgFile != "" {
			configPath = cfgFile
		}

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s", configPath)
		}

		if err := os.WriteFile(configPath, []byte(config.DefaultTemplate()), 0644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created %s\n", configPath)
		fmt.Fprintln(out, "\nEdit this file to point the console at your backend.")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit, and build date of Mebel.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Mebel %s\n", mebel.Version)
		if mebel.GitCommit != "" {
			fmt.Fprintf(out, "  Commit: %s\n", mebel.GitCommit)
		}
		if mebel.BuildDate != "" {
			fmt.Fprintf(out, "  Built:  %s\n", mebel.BuildDate)
		}
	},
}
