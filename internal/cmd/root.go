/*
Package cmd provides the CLI commands for Mebel.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/oarkflow/mebel/internal/config"
	"github.com/oarkflow/mebel/internal/console"
)

var (
	cfgFile string
	verbose bool
	debug   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mebel",
	Short: "Admin console for the Mebel furniture store",
	Long: `Mebel is the admin console for the furniture store backend.

It manages products and user accounts, shows the storefront catalog
and the dashboard counts, and can run an in-memory development
backend that speaks the same API.

Example:
  mebel login --email admin@mebel.id   # Sign in
  mebel products list --search meja    # Search products
  mebel users browse                   # Page through users
  mebel serve-mock                     # Run the development backend`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is .mebel.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")

	// Add subcommands
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(serveMockCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if debug {
		log.SetLevel(log.DebugLevel)
	} else if verbose {
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if err := config.LoadEnv(); err != nil {
		log.Warn("Ignoring environment file", "error", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Config file not found: %s\n", cfgFile)
			os.Exit(1)
		}
	}
}

// loadConfig resolves the configuration for a command. The log level from
// the file applies only when neither --verbose nor --debug was given.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.FindPath()
	}

	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if !debug && !verbose {
		if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
			log.SetLevel(level)
		}
	}
	log.Debug("Configuration resolved", "path", path, "mode", cfg.Mode)
	return cfg, nil
}

// openConsole wires the console for the resolved configuration.
func openConsole() (*console.Console, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return console.Open(cfg)
}
