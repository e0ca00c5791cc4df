package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/oarkflow/mebel/internal/mockserver"
)

var serveAddr string

var serveMockCmd = &cobra.Command{
	Use:   "serve-mock",
	Short: "Run the in-memory development backend",
	Long: `Run a development backend that serves the fixture products and
users over the same HTTP API as the real one.

Point the console at it with api.base_url (mode: live) to exercise the
HTTP gateways without a database. Data lives for the process only.

Sign in as admin@mebel.id / admin123.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		addr := cfg.Mock.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		srv, err := mockserver.New(mockserver.Options{
			Addr:                   addr,
			BasePath:               cfg.Mock.BasePath,
			Secret:                 []byte(cfg.Mock.JWTSecret),
			UploadDir:              cfg.Mock.UploadDir,
			PublicURL:              cfg.Mock.PublicURL,
			AllowOrigins:           cfg.Mock.AllowOrigins,
			Latency:                cfg.Mock.Latency,
			DisableUserStatusPatch: cfg.Mock.DisableUserStatusPatch,
			DefaultPassword:        cfg.Users.DefaultPassword,
		})
		if err != nil {
			return fmt.Errorf("failed to start mock backend: %w", err)
		}

		log.Info("Starting mock backend", "addr", addr, "base", cfg.Mock.BasePath)
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s%s (Ctrl+C to stop)\n", addr, cfg.Mock.BasePath)
		return srv.Run(cmd.Context())
	},
}

func init() {
	serveMockCmd.Flags().StringVar(&serveAddr, "addr", mockserver.DefaultAddr, "listen address")
}
