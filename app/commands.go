package main

import (
	"fmt"

	"resource-server/pkg/config"

	"github.com/spf13/cobra"
)

// version подставляется при сборке: -ldflags "-X main.version=..."
var version = "dev"

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "resource-server",
		Short:         "REST backend that validates OIDC access tokens and enforces role-based access",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to an env file (default .env)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), envFile)
		},
	})
	rootCmd.AddCommand(newCheckConfigCmd(&envFile))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newCheckConfigCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Load and validate the configuration, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "application: %s %s\n", cfg.App.Name, cfg.App.Version)
			fmt.Fprintf(out, "listen:      %s\n", cfg.Addr())
			fmt.Fprintf(out, "issuer:      %s\n", cfg.OIDC.IssuerURI)
			fmt.Fprintf(out, "jwks:        %s\n", cfg.OIDC.JWKSURI)
			fmt.Fprintln(out, "configuration OK")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func loadConfig(envFile string) (*config.Config, error) {
	if envFile == "" {
		return config.Load()
	}
	return config.Load(envFile)
}
