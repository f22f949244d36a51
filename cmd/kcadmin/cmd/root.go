// Package cmd implements the kcadmin CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/m7011e/platform/internal/keycloak"
)

var (
	// Global flags
	keycloakURL   string
	adminUser     string
	adminPassword string

	// Shared client instance
	admin *keycloak.AdminClient
)

var rootCmd = &cobra.Command{
	Use:   "kcadmin",
	Short: "Keycloak bootstrap CLI for the platform",
	Long: `kcadmin automates Keycloak setup via the Admin REST API.

It provides commands to create realms, register clients, and create
users with realm roles, replacing manual clicking through the admin
console.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if keycloakURL == "" {
			return fmt.Errorf("keycloak URL is required: use --url or KEYCLOAK_URL")
		}
		if adminPassword == "" {
			return fmt.Errorf("admin password is required: use --password or KEYCLOAK_ADMIN_PASSWORD")
		}

		admin = keycloak.NewAdminClient(keycloak.AdminConfig{
			BaseURL:  keycloakURL,
			Username: adminUser,
			Password: adminPassword,
		})
		if err := admin.Login(cmd.Context()); err != nil {
			return fmt.Errorf("admin login failed: %w", err)
		}
		color.Green("✓ Admin token obtained")
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&keycloakURL, "url", envOr("KEYCLOAK_URL", ""), "Keycloak base URL")
	rootCmd.PersistentFlags().StringVar(&adminUser, "user", envOr("KEYCLOAK_ADMIN_USER", "admin"), "admin username")
	rootCmd.PersistentFlags().StringVar(&adminPassword, "password", envOr("KEYCLOAK_ADMIN_PASSWORD", ""), "admin password")

	rootCmd.AddCommand(realmCmd)
	rootCmd.AddCommand(clientCmd)
	rootCmd.AddCommand(userCmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
