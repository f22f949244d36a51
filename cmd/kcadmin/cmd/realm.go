package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/m7011e/platform/internal/keycloak"
)

var realmDisplayName string

var realmCmd = &cobra.Command{
	Use:   "realm",
	Short: "Manage realms",
}

var realmCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a realm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		realm := keycloak.DefaultRealm(name, realmDisplayName)
		err := admin.CreateRealm(cmd.Context(), realm)
		switch {
		case errors.Is(err, keycloak.ErrAlreadyExists):
			color.Yellow("⚠ Realm %q already exists", name)
		case err != nil:
			return fmt.Errorf("create realm: %w", err)
		default:
			color.Green("✓ Realm %q created", name)
		}

		fmt.Fprintf(os.Stdout, "Realm URL: %s/realms/%s\n", keycloakURL, name)
		return nil
	},
}

func init() {
	realmCreateCmd.Flags().StringVar(&realmDisplayName, "display-name", "", "human-readable realm name")
	realmCmd.AddCommand(realmCreateCmd)
}
