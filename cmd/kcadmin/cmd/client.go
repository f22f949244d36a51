package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/m7011e/platform/internal/keycloak"
)

var (
	clientRealm        string
	clientName         string
	clientFrontendURLs []string
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage clients",
}

var clientCreateCmd = &cobra.Command{
	Use:   "create <client-id>",
	Short: "Register a public client for a frontend application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID := args[0]

		client := keycloak.PublicClient(clientID, clientName, clientFrontendURLs)
		err := admin.CreateClient(cmd.Context(), clientRealm, client)
		switch {
		case errors.Is(err, keycloak.ErrAlreadyExists):
			color.Yellow("⚠ Client %q already exists in realm %q", clientID, clientRealm)
		case err != nil:
			return fmt.Errorf("create client: %w", err)
		default:
			color.Green("✓ Client %q created in realm %q", clientID, clientRealm)
		}
		return nil
	},
}

func init() {
	clientCreateCmd.Flags().StringVar(&clientRealm, "realm", "myapp", "target realm")
	clientCreateCmd.Flags().StringVar(&clientName, "name", "", "human-readable client name")
	clientCreateCmd.Flags().StringSliceVar(&clientFrontendURLs, "frontend-url", []string{"http://localhost:3000"},
		"frontend URL; repeatable, each becomes a redirect URI and web origin")
	clientCmd.AddCommand(clientCreateCmd)
}
