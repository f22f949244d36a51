package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/m7011e/platform/internal/keycloak"
)

var (
	userRealm     string
	userEmail     string
	userFirstName string
	userLastName  string
	userPassword  string
	userRoles     []string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user, optionally assigning realm roles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		if userPassword == "" {
			return fmt.Errorf("a password is required: use --set-password")
		}

		user := keycloak.UserRepresentation{
			Username:      username,
			Email:         userEmail,
			FirstName:     userFirstName,
			LastName:      userLastName,
			Enabled:       true,
			EmailVerified: userEmail != "",
			Credentials: []keycloak.CredentialRepresentation{
				{Type: "password", Value: userPassword},
			},
		}

		id, err := admin.CreateUser(cmd.Context(), userRealm, user)
		if errors.Is(err, keycloak.ErrAlreadyExists) {
			color.Yellow("⚠ User %q already exists in realm %q", username, userRealm)
			return nil
		}
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		color.Green("✓ User %q created (id %s)", username, id)

		for _, role := range userRoles {
			if err := admin.AssignRealmRole(cmd.Context(), userRealm, id, role); err != nil {
				return fmt.Errorf("assign role %q: %w", role, err)
			}
			color.Green("✓ Realm role %q assigned", role)
		}
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userRealm, "realm", "myapp", "target realm")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "user email")
	userCreateCmd.Flags().StringVar(&userFirstName, "first-name", "", "first name")
	userCreateCmd.Flags().StringVar(&userLastName, "last-name", "", "last name")
	userCreateCmd.Flags().StringVar(&userPassword, "set-password", "", "initial password")
	userCreateCmd.Flags().StringSliceVar(&userRoles, "role", nil, "realm role to assign; repeatable")
	userCmd.AddCommand(userCreateCmd)
}
