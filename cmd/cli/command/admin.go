package command

import (
	"fmt"

	"podcasthub/internal/app"
	"podcasthub/internal/microservices/http-api/service"
	"podcasthub/internal/policy"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Account administration",
}

// createUserCmd is the only way to create an Admin outside the seeder.
var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account with any role",
	RunE: func(cmd *cobra.Command, args []string) error {
		var in service.RegisterInput
		in.Email, _ = cmd.Flags().GetString("email")
		in.Password, _ = cmd.Flags().GetString("password")
		in.DisplayName, _ = cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")
		in.Role = policy.Role(role)

		return withApp(cmd.Context(), func(a *app.App) error {
			user, err := a.Services.Auth.Provision(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create user failed: %w", err)
			}
			fmt.Printf("✓ Created %s (%s)\n", user.ID, user.Role)
			return nil
		})
	},
}

func init() {
	createUserCmd.Flags().String("email", "", "account email (required)")
	createUserCmd.Flags().String("password", "", "account password (required)")
	createUserCmd.Flags().String("name", "", "display name")
	createUserCmd.Flags().String("role", string(policy.RoleAdmin), "Admin, Podcaster or Listener")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(adminCmd)
}
