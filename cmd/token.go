package cmd

import (
	"fmt"
	"time"

	"github.com/crumble-bakery/signup-service/app/service"
	"github.com/crumble-bakery/signup-service/config"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage admin access tokens",
}

var tokenGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a bearer token for the admin endpoints",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		token, err := service.NewAdminTokenService(cfg.Admin).GenerateToken()
		if err != nil {
			return err
		}

		fmt.Printf("token: %s\n", token)
		fmt.Printf("expires_at: %s\n", time.Now().Add(cfg.Admin.TokenTTL).Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenGenerateCmd)
	rootCmd.AddCommand(tokenCmd)
}
