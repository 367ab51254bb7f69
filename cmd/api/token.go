package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
)

var (
	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "issue an access token for a user id",
		Long:  `Sign-in lives outside this service; token issues a signed access token for local use and tests.`,
		RunE:  runToken,
	}
	tokenUserID string
	tokenAdmin  bool
)

func init() {
	tokenCmd.Flags().StringVarP(&tokenUserID, "user", "u", "", "user id to put in the token")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant admin privileges")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return err
	}

	token, _, err := svc.GenerateAccessToken(tokenUserID, tokenAdmin)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
