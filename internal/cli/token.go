package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"julianmorley.ca/con-plar/petmart/internal/router"
)

// TokenOptions holds flags for the token command.
type TokenOptions struct {
	*RootOptions
	UserID string
	Email  string
	Role   string
	TTL    time.Duration
}

// NewTokenCommand mints a bearer token signed with the configured JWT secret.
// Sign-in lives outside this service, so operators use it for admin access
// and local testing.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed bearer token",
		Long: `Issue an HS256 bearer token for the storefront API.

Example:
  petmart token --user admin-1 --email admin@petmart.ca --role admin
  petmart token --user u-42 --email jamie@example.com --ttl 2h`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts.RootOptions)
			if err != nil {
				return err
			}
			if opts.TTL <= 0 {
				return fmt.Errorf("ttl must be positive, got %s", opts.TTL)
			}
			auth := router.NewAuthenticator(cfg.Security.JWTSecret, opts.TTL)
			token, err := auth.IssueToken(opts.UserID, opts.Email, opts.Role, time.Now())
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.UserID, "user", "", "user id placed in the subject claim (required)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email claim")
	cmd.Flags().StringVar(&opts.Role, "role", "user", "role claim (user|admin)")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
