package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (r *root) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show local authentication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runStatus(cmd.Context())
		},
	}
}

func (r *root) meCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current user as seen by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.cli.runMe(cmd.Context())
		},
	}
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	// Проверяем наличие сохраненной сессии
	isAuth, err := c.session.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	if !isAuth {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'cvagent login' to authenticate.")
		return nil
	}

	user, err := c.authService.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Username: %s\n", user.Username)
	c.io.Printf("Email:    %s\n", user.Email)
	c.io.Printf("Role:     %s\n", user.Role)
	c.io.Printf("Location: %s\n", c.router.Current())

	return nil
}

func (c *Cli) runMe(ctx context.Context) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	user, err := c.authService.Me(ctx)
	if err != nil {
		return err
	}

	return c.render(userTemplate, user)
}
