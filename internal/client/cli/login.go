package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (r *root) loginCommand() *cobra.Command {
	var username, passwordFile, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			passwords := Passwords{FromEnv: r.cfg.Password, FromFile: passwordFile, FromArgs: password}
			return r.cli.runLogin(cmd.Context(), username, passwords)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted if empty)")
	cmd.Flags().StringVar(&passwordFile, "password-file", "", "Path to file containing password")
	cmd.Flags().StringVar(&password, keyPassword, "", "Password (not recommended, use CVAGENT_PASSWORD or --password-file)")

	return cmd
}

func (c *Cli) runLogin(ctx context.Context, username string, passwords Passwords) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	// Запрашиваем username
	if username == "" {
		var err error
		username, err = c.io.ReadInput("Username: ")
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}

	// Запрашиваем пароль
	password, err := c.getPassword(passwords, "Password: ")
	if err != nil {
		return err
	}

	c.io.Println("Authenticating...")

	user, err := c.authService.Login(ctx, username, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Username: %s\n", user.Username)
	c.io.Printf("User ID:  %s\n", user.ID)
	c.io.Println()
	c.io.Println("Your session has been saved.")

	return nil
}
