package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (r *root) registerCommand() *cobra.Command {
	var username, email, passwordFile, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			passwords := Passwords{FromEnv: r.cfg.Password, FromFile: passwordFile, FromArgs: password}
			return r.cli.runRegister(cmd.Context(), username, email, passwords)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted if empty)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email (prompted if empty)")
	cmd.Flags().StringVar(&passwordFile, "password-file", "", "Path to file containing password")
	cmd.Flags().StringVar(&password, keyPassword, "", "Password (not recommended, use CVAGENT_PASSWORD or --password-file)")

	return cmd
}

func (c *Cli) runRegister(ctx context.Context, username, email string, passwords Passwords) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	var err error

	// Запрашиваем username и email
	if username == "" {
		username, err = c.io.ReadInput("Username: ")
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}
	if email == "" {
		email, err = c.io.ReadInput("Email: ")
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}

	password, err := c.getPassword(passwords, "Password (min 6 chars): ")
	if err != nil {
		return err
	}

	// Подтверждение пароля только для интерактивного ввода
	if passwords == (Passwords{}) {
		confirm, err := c.io.ReadPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	c.io.Println("Registering user...")

	user, err := c.authService.Register(ctx, username, email, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID:  %s\n", user.ID)
	c.io.Printf("Username: %s\n", user.Username)
	c.io.Printf("Email:    %s\n", user.Email)
	c.io.Println()
	c.io.Println("You are signed in.")

	return nil
}
