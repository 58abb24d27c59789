package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	flagEmail     string
	flagFederated bool
	flagCode      string
)

var errNoProvider = errors.New("sign in is not configured, set auth.pool_url, auth.client_id and aws.table_name")

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to keep your purchase history across devices",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and continue as a guest",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show who is signed in",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&flagEmail, "email", "e", "", "Email address for password sign in")
	loginCmd.Flags().BoolVar(&flagFederated, "federated", false, "Print the hosted sign in address instead")
	loginCmd.Flags().StringVar(&flagCode, "code", "", "Authorization code returned by the hosted sign in")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func prompt(title string, value *string, secret bool) error {
	input := huh.NewInput().Title(title).Value(value)
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}
	return input.Run()
}

func runLogin(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		if s.provider == nil {
			return errNoProvider
		}
		switch {
		case flagFederated:
			address, err := s.provider.FederatedSignInURL(uuid.NewString())
			if err != nil {
				return err
			}
			fmt.Println("  Open this address, then run `shopper login --code <code>`:")
			fmt.Println("  " + address)
			return nil
		case flagCode != "":
			if _, err := s.provider.CompleteFederatedSignIn(ctx, flagCode); err != nil {
				return err
			}
		default:
			email := flagEmail
			if email == "" {
				if err := prompt("Email", &email, false); err != nil {
					return err
				}
			}
			var password string
			if err := prompt("Password", &password, true); err != nil {
				return err
			}
			if _, err := s.provider.SignIn(ctx, email, password); err != nil {
				return err
			}
		}
		user := s.store.Identity()
		if user == nil {
			return fmt.Errorf("sign in did not resolve a user")
		}
		fmt.Printf("  Signed in as %s, %d purchases in your history.\n", user.ID, len(s.store.History()))
		return nil
	})
}

func runLogout(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		if s.provider == nil {
			return nil
		}
		if err := s.provider.SignOut(ctx); err != nil {
			return err
		}
		fmt.Println("  Signed out.")
		return nil
	})
}

func runWhoami(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		if user := s.store.Identity(); user != nil {
			fmt.Printf("  %s %s\n", user.ID, user.Email)
		} else {
			fmt.Println("  guest")
		}
		return nil
	})
}
