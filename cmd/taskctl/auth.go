package main

import (
	"errors"
	"fmt"
	"io"

	"taskboard/internal/utils/crypto"

	"github.com/spf13/cobra"
)

func newRegisterCmd(e *env, g *globalFlags) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := e.readPassword("Password: ")
			if err != nil {
				return err
			}
			if !crypto.IsAcceptable(password) {
				return crypto.ErrPasswordLength
			}

			c, err := g.client()
			if err != nil {
				return err
			}
			user, err := c.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			return renderUser(e.out, g.output, user)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(e *env, g *globalFlags) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := e.readPassword("Password: ")
			if err != nil {
				return err
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			c, err := g.client()
			if err != nil {
				return err
			}
			user, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return renderUser(e.out, g.output, user)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newMeCmd(e *env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			user, err := c.Me(cmd.Context())
			if err != nil {
				return err
			}
			return renderUser(e.out, g.output, user)
		},
	}
}

func newLogoutCmd(e *env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return err
			}
			return render(e.out, g.output, map[string]string{"status": "logged out"}, func(w io.Writer) {
				fmt.Fprintln(w, "logged out")
			})
		},
	}
}
