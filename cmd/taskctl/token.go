package main

import (
	"fmt"
	"io"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/services/auth"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// tokenInfo is what token issue and token verify print.
type tokenInfo struct {
	Token     string    `json:"token,omitempty" yaml:"token,omitempty"`
	UserID    string    `json:"userId" yaml:"userId"`
	ExpiresAt time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Valid     bool      `json:"valid" yaml:"valid"`
}

func newTokenCmd(e *env, g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or check tokens with the server's JWT_SECRET",
	}
	cmd.AddCommand(newTokenIssueCmd(e, g), newTokenVerifyCmd(e, g))
	return cmd
}

func loadTokens() (*auth.Tokens, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
}

func newTokenIssueCmd(e *env, g *globalFlags) *cobra.Command {
	var userHex string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a token for a user id",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			userID, err := bson.ObjectIDFromHex(userHex)
			if err != nil {
				return fmt.Errorf("--user: %w", err)
			}
			tokens, err := loadTokens()
			if err != nil {
				return err
			}

			issuedAt := time.Now()
			raw, err := tokens.Issue(userID)
			if err != nil {
				return err
			}

			info := tokenInfo{
				Token:     raw,
				UserID:    userID.Hex(),
				ExpiresAt: issuedAt.Add(tokens.TTL()).UTC().Truncate(time.Second),
				Valid:     true,
			}
			return render(e.out, g.output, info, func(w io.Writer) {
				fmt.Fprintln(w, raw)
			})
		},
	}
	cmd.Flags().StringVar(&userHex, "user", "", "User id (24 hex characters)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newTokenVerifyCmd(e *env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Check a token's signature and expiry",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			tokens, err := loadTokens()
			if err != nil {
				return err
			}

			userID, err := tokens.Verify(args[0])
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}

			info := tokenInfo{UserID: userID.Hex(), Valid: true}
			return render(e.out, g.output, info, func(w io.Writer) {
				fmt.Fprintf(w, "valid token for user %s\n", info.UserID)
			})
		},
	}
}
