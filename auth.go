package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/ahakola/kbcenter-go/internal/api"
	"github.com/ahakola/kbcenter-go/internal/config"
	"github.com/ahakola/kbcenter-go/internal/credfile"
)

// envToken is the environment variable login reads when --token is unset.
const envToken = "KBCENTER_TOKEN"

func newLoginCmd() *cobra.Command {
	var flagToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the help-center backend",
		Long: "Verifies an access token against the backend and stores it with the\n" +
			"user profile. The token comes from --token or the " + envToken + " environment variable.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runLogin(flagToken)
		},
	}

	cmd.Flags().StringVar(&flagToken, "token", "", "access token (defaults to $"+envToken+")")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove saved credentials",
		RunE:  runLogout,
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Display the authenticated user and accessible knowledge bases",
		RunE:  runWhoami,
	}
}

func runLogin(token string) error {
	// Login runs before the persistent pre-run config load.
	if err := loadConfig(); err != nil {
		return err
	}

	logger := buildLogger()
	ctx := context.Background()

	if token == "" {
		token = os.Getenv(envToken)
	}

	if token == "" {
		return fmt.Errorf("no token given: pass --token or set $%s", envToken)
	}

	// Verify the token before persisting anything.
	client := api.NewClient(loadedCfg.APIBaseURL, defaultHTTPClient(), api.StaticTokenSource(token), logger)

	user, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("verifying token: %w", err)
	}

	profile := credfile.Profile{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}

	path := config.CredentialsPath(loadedCfg)
	if err := credfile.Save(path, &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, profile); err != nil {
		return err
	}

	logger.Info("login successful", "user_id", user.ID, "path", path)
	statusf("Logged in as %s (%s).\n", user.DisplayName, user.Email)

	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	logger := buildLogger()

	path := config.CredentialsPath(loadedCfg)
	if err := credfile.Remove(path); err != nil {
		return err
	}

	logger.Info("logout successful", "path", path)
	statusf("Logged out.\n")

	return nil
}

// whoamiOutput is the JSON schema for `whoami --json`.
type whoamiOutput struct {
	User           whoamiUser `json:"user"`
	KnowledgeBases []whoamiKB `json:"knowledge_bases"`
}

type whoamiUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type whoamiKB struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
}

func runWhoami(_ *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := context.Background()

	session, err := newSession(ctx, loadedCfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	user, err := session.Client.Me(ctx)
	if err != nil {
		return fmt.Errorf("fetching user profile: %w", err)
	}

	memberships := session.Resolver.Memberships()
	active, _ := session.Resolver.Active()

	if flagJSON {
		out := whoamiOutput{
			User: whoamiUser{
				ID:          user.ID,
				DisplayName: user.DisplayName,
				Email:       user.Email,
			},
			KnowledgeBases: make([]whoamiKB, 0, len(memberships)),
		}

		for _, m := range memberships {
			out.KnowledgeBases = append(out.KnowledgeBases, whoamiKB{
				ID:          m.ID.String(),
				DisplayName: m.DisplayName,
				Role:        string(m.Role),
				Active:      m.ID.Equal(active),
			})
		}

		return printJSON(out)
	}

	fmt.Printf("User:  %s (%s)\n", user.DisplayName, user.Email)
	fmt.Printf("ID:    %s\n", user.ID)

	for _, m := range memberships {
		marker := " "
		if m.ID.Equal(active) {
			marker = "*"
		}

		fmt.Printf("\n%s KB: %s (%s)\n", marker, m.DisplayName, m.Role)
		fmt.Printf("    ID: %s\n", m.ID)
	}

	return nil
}
