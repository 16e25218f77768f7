// Thin credentials bootstrapper for CI integration runs: verifies the
// token from $KBCENTER_TOKEN (or a .env file) and writes the credentials
// file without the interactive login command.
//
// Usage: go run ./cmd/integration-bootstrap [--env .env]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"

	"github.com/ahakola/kbcenter-go/internal/api"
	"github.com/ahakola/kbcenter-go/internal/config"
	"github.com/ahakola/kbcenter-go/internal/credfile"
	"github.com/ahakola/kbcenter-go/testutil"
)

func main() {
	envPath := flag.String("env", ".env", "path to .env file with KBCENTER_TOKEN")
	flag.Parse()

	testutil.LoadDotEnv(*envPath)

	token := os.Getenv("KBCENTER_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "KBCENTER_TOKEN is not set")
		os.Exit(1)
	}

	cfg, err := config.LoadOrDefault(config.ConfigPathFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger := slog.Default()

	client := api.NewClient(cfg.APIBaseURL, http.DefaultClient, api.StaticTokenSource(token), logger)

	user, err := client.Me(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verifying token: %v\n", err)
		os.Exit(1)
	}

	path := config.CredentialsPath(cfg)
	err = credfile.Save(path, &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, credfile.Profile{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "saving credentials: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Credentials saved for %s.\n", user.Email)
}
