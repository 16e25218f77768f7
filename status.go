package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahakola/kbcenter-go/internal/tenant"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session status: user, active knowledge base, cache",
		RunE:  runStatus,
	}
}

// statusOutput is the JSON schema for `status --json`.
type statusOutput struct {
	LoggedIn     bool   `json:"logged_in"`
	UserEmail    string `json:"user_email,omitempty"`
	ActiveKBID   string `json:"active_kb_id,omitempty"`
	ActiveKBName string `json:"active_kb_name,omitempty"`
	Memberships  int    `json:"memberships"`
	CacheEntries int    `json:"cache_entries"`
	LoadError    string `json:"load_error,omitempty"`
	Provisioned  bool   `json:"provision_attempted"`
}

func runStatus(_ *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := context.Background()

	session, err := newSession(ctx, loadedCfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	out := statusOutput{
		LoggedIn:    true,
		UserEmail:   session.Profile.Email,
		Memberships: len(session.Resolver.Memberships()),
		Provisioned: session.Resolver.ProvisionAttempted(),
	}

	if loadErr := session.Resolver.LoadError(); loadErr != nil {
		out.LoadError = loadErr.Error()
	}

	if active, activeErr := session.Resolver.Active(); activeErr == nil {
		out.ActiveKBID = active.String()
		if m, ok := session.Resolver.ActiveMembership(); ok {
			out.ActiveKBName = m.DisplayName
		}
	}

	if n, countErr := session.Cache.Len(ctx); countErr == nil {
		out.CacheEntries = n
	}

	if flagJSON {
		return printJSON(out)
	}

	fmt.Printf("User:          %s\n", out.UserEmail)

	switch {
	case out.LoadError != "":
		fmt.Printf("Active KB:     (unresolved: %s)\n", out.LoadError)
	case out.ActiveKBID != "":
		fmt.Printf("Active KB:     %s (%s)\n", out.ActiveKBName, out.ActiveKBID)
	default:
		fmt.Printf("Active KB:     none\n")
	}

	fmt.Printf("Memberships:   %d\n", out.Memberships)
	fmt.Printf("Cache entries: %d\n", out.CacheEntries)

	if out.Provisioned {
		if provErr := session.Resolver.ProvisionError(); provErr != nil {
			fmt.Printf("Provisioning:  attempted, failed (%v)\n", provErr)
		} else {
			fmt.Printf("Provisioning:  default knowledge base created this session\n")
		}
	}

	return nil
}

// requireActive returns a friendly error when no knowledge base resolves.
func requireActive(session *Session) error {
	if _, err := session.Resolver.Active(); err != nil {
		if loadErr := session.Resolver.LoadError(); loadErr != nil {
			return fmt.Errorf("knowledge-base list unavailable: %w", loadErr)
		}

		if errors.Is(err, tenant.ErrNotReady) {
			return fmt.Errorf("no active knowledge base, run 'kbcenter kb use <id>' or 'kbcenter kb create <name>'")
		}

		return err
	}

	return nil
}
