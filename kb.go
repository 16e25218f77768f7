package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahakola/kbcenter-go/internal/kbid"
	"github.com/ahakola/kbcenter-go/internal/tenant"
)

func newKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Manage knowledge bases",
	}

	cmd.AddCommand(newKBListCmd())
	cmd.AddCommand(newKBUseCmd())
	cmd.AddCommand(newKBCreateCmd())

	return cmd
}

func newKBListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accessible knowledge bases",
		RunE:  runKBList,
	}
}

func newKBUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <kb-id>",
		Short: "Switch the active knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE:  runKBUse,
	}
}

func newKBCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <display-name>",
		Short: "Create a new knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE:  runKBCreate,
	}
}

// kbOutput is the JSON schema for `kb list --json`.
type kbOutput struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
}

func runKBList(_ *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := context.Background()

	session, err := newSession(ctx, loadedCfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	if loadErr := session.Resolver.LoadError(); loadErr != nil {
		return fmt.Errorf("listing knowledge bases: %w", loadErr)
	}

	memberships := session.Resolver.Memberships()
	active, _ := session.Resolver.Active()

	if flagJSON {
		out := make([]kbOutput, 0, len(memberships))
		for _, m := range memberships {
			out = append(out, kbOutput{
				ID:          m.ID.String(),
				DisplayName: m.DisplayName,
				Role:        string(m.Role),
				Active:      m.ID.Equal(active),
			})
		}

		return printJSON(out)
	}

	rows := make([][]string, 0, len(memberships))
	for _, m := range memberships {
		marker := ""
		if m.ID.Equal(active) {
			marker = "*"
		}

		rows = append(rows, []string{marker, m.ID.String(), m.DisplayName, string(m.Role)})
	}

	printTable(os.Stdout, []string{"", "ID", "NAME", "ROLE"}, rows)

	return nil
}

func runKBUse(_ *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := context.Background()

	session, err := newSession(ctx, loadedCfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	id := kbid.New(args[0])
	if id.IsZero() {
		return fmt.Errorf("empty knowledge-base id")
	}

	if err := session.Resolver.Select(ctx, id); err != nil {
		return err
	}

	// Select persists unconditionally but convergence corrects an id that
	// is not in the membership list. Report the outcome honestly.
	active, err := session.Resolver.Active()
	if err != nil {
		if errors.Is(err, tenant.ErrNotReady) {
			statusf("Selection saved, but no knowledge base is resolvable yet.\n")
			return nil
		}

		return err
	}

	if !active.Equal(id) {
		statusf("Knowledge base %s is not accessible; now using %s.\n", id, active)
		return nil
	}

	statusf("Now using knowledge base %s.\n", active)

	return nil
}

func runKBCreate(_ *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := context.Background()

	session, err := newSession(ctx, loadedCfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	kb, err := session.Client.CreateKnowledgeBase(ctx, args[0])
	if err != nil {
		return fmt.Errorf("creating knowledge base: %w", err)
	}

	// Make the new knowledge base active right away; the next list refresh
	// will confirm membership.
	if err := session.Resolver.SetMemberships(ctx, append(session.Resolver.Memberships(), tenant.Membership{
		ID:          kb.ID,
		DisplayName: kb.DisplayName,
		Role:        tenant.RoleOwner,
	})); err != nil {
		return err
	}

	if err := session.Resolver.Select(ctx, kb.ID); err != nil {
		return err
	}

	if flagJSON {
		return printJSON(kbOutput{
			ID:          kb.ID.String(),
			DisplayName: kb.DisplayName,
			Role:        string(tenant.RoleOwner),
			Active:      true,
		})
	}

	statusf("Created knowledge base %s (%s), now active.\n", kb.DisplayName, kb.ID)

	return nil
}
