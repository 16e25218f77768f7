package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahakola/kbcenter-go/internal/api"
)

func newTeamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage the active knowledge base's team",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List team members",
		RunE:  runTeamList,
	})

	cmd.AddCommand(newTeamInviteCmd())

	return cmd
}

func newTeamInviteCmd() *cobra.Command {
	var flagRole string

	cmd := &cobra.Command{
		Use:   "invite <email>",
		Short: "Invite a user to the active knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runTeamInvite(args[0], flagRole)
		},
	}

	cmd.Flags().StringVar(&flagRole, "role", "contributor", "role to grant (admin, contributor, viewer)")

	return cmd
}

func runTeamList(_ *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := context.Background()

	session, err := newSession(ctx, loadedCfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := requireActive(session); err != nil {
		return err
	}

	members, err := session.Content.TeamMembers(ctx)
	if err != nil {
		return fmt.Errorf("listing team members: %w", err)
	}

	if flagJSON {
		return printJSON(members)
	}

	rows := make([][]string, 0, len(members))
	for _, m := range members {
		rows = append(rows, []string{m.Email, m.DisplayName, m.Role})
	}

	printTable(os.Stdout, []string{"EMAIL", "NAME", "ROLE"}, rows)

	return nil
}

func runTeamInvite(email, role string) error {
	logger := buildLogger()
	ctx := context.Background()

	session, err := newSession(ctx, loadedCfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := requireActive(session); err != nil {
		return err
	}

	member, err := session.Content.InviteTeamMember(ctx, api.InviteInput{Email: email, Role: role})
	if err != nil {
		return fmt.Errorf("inviting team member: %w", err)
	}

	if flagJSON {
		return printJSON(member)
	}

	statusf("Invited %s as %s.\n", member.Email, member.Role)

	return nil
}
