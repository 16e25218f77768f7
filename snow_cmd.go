package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahakola/kbcenter-go/internal/snow"
)

func newSnowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snow",
		Short: "ServiceNow integration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Push the active knowledge base's articles to ServiceNow",
		RunE:  runSnowSync,
	})

	return cmd
}

func runSnowSync(_ *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := context.Background()

	sn := loadedCfg.ServiceNow
	if sn.InstanceURL == "" {
		return fmt.Errorf("servicenow instance_url is not configured")
	}

	password := os.Getenv(sn.PasswordEnv)
	if password == "" {
		return fmt.Errorf("servicenow password not found in $%s", sn.PasswordEnv)
	}

	session, err := newSession(ctx, loadedCfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := requireActive(session); err != nil {
		return err
	}

	articles, err := session.Content.Articles(ctx)
	if err != nil {
		return fmt.Errorf("listing articles: %w", err)
	}

	client := snow.NewClient(sn.InstanceURL, sn.Username, password, defaultHTTPClient(), logger)
	syncer := snow.NewSyncer(client, sn.Workers, logger)

	report, err := syncer.SyncArticles(ctx, articles)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(report)
	}

	statusf("Pushed %d article(s), %d failed.\n", report.Pushed, len(report.Errors))

	for _, fail := range report.Errors {
		fmt.Fprintf(os.Stderr, "  %s (%s): %v\n", fail.Title, fail.ArticleID, fail.Err)
	}

	if len(report.Errors) > 0 {
		return fmt.Errorf("%d article(s) failed to sync", len(report.Errors))
	}

	return nil
}
