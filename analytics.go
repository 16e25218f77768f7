package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newAnalyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show usage analytics for the active knowledge base",
		RunE:  runAnalytics,
	}
}

func runAnalytics(_ *cobra.Command, _ []string) error {
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

	summary, err := session.Content.Analytics(ctx)
	if err != nil {
		return fmt.Errorf("fetching analytics: %w", err)
	}

	if flagJSON {
		return printJSON(summary)
	}

	fmt.Printf("Knowledge base:  %s\n", summary.KBID)
	fmt.Printf("Period:          %s to %s\n", formatTime(summary.PeriodStart), formatTime(summary.PeriodEnd))
	fmt.Printf("Total views:     %d\n", summary.TotalViews)
	fmt.Printf("Unique visitors: %d\n", summary.UniqueVisitor)

	if summary.TopArticleID != "" {
		fmt.Printf("Top article:     %s\n", summary.TopArticleID)
	}

	return nil
}
