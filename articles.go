package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahakola/kbcenter-go/internal/api"
)

func newArticlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "Manage articles in the active knowledge base",
	}

	cmd.AddCommand(newArticlesListCmd())
	cmd.AddCommand(newArticlesCreateCmd())
	cmd.AddCommand(newArticlesUpdateCmd())
	cmd.AddCommand(newArticlesDeleteCmd())

	return cmd
}

func newArticlesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List articles",
		RunE:  runArticlesList,
	}
}

func newArticlesCreateCmd() *cobra.Command {
	var (
		flagBody     string
		flagCategory string
		flagStatus   string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runArticlesCreate(args[0], flagBody, flagCategory, flagStatus)
		},
	}

	cmd.Flags().StringVar(&flagBody, "body", "", "article body text")
	cmd.Flags().StringVar(&flagCategory, "category", "", "category id")
	cmd.Flags().StringVar(&flagStatus, "status", "draft", "article status (draft or published)")

	return cmd
}

func newArticlesUpdateCmd() *cobra.Command {
	var (
		flagTitle  string
		flagBody   string
		flagStatus string
	)

	cmd := &cobra.Command{
		Use:   "update <article-id>",
		Short: "Update an article (only the given fields change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runArticlesUpdate(args[0], api.ArticleInput{
				Title:  flagTitle,
				Body:   flagBody,
				Status: flagStatus,
			})
		},
	}

	cmd.Flags().StringVar(&flagTitle, "title", "", "new title")
	cmd.Flags().StringVar(&flagBody, "body", "", "new body text")
	cmd.Flags().StringVar(&flagStatus, "status", "", "new status")

	return cmd
}

func newArticlesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <article-id>",
		Short: "Delete an article",
		Args:  cobra.ExactArgs(1),
		RunE:  runArticlesDelete,
	}
}

func runArticlesList(_ *cobra.Command, _ []string) error {
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

	articles, err := session.Content.Articles(ctx)
	if err != nil {
		return fmt.Errorf("listing articles: %w", err)
	}

	if flagJSON {
		return printJSON(articles)
	}

	rows := make([][]string, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, []string{a.ID, a.Title, a.Status, formatTime(a.UpdatedAt)})
	}

	printTable(os.Stdout, []string{"ID", "TITLE", "STATUS", "UPDATED"}, rows)

	return nil
}

func runArticlesCreate(title, body, categoryID, status string) error {
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

	article, err := session.Content.CreateArticle(ctx, api.ArticleInput{
		Title:      title,
		Body:       body,
		CategoryID: categoryID,
		Status:     status,
	})
	if err != nil {
		return fmt.Errorf("creating article: %w", err)
	}

	if flagJSON {
		return printJSON(article)
	}

	statusf("Created article %s (%s).\n", article.Title, article.ID)

	return nil
}

func runArticlesUpdate(articleID string, input api.ArticleInput) error {
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

	article, err := session.Content.UpdateArticle(ctx, articleID, input)
	if err != nil {
		return fmt.Errorf("updating article: %w", err)
	}

	if flagJSON {
		return printJSON(article)
	}

	statusf("Updated article %s.\n", article.ID)

	return nil
}

func runArticlesDelete(_ *cobra.Command, args []string) error {
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

	if err := session.Content.DeleteArticle(ctx, args[0]); err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}

	statusf("Deleted article %s.\n", args[0])

	return nil
}
