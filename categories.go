package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ahakola/kbcenter-go/internal/api"
)

func newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories in the active knowledge base",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE:  runCategoriesList,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE:  runCategoriesCreate,
	})

	return cmd
}

func runCategoriesList(_ *cobra.Command, _ []string) error {
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

	categories, err := session.Content.Categories(ctx)
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}

	if flagJSON {
		return printJSON(categories)
	}

	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c.ID, c.Name, c.Slug, strconv.Itoa(c.ArticleCount)})
	}

	printTable(os.Stdout, []string{"ID", "NAME", "SLUG", "ARTICLES"}, rows)

	return nil
}

func runCategoriesCreate(_ *cobra.Command, args []string) error {
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

	category, err := session.Content.CreateCategory(ctx, api.CategoryInput{Name: args[0]})
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}

	if flagJSON {
		return printJSON(category)
	}

	statusf("Created category %s (%s).\n", category.Name, category.ID)

	return nil
}
