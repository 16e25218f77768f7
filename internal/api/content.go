package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ArticleInput is the payload for article create/update calls. Zero-value
// fields are omitted so partial updates do not clobber existing values.
type ArticleInput struct {
	CategoryID string `json:"categoryId,omitempty"`
	Title      string `json:"title,omitempty"`
	Slug       string `json:"slug,omitempty"`
	Body       string `json:"body,omitempty"`
	Status     string `json:"status,omitempty"`
}

// CategoryInput is the payload for category creation.
type CategoryInput struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// InviteInput is the payload for team member invitations.
type InviteInput struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Get performs a GET against an already-scoped path and returns the raw
// response body. The tenant-scoped data accessors cache these bytes keyed
// by the exact path, so the path string must come from the resolver's
// ScopeURL to keep cache keys and request scope aligned.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: reading response body: %w", err)
	}

	return body, nil
}

// CreateArticle creates an article via an already-scoped path.
func (c *Client) CreateArticle(ctx context.Context, path string, input ArticleInput) (*Article, error) {
	var created Article
	if err := c.postJSON(ctx, path, input, &created); err != nil {
		return nil, err
	}

	c.logger.Info("created article",
		slog.String("id", created.ID),
		slog.String("title", created.Title),
	)

	return &created, nil
}

// UpdateArticle applies a partial update to an article via an
// already-scoped path (the path addresses the article id).
func (c *Client) UpdateArticle(ctx context.Context, path string, input ArticleInput) (*Article, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("api: encoding article update: %w", err)
	}

	resp, err := c.Do(ctx, http.MethodPatch, path, bytes.NewReader(payload), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var updated Article
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, fmt.Errorf("api: decoding updated article: %w", err)
	}

	return &updated, nil
}

// DeleteArticle deletes an article via an already-scoped path.
func (c *Client) DeleteArticle(ctx context.Context, path string) error {
	resp, err := c.Do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()

	return nil
}

// CreateCategory creates a category via an already-scoped path.
func (c *Client) CreateCategory(ctx context.Context, path string, input CategoryInput) (*Category, error) {
	var created Category
	if err := c.postJSON(ctx, path, input, &created); err != nil {
		return nil, err
	}

	c.logger.Info("created category",
		slog.String("id", created.ID),
		slog.String("name", created.Name),
	)

	return &created, nil
}

// InviteTeamMember invites a user via an already-scoped path.
func (c *Client) InviteTeamMember(ctx context.Context, path string, input InviteInput) (*TeamMember, error) {
	var invited TeamMember
	if err := c.postJSON(ctx, path, input, &invited); err != nil {
		return nil, err
	}

	c.logger.Info("invited team member",
		slog.String("email", invited.Email),
		slog.String("role", invited.Role),
	)

	return &invited, nil
}

// postJSON marshals input, POSTs it to path, and decodes the response into
// out.
func (c *Client) postJSON(ctx context.Context, path string, input, out any) error {
	payload, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("api: encoding request: %w", err)
	}

	resp, err := c.Do(ctx, http.MethodPost, path, bytes.NewReader(payload), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decoding response: %w", err)
	}

	return nil
}
