package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ahakola/kbcenter-go/internal/kbid"
)

// userResponse mirrors the backend /api/me JSON response.
// Unexported; callers use User via toUser() normalization.
type userResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	// Login is a fallback when email is empty (SSO accounts sometimes
	// carry only a login name).
	Login string `json:"login"`
}

// toUser normalizes a backend user response into our User type.
func (u *userResponse) toUser() User {
	email := u.Email
	if email == "" {
		email = u.Login
	}

	return User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       email,
	}
}

// kbResponse mirrors the backend knowledge-base JSON representation.
// Unexported; callers use KnowledgeBase via toKnowledgeBase().
type kbResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// kbListResponse wraps the value array from GET /api/knowledge-bases.
type kbListResponse struct {
	Value []kbResponse `json:"value"`
}

func (k *kbResponse) toKnowledgeBase() KnowledgeBase {
	return KnowledgeBase{
		ID:          kbid.New(k.ID),
		DisplayName: k.DisplayName,
		Role:        k.Role,
	}
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	c.logger.Info("fetching authenticated user profile")

	resp, err := c.Do(ctx, http.MethodGet, "/api/me", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var ur userResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, fmt.Errorf("api: decoding user response: %w", err)
	}

	user := ur.toUser()

	c.logger.Debug("fetched user profile",
		slog.String("id", user.ID),
		slog.String("display_name", user.DisplayName),
	)

	return &user, nil
}

// KnowledgeBases returns all knowledge bases accessible to the
// authenticated user, in backend order. The order is significant: the
// tenant resolver falls back to the first element when no valid selection
// is persisted.
func (c *Client) KnowledgeBases(ctx context.Context) ([]KnowledgeBase, error) {
	c.logger.Info("listing accessible knowledge bases")

	resp, err := c.Do(ctx, http.MethodGet, "/api/knowledge-bases", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var klr kbListResponse
	if err := json.NewDecoder(resp.Body).Decode(&klr); err != nil {
		return nil, fmt.Errorf("api: decoding knowledge-base list: %w", err)
	}

	kbs := make([]KnowledgeBase, 0, len(klr.Value))
	for i := range klr.Value {
		kbs = append(kbs, klr.Value[i].toKnowledgeBase())
	}

	c.logger.Info("listed knowledge bases",
		slog.Int("count", len(kbs)),
	)

	return kbs, nil
}

// CreateKnowledgeBase creates a new knowledge base with the given display
// name and returns the created record. An Idempotency-Key header is sent so
// a retried request (new process, same key source) cannot create duplicates
// server-side; within one process the caller guarantees a single attempt.
func (c *Client) CreateKnowledgeBase(ctx context.Context, displayName string) (*KnowledgeBase, error) {
	c.logger.Info("creating knowledge base",
		slog.String("display_name", displayName),
	)

	payload, err := json.Marshal(map[string]string{"displayName": displayName})
	if err != nil {
		return nil, fmt.Errorf("api: encoding create request: %w", err)
	}

	headers := http.Header{}
	headers.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.Do(ctx, http.MethodPost, "/api/knowledge-bases", bytes.NewReader(payload), headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var kr kbResponse
	if err := json.NewDecoder(resp.Body).Decode(&kr); err != nil {
		return nil, fmt.Errorf("api: decoding created knowledge base: %w", err)
	}

	kb := kr.toKnowledgeBase()

	c.logger.Info("created knowledge base",
		slog.String("id", kb.ID.String()),
		slog.String("display_name", kb.DisplayName),
	)

	return &kb, nil
}
