package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/me", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "user-abc-123",
			"displayName": "Test User",
			"email": "test@example.com",
			"login": "tuser"
		}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-abc-123", user.ID)
	assert.Equal(t, "Test User", user.DisplayName)
	// When email is present, it takes priority over login.
	assert.Equal(t, "test@example.com", user.Email)
}

func TestMe_EmailFallbackToLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// SSO accounts sometimes carry only a login name.
		fmt.Fprint(w, `{"id": "user-sso", "displayName": "SSO User", "email": "", "login": "sso.user"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sso.user", user.Email)
}

func TestKnowledgeBases_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/knowledge-bases", r.URL.Path)

		fmt.Fprint(w, `{"value":[
			{"id":"kb1","displayName":"Support","role":"owner"},
			{"id":"kb2","displayName":"Docs","role":"viewer"}
		]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	kbs, err := client.KnowledgeBases(context.Background())
	require.NoError(t, err)
	require.Len(t, kbs, 2)

	// Backend order is preserved: the resolver treats the first element as
	// the fallback selection.
	assert.Equal(t, "kb1", kbs[0].ID.String())
	assert.Equal(t, "Support", kbs[0].DisplayName)
	assert.Equal(t, "owner", kbs[0].Role)
	assert.Equal(t, "kb2", kbs[1].ID.String())
}

func TestKnowledgeBases_EmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"value":[]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	kbs, err := client.KnowledgeBases(context.Background())
	require.NoError(t, err)
	assert.Empty(t, kbs)
}

func TestKnowledgeBases_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":"no access"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.KnowledgeBases(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateKnowledgeBase_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/knowledge-bases", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "My Knowledge Base", body["displayName"])

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"kb-new","displayName":"My Knowledge Base","role":"owner"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	kb, err := client.CreateKnowledgeBase(context.Background(), "My Knowledge Base")
	require.NoError(t, err)
	assert.Equal(t, "kb-new", kb.ID.String())
	assert.Equal(t, "owner", kb.Role)
}

func TestCreateKnowledgeBase_ServerError(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.CreateKnowledgeBase(context.Background(), "My Knowledge Base")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)

	// Creation is never retried client-side: duplicate-creation storms are
	// worse than a failed attempt.
	assert.Equal(t, 1, calls)
}
