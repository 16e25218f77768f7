package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahakola/kbcenter-go/internal/kbid"
)

func TestScopeURL(t *testing.T) {
	store := &memStore{id: kbid.New("kb1")}

	r, err := New(store, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, r.SetMemberships(context.Background(), members("kb1")))

	tests := []struct {
		name string
		path string
		want string
	}{
		{"bare path", "/api/articles", "/api/articles?kbId=kb1"},
		{"existing query preserved", "/api/articles?sort=asc", "/api/articles?sort=asc&kbId=kb1"},
		{"multiple params", "/api/articles?sort=asc&limit=10", "/api/articles?sort=asc&limit=10&kbId=kb1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ScopeURL(tt.path))
		})
	}
}

func TestScopeURL_EscapesID(t *testing.T) {
	store := &memStore{id: kbid.New("kb/1 x")}

	r, err := New(store, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, r.SetMemberships(context.Background(), []Membership{
		{ID: kbid.New("kb/1 x"), DisplayName: "odd", Role: RoleOwner},
	}))

	assert.Equal(t, "/api/articles?kbId=kb%2F1+x", r.ScopeURL("/api/articles"))
}

func TestScopeURL_NoActiveTenant(t *testing.T) {
	r, err := New(&memStore{}, nil, nil, nil)
	require.NoError(t, err)

	// Not ready: the path passes through unmodified.
	assert.Equal(t, "/api/articles", r.ScopeURL("/api/articles"))
}
