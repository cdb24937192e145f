package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-warroom/pkg/gamebackend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRolesTest(t *testing.T, handler http.Handler) *RoleService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &RoleService{
		backend: gamebackend.NewClientWithBaseURL(server.URL),
	}
}

func TestResolve_FetchesFromBackend(t *testing.T) {
	var gotAuth string
	service := newRolesTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/alliances/my-roles", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"roles": [
				{"alliance_id": 10, "is_owner": true, "can_manage": true},
				{"alliance_id": 11, "is_owner": false, "can_manage": true}
			],
			"game_account_ids": [100, 101]
		}`))
	}))

	resolved, err := service.Resolve(context.Background(), "user-1", "bearer-token")
	require.NoError(t, err)

	assert.Equal(t, "Bearer bearer-token", gotAuth)
	assert.Len(t, resolved.Roles, 2)
	assert.Equal(t, []int64{100, 101}, resolved.GameAccountIDs)
	assert.False(t, resolved.FetchedAt.IsZero())
}

func TestResolve_BackendError(t *testing.T) {
	service := newRolesTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := service.Resolve(context.Background(), "user-1", "bearer-token")
	assert.Error(t, err)
}

func TestResolvedRolesHelpers(t *testing.T) {
	resolved := &ResolvedRoles{
		Roles: []gamebackend.AllianceRoles{
			{AllianceID: 10, IsOwner: true, CanManage: true},
			{AllianceID: 11, IsOwner: false, CanManage: true},
			{AllianceID: 12, IsOwner: false, CanManage: false},
		},
		GameAccountIDs: []int64{100, 101},
	}

	assert.True(t, resolved.IsOwner(10))
	assert.False(t, resolved.IsOwner(11))
	assert.True(t, resolved.CanManage(10))
	assert.True(t, resolved.CanManage(11))
	assert.False(t, resolved.CanManage(12))

	// Unknown alliance yields no permissions.
	assert.False(t, resolved.IsOwner(99))
	assert.False(t, resolved.CanManage(99))

	assert.True(t, resolved.IsMine(100))
	assert.False(t, resolved.IsMine(999))
}
