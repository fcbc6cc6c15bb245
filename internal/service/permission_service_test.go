package service

import (
	"context"
	"testing"

	"agora/internal/listquery"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultPage() listquery.Page { return listquery.Page{Limit: listquery.DefaultLimit} }

func TestDefaultGroups(t *testing.T) {
	groups := DefaultGroups()
	require.Len(t, groups, 3)
	assert.Equal(t, []string{models.PermView}, groups["Viewers"])
	assert.Contains(t, groups["Admins"], models.PermDelete)
	assert.NotContains(t, groups["Editors"], models.PermDelete)
}

func TestParseGroupDefinitions_RejectsUnknownPermission(t *testing.T) {
	_, err := ParseGroupDefinitions([]byte("groups:\n  Odd:\n    - can_fly\n"))
	assert.Error(t, err)

	_, err = ParseGroupDefinitions([]byte("groups: [oops"))
	assert.Error(t, err)
}

func TestPermissionService(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	groups := repository.NewGroupRepository(db)
	users := repository.NewUserRepository(db, nil)
	svc := NewPermissionService(users, groups)
	require.NoError(t, svc.SyncGroups(ctx, DefaultGroups()))

	viewer := testutil.CreateUser(t, db, "viewer")
	editor := testutil.CreateUser(t, db, "editor")
	admin := testutil.CreateUser(t, db, "admin")
	require.NoError(t, groups.AddMember(ctx, "Viewers", viewer.ID))
	require.NoError(t, groups.AddMember(ctx, "Editors", editor.ID))
	require.NoError(t, users.SetAdmin(ctx, admin.ID, true))

	tests := []struct {
		user uint
		code string
		want bool
	}{
		{viewer.ID, models.PermView, true},
		{viewer.ID, models.PermCreate, false},
		{editor.ID, models.PermEdit, true},
		{editor.ID, models.PermDelete, false},
		{admin.ID, models.PermDelete, true},
	}
	for _, tt := range tests {
		ok, err := svc.Allowed(ctx, tt.user, tt.code)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "user %d %s", tt.user, tt.code)
	}

	_, err := svc.Allowed(ctx, 0, models.PermView)
	assertAppCode(t, err, models.CodeAuthenticationRequired)
}

func TestHasRole(t *testing.T) {
	users := newUserRepoStub(
		&models.User{ID: 1, Role: models.RoleMember},
		&models.User{ID: 2, Role: models.RoleLibrarian},
		&models.User{ID: 3, Role: models.RoleMember, IsAdmin: true},
	)
	svc := NewPermissionService(users, nil)
	ctx := context.Background()

	ok, err := svc.HasRole(ctx, 1, models.RoleMember)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasRole(ctx, 1, models.RoleLibrarian)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.HasRole(ctx, 2, models.RoleLibrarian)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasRole(ctx, 3, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok, "the admin flag satisfies the admin role")

	_, err = svc.HasRole(ctx, 1, models.UserRole("wizard"))
	assertAppCode(t, err, models.CodeNotFound)
}
