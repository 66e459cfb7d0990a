package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/assetbook/internal/entity"
)

func TestRoleRegistryGrantRevoke(t *testing.T) {
	r := NewRoleRegistry()
	r.bootstrap(RoleAdmin, admin)

	assert.True(t, r.HasRole(RoleAdmin, admin))
	assert.False(t, r.HasRole(RoleAdmin, userB))

	require.NoError(t, r.GrantRole(admin, RoleAdmin, userB))
	assert.True(t, r.HasRole(RoleAdmin, userB))

	require.NoError(t, r.RevokeRole(admin, RoleAdmin, userB))
	assert.False(t, r.HasRole(RoleAdmin, userB))
}

func TestRoleRegistryIdempotence(t *testing.T) {
	r := NewRoleRegistry()
	r.bootstrap(RoleAdmin, admin)

	// granting an already-held role succeeds without effect
	require.NoError(t, r.GrantRole(admin, RoleAdmin, userB))
	require.NoError(t, r.GrantRole(admin, RoleAdmin, userB))
	assert.True(t, r.HasRole(RoleAdmin, userB))

	// revoking an unheld role succeeds without effect
	require.NoError(t, r.RevokeRole(admin, RoleAdmin, userC))
	assert.False(t, r.HasRole(RoleAdmin, userC))
}

func TestRoleRegistryUnauthorized(t *testing.T) {
	r := NewRoleRegistry()
	r.bootstrap(RoleAdmin, admin)

	err := r.GrantRole(userB, RoleAdmin, userB)
	require.ErrorIs(t, err, entity.ErrUnauthorized)
	assert.False(t, r.HasRole(RoleAdmin, userB))

	err = r.RevokeRole(userB, RoleAdmin, admin)
	require.ErrorIs(t, err, entity.ErrUnauthorized)
	assert.True(t, r.HasRole(RoleAdmin, admin))
}

func TestRoleRegistryArbitraryRoles(t *testing.T) {
	r := NewRoleRegistry()
	r.bootstrap(RoleAdmin, admin)

	require.NoError(t, r.GrantRole(admin, "auditor", userB))
	assert.True(t, r.HasRole("auditor", userB))
	assert.False(t, r.HasRole(RoleAdmin, userB), "holding a custom role grants no admin power")

	err := r.GrantRole(userB, "auditor", userC)
	require.ErrorIs(t, err, entity.ErrUnauthorized)
}
