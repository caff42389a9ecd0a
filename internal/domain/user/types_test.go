//go:build unit

package user_test

import (
	"testing"

	"smartpark/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole(t *testing.T) {
	role, err := user.NewRole("operator")
	require.NoError(t, err)
	assert.True(t, role.IsStaff())

	_, err = user.NewRole("viewer")
	assert.ErrorIs(t, err, user.ErrInvalidRole)

	assert.False(t, user.RoleCustomer.IsStaff())
}

func TestActorCanAccess(t *testing.T) {
	owner := uuid.New()

	assert.True(t, user.Actor{ID: owner, Role: user.RoleCustomer}.CanAccess(owner))
	assert.False(t, user.Actor{ID: uuid.New(), Role: user.RoleCustomer}.CanAccess(owner))
	assert.True(t, user.Actor{ID: uuid.New(), Role: user.RoleOperator}.CanAccess(owner))
}
