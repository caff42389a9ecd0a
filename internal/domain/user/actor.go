package user

import "github.com/google/uuid"

// Actor is the authenticated caller of a use case.
type Actor struct {
	ID    uuid.UUID
	Role  Role
	Email string
}

// CanAccess reports whether the actor may act on a resource owned by ownerID.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.ID == ownerID || a.Role.IsStaff()
}
