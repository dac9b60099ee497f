package models

import (
	"strings"

	"github.com/luct/reporting/internal/pkg/apperrors"
)

// Role is one of the four fixed institutional roles
type Role string

const (
	RoleStudent           Role = "student"
	RoleLecturer          Role = "lecturer"
	RolePrincipalLecturer Role = "principal_lecturer"
	RoleProgramLeader     Role = "program_leader"
)

// Roles lists every valid role
var Roles = []Role{RoleStudent, RoleLecturer, RolePrincipalLecturer, RoleProgramLeader}

// ParseRole converts a wire value into a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", apperrors.NewValidationError("Invalid role", map[string]string{
			"role": "role must be one of: student, lecturer, principal_lecturer, program_leader",
		})
	}
	return r, nil
}

// Valid reports whether r is one of the four known roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RolePrincipalLecturer, RoleProgramLeader:
		return true
	}
	return false
}

// Label is the display name used in user-facing messages
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleLecturer:
		return "Lecturer"
	case RolePrincipalLecturer:
		return "Principal Lecturer"
	case RoleProgramLeader:
		return "Program Leader"
	}
	return string(r)
}

// Actor is the authenticated identity attached to a request. It is never mutated.
type Actor struct {
	ID      int64
	Role    Role
	Faculty string
}
