package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/upb/fbenum/enum"
)

// UserRole represents the role of a user within an organization
type UserRole string

var (
	UserRoles  = enum.New[UserRole]("UserRole")
	RoleAdmin  = UserRoles.Declare("ADMIN", "admin")
	RoleMember = UserRoles.Declare("MEMBER", "member")
	RoleViewer = UserRoles.Declare("VIEWER", "viewer")
)

// User represents a user in the system. Roles issued by the identity
// provider that this build does not know decode as GUEST.
type User struct {
	ID         uuid.UUID              `json:"id" db:"id"`
	Email      string                 `json:"email" db:"email" validate:"required,email"`
	CognitoSub string                 `json:"cognito_sub" db:"cognito_sub"` // Cognito user identifier
	OrgID      uuid.UUID              `json:"org_id" db:"org_id"`
	Role       enum.Adapted[UserRole] `json:"role" db:"role" fbenum:"unknown=GUEST" validate:"required"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(email, cognitoSub string, orgID uuid.UUID, role enum.Member[UserRole]) *User {
	now := time.Now()
	return &User{
		ID:         uuid.New(),
		Email:      email,
		CognitoSub: cognitoSub,
		OrgID:      orgID,
		Role:       enum.Adapt(role),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role.Member == RoleAdmin
}

// CanManagePolicies returns true if the user can manage policies
func (u *User) CanManagePolicies() bool {
	return u.Role.Member == RoleAdmin || u.Role.Member == RoleMember
}
