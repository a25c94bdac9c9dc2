package domain

import "time"

// Role is the single role hierarchy for all accounts. Level 3 ("user") is
// the lowest-privileged role and is subject to the one-time stage edit.
type Role string

const (
	RoleUser        Role = "user"
	RoleApprover    Role = "approver"
	RoleAdmin       Role = "admin"
	RoleMasterAdmin Role = "master_admin"
)

var roleRank = map[Role]int{
	RoleUser:        1,
	RoleApprover:    2,
	RoleAdmin:       3,
	RoleMasterAdmin: 4,
}

// AtLeast reports whether r sits at or above required in the hierarchy.
func (r Role) AtLeast(required Role) bool {
	return roleRank[r] >= roleRank[required]
}

// CanApprove reports whether the role may approve or unapprove feature
// tickets.
func (r Role) CanApprove() bool {
	return r == RoleAdmin || r == RoleMasterAdmin || r == RoleApprover
}

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is an authenticated account profile.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
