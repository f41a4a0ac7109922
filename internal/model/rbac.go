package model

import (
	"fmt"
)

// Role is the privilege level of a user.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleManager       Role = "MANAGER"
	RoleEmployee      Role = "EMPLOYEE"
)

// roleRank orders roles by privilege. Checks always go through named
// roles; the declaration order of the constants carries no meaning.
var roleRank = map[Role]int{
	RoleEmployee:      1,
	RoleManager:       2,
	RoleAdministrator: 3,
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	return rank >= roleRank[min]
}

func (r Role) String() string {
	return string(r)
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Roles lists every role, highest privilege first.
func Roles() []Role {
	return []Role{RoleAdministrator, RoleManager, RoleEmployee}
}
