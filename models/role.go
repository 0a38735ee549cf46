package models

import "fmt"

// Role is the closed set of account roles. There are exactly two; route
// guards switch over this type rather than comparing raw strings.
type Role string

const (
	RoleFieldAgent        Role = "field_agent"
	RoleCollectionManager Role = "collection_manager"
)

// ParseRole maps the wire value onto the closed Role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleFieldAgent:
		return RoleFieldAgent, nil
	case RoleCollectionManager:
		return RoleCollectionManager, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleFieldAgent, RoleCollectionManager:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
