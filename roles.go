package identity

// UserRole is the user's role
type UserRole = string

const (
	// RoleViewer has read-only access
	RoleViewer UserRole = "viewer"
	// RoleManager can manage records in their own area
	RoleManager UserRole = "manager"
	// RoleAdmin has full access, including user administration
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleViewer, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// RoleAtLeast checks if role meets the minimum required level
func RoleAtLeast(r, minRole UserRole) bool {
	hierarchy := map[UserRole]int{
		RoleViewer:  0,
		RoleManager: 1,
		RoleAdmin:   2,
	}

	current, ok := hierarchy[r]
	if !ok {
		return false
	}

	min, ok := hierarchy[minRole]
	if !ok {
		return false
	}

	return current >= min
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleViewer,
		RoleManager,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}
