package enums

import "fmt"

// StaffRole represents a staff member's permission level.
type StaffRole string

const (
	StaffRoleManager   StaffRole = "Manager"
	StaffRoleClerk     StaffRole = "Clerk"
	StaffRoleLibrarian StaffRole = "Librarian"
)

var validStaffRoles = []StaffRole{
	StaffRoleManager,
	StaffRoleClerk,
	StaffRoleLibrarian,
}

// String implements fmt.Stringer.
func (r StaffRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known StaffRole.
func (r StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseStaffRole converts raw input into a StaffRole.
func ParseStaffRole(value string) (StaffRole, error) {
	for _, candidate := range validStaffRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff role %q", value)
}
