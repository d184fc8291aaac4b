package domain

import "time"

// Role enumerates the access levels a GestiHôtel user can hold.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleManager    Role = "manager"
	RoleReception  Role = "reception"
	RoleTechnician Role = "technician"
	RoleViewer     Role = "viewer"
)

// User is the read view of a signed-in identity held by the directory.
type User struct {
	ID                     string
	Email                  string
	DisplayName            string
	Role                   Role
	EstablishmentIDs       []string
	CurrentEstablishmentID *string
	UpdatedAt              time.Time
}

// HasRole reports whether the user holds any of the supplied roles.
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// CanAccessEstablishment reports whether the establishment id is part of the user's accessible set.
func (u *User) CanAccessEstablishment(establishmentID string) bool {
	if u == nil {
		return false
	}
	if u.Role == RoleSuperAdmin {
		return true
	}
	for _, id := range u.EstablishmentIDs {
		if id == establishmentID {
			return true
		}
	}
	return false
}
