package usecase

import (
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
)

const reasonMissingData = "missing data"

type permissionRule struct {
	relationship domain.Relationship
	matches      func(user *domain.User, intervention *domain.Intervention) bool
	grant        domain.Capabilities
}

var fullCapabilities = domain.Capabilities{
	CanView:         true,
	CanEdit:         true,
	CanDelete:       true,
	CanChangeStatus: true,
	CanAssign:       true,
	CanAddPhotos:    true,
	CanAddComments:  true,
}

// permissionRules is evaluated top to bottom; the first match is terminal.
var permissionRules = []permissionRule{
	{
		relationship: domain.RelationshipSuperAdmin,
		matches: func(u *domain.User, _ *domain.Intervention) bool {
			return u.Role == domain.RoleSuperAdmin
		},
		grant: fullCapabilities,
	},
	{
		relationship: domain.RelationshipManager,
		matches: func(u *domain.User, _ *domain.Intervention) bool {
			return u.Role == domain.RoleManager
		},
		grant: fullCapabilities,
	},
	{
		relationship: domain.RelationshipCreator,
		matches: func(u *domain.User, i *domain.Intervention) bool {
			return i.CreatedBy != "" && i.CreatedBy == u.ID
		},
		grant: domain.Capabilities{
			CanView:         true,
			CanEdit:         true,
			CanDelete:       true,
			CanChangeStatus: true,
			CanAddPhotos:    true,
			CanAddComments:  true,
		},
	},
	{
		relationship: domain.RelationshipAssigned,
		matches: func(u *domain.User, i *domain.Intervention) bool {
			return i.IsAssignedTo(u.ID)
		},
		grant: domain.Capabilities{
			CanView:         true,
			CanChangeStatus: true,
			CanAddPhotos:    true,
			CanAddComments:  true,
		},
	},
	{
		relationship: domain.RelationshipReception,
		matches: func(u *domain.User, _ *domain.Intervention) bool {
			return u.Role == domain.RoleReception
		},
		grant: domain.Capabilities{
			CanView:        true,
			CanAddPhotos:   true,
			CanAddComments: true,
		},
	},
}

var viewerCapabilities = domain.Capabilities{
	CanView:        true,
	CanAddComments: true,
	Role:           domain.RelationshipViewer,
}

// ResolvePermissions computes the capability set of a user on an intervention.
// It never fails: absent input yields the most restrictive set.
func ResolvePermissions(user *domain.User, intervention *domain.Intervention) domain.Capabilities {
	if user == nil || intervention == nil || user.ID == "" {
		return domain.Capabilities{Role: domain.RelationshipNone, Reason: reasonMissingData}
	}

	for _, rule := range permissionRules {
		if rule.matches(user, intervention) {
			caps := rule.grant
			caps.Role = rule.relationship
			return caps
		}
	}

	return viewerCapabilities
}

// CanCreateIntervention reports whether the user may open new interventions.
func CanCreateIntervention(user *domain.User) bool {
	return user.HasRole(domain.RoleSuperAdmin, domain.RoleManager, domain.RoleReception)
}
