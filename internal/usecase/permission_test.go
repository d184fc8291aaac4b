package usecase

import (
	"testing"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
)

func TestResolvePermissions(t *testing.T) {
	assignee := "tech-1"
	base := domain.Intervention{ID: "int-1", CreatedBy: "creator-1"}

	tests := []struct {
		name         string
		user         *domain.User
		intervention *domain.Intervention
		want         domain.Capabilities
	}{
		{
			name:         "missing user",
			intervention: &base,
			want:         domain.Capabilities{Role: domain.RelationshipNone, Reason: reasonMissingData},
		},
		{
			name: "missing intervention",
			user: &domain.User{ID: "u", Role: domain.RoleSuperAdmin},
			want: domain.Capabilities{Role: domain.RelationshipNone, Reason: reasonMissingData},
		},
		{
			name:         "superadmin",
			user:         &domain.User{ID: "admin", Role: domain.RoleSuperAdmin},
			intervention: &base,
			want:         withRole(fullCapabilities, domain.RelationshipSuperAdmin),
		},
		{
			name:         "manager",
			user:         &domain.User{ID: "mgr", Role: domain.RoleManager},
			intervention: &base,
			want:         withRole(fullCapabilities, domain.RelationshipManager),
		},
		{
			name:         "creator",
			user:         &domain.User{ID: "creator-1", Role: domain.RoleTechnician},
			intervention: &base,
			want: domain.Capabilities{
				CanView: true, CanEdit: true, CanDelete: true, CanChangeStatus: true,
				CanAddPhotos: true, CanAddComments: true, Role: domain.RelationshipCreator,
			},
		},
		{
			name:         "assigned via single assignee",
			user:         &domain.User{ID: assignee, Role: domain.RoleTechnician},
			intervention: &domain.Intervention{ID: "int-2", CreatedBy: "x", AssignedTo: &assignee},
			want: domain.Capabilities{
				CanView: true, CanChangeStatus: true, CanAddPhotos: true, CanAddComments: true,
				Role: domain.RelationshipAssigned,
			},
		},
		{
			name:         "assigned via assignee set",
			user:         &domain.User{ID: "tech-2", Role: domain.RoleTechnician},
			intervention: &domain.Intervention{ID: "int-3", CreatedBy: "x", AssignedToIDs: []string{"tech-9", "tech-2"}},
			want: domain.Capabilities{
				CanView: true, CanChangeStatus: true, CanAddPhotos: true, CanAddComments: true,
				Role: domain.RelationshipAssigned,
			},
		},
		{
			name:         "reception",
			user:         &domain.User{ID: "desk", Role: domain.RoleReception},
			intervention: &base,
			want: domain.Capabilities{
				CanView: true, CanAddPhotos: true, CanAddComments: true, Role: domain.RelationshipReception,
			},
		},
		{
			name:         "default viewer",
			user:         &domain.User{ID: "someone", Role: domain.RoleTechnician},
			intervention: &base,
			want:         viewerCapabilities,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePermissions(tt.user, tt.intervention)
			if got != tt.want {
				t.Fatalf("unexpected capabilities:\n got  %+v\n want %+v", got, tt.want)
			}
		})
	}
}

func TestResolvePermissionsManagerCreatorKeepsManagerRights(t *testing.T) {
	user := &domain.User{ID: "mgr-1", Role: domain.RoleManager}
	intervention := &domain.Intervention{ID: "int-1", CreatedBy: "mgr-1"}

	caps := ResolvePermissions(user, intervention)
	if caps.Role != domain.RelationshipManager {
		t.Fatalf("expected manager relationship, got %s", caps.Role)
	}
	if !caps.CanAssign {
		t.Fatalf("expected manager who created the intervention to keep assign rights")
	}
}

func TestResolvePermissionsReceptionCreatorIsCreator(t *testing.T) {
	user := &domain.User{ID: "desk-1", Role: domain.RoleReception}
	intervention := &domain.Intervention{ID: "int-1", CreatedBy: "desk-1"}

	caps := ResolvePermissions(user, intervention)
	if caps.Role != domain.RelationshipCreator || !caps.CanEdit || caps.CanAssign {
		t.Fatalf("expected creator rights to take precedence over reception, got %+v", caps)
	}
}

func TestCanCreateIntervention(t *testing.T) {
	tests := []struct {
		user *domain.User
		want bool
	}{
		{user: nil, want: false},
		{user: &domain.User{Role: domain.RoleSuperAdmin}, want: true},
		{user: &domain.User{Role: domain.RoleManager}, want: true},
		{user: &domain.User{Role: domain.RoleReception}, want: true},
		{user: &domain.User{Role: domain.RoleTechnician}, want: false},
		{user: &domain.User{Role: domain.RoleViewer}, want: false},
		{user: &domain.User{Role: ""}, want: false},
	}

	for _, tt := range tests {
		if got := CanCreateIntervention(tt.user); got != tt.want {
			t.Fatalf("CanCreateIntervention(%+v) = %v, want %v", tt.user, got, tt.want)
		}
	}
}

func withRole(c domain.Capabilities, r domain.Relationship) domain.Capabilities {
	c.Role = r
	return c
}
