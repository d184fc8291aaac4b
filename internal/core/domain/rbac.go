package domain

// Relationship names the rule that produced a capability set.
type Relationship string

const (
	RelationshipNone       Relationship = "none"
	RelationshipSuperAdmin Relationship = "superadmin"
	RelationshipManager    Relationship = "manager"
	RelationshipCreator    Relationship = "creator"
	RelationshipAssigned   Relationship = "assigned"
	RelationshipReception  Relationship = "reception"
	RelationshipViewer     Relationship = "viewer"
)

// Capabilities is the computed permission set for one user and intervention pair.
type Capabilities struct {
	CanView         bool         `json:"canView"`
	CanEdit         bool         `json:"canEdit"`
	CanDelete       bool         `json:"canDelete"`
	CanChangeStatus bool         `json:"canChangeStatus"`
	CanAssign       bool         `json:"canAssign"`
	CanAddPhotos    bool         `json:"canAddPhotos"`
	CanAddComments  bool         `json:"canAddComments"`
	Role            Relationship `json:"role"`
	Reason          string       `json:"reason,omitempty"`
}
