package rbac

// Capability names a single boolean permission derived from a role.
type Capability string

const (
	CapabilityView        Capability = "view"
	CapabilityEdit        Capability = "edit"
	CapabilityDelete      Capability = "delete"
	CapabilityManageUsers Capability = "manage_users"
)

// RequiredRole describes, for UI consumption, the minimum role that
// grants the capability.
func (c Capability) RequiredRole() string {
	switch c {
	case CapabilityEdit:
		return "developer or admin"
	case CapabilityDelete, CapabilityManageUsers:
		return "admin"
	default:
		return "user"
	}
}

// Capabilities is the full permission set derived from a role.
type Capabilities struct {
	CanView        bool `json:"can_view"`
	CanEdit        bool `json:"can_edit"`
	CanDelete      bool `json:"can_delete"`
	CanManageUsers bool `json:"can_manage_users"`
}

// CapabilitiesOf maps a role onto its capability set. Pure and total:
// no error path, no side effects, unknown roles get the user baseline.
func CapabilitiesOf(role Role) Capabilities {
	switch role {
	case RoleAdmin:
		return Capabilities{CanView: true, CanEdit: true, CanDelete: true, CanManageUsers: true}
	case RoleDeveloper:
		return Capabilities{CanView: true, CanEdit: true}
	default:
		return Capabilities{CanView: true}
	}
}

// Has reports whether the set grants the named capability.
func (c Capabilities) Has(cap Capability) bool {
	switch cap {
	case CapabilityView:
		return c.CanView
	case CapabilityEdit:
		return c.CanEdit
	case CapabilityDelete:
		return c.CanDelete
	case CapabilityManageUsers:
		return c.CanManageUsers
	}
	return false
}
