package rbac

// Role is the single global privilege level assigned to a user.
// Roles form a total order: user < developer < admin.
type Role string

const (
	RoleUser      Role = "user"
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
)

// DefaultRole is what an identity without an assignment row resolves to.
// The defaulting rule lives here and in the resolver only; call sites
// must never re-implement it.
const DefaultRole = RoleUser

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleDeveloper, RoleAdmin:
		return true
	}
	return false
}

// level maps a role onto the privilege order. Unknown values rank lowest.
func (r Role) level() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleDeveloper:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r carries at least the privilege of other.
func (r Role) AtLeast(other Role) bool {
	return r.level() >= other.level()
}

// Parse maps a stored role value onto the closed enum. Unknown values
// fall back to DefaultRole so a corrupted row can never elevate; the
// second return value tells the caller whether the input was recognized.
func Parse(s string) (Role, bool) {
	r := Role(s)
	if r.Valid() {
		return r, true
	}
	return DefaultRole, false
}
