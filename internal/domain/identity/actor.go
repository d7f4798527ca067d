package identity

// Role names granted by the identity provider
const (
	RoleAdmin    = "ADMIN"
	RoleVerified = "VERIFIED"
)

// Actor is the authenticated caller as seen by services. It is built once
// at the API boundary from the validated bearer token and passed explicitly;
// services never reach into an ambient security context.
type Actor struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	Roles     []string
}

// HasRole reports whether the actor holds the given realm role
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the actor holds the ADMIN role
func (a Actor) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

// CanCreateExperiences reports whether the actor may create experiences
func (a Actor) CanCreateExperiences() bool {
	return a.HasRole(RoleAdmin) || a.HasRole(RoleVerified)
}

// IsOwnerOrAdmin is the shared ownership check for mutating operations.
// ADMIN bypasses ownership; otherwise the resource's recorded creator must
// equal the actor's subject exactly (case-sensitive). A resource without a
// recorded owner can only be touched by an admin.
func IsOwnerOrAdmin(resourceCreatedBy string, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	if resourceCreatedBy == "" || actor.Subject == "" {
		return false
	}
	return resourceCreatedBy == actor.Subject
}
