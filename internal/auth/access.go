package auth

// Role is the privilege level attached to a user and embedded in tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is the (user id, role) pair resolved from a verified token.
type Identity struct {
	UserID string
	Role   Role
}

// RequireAuthenticated denies when no identity was resolved for the request.
func RequireAuthenticated(identity *Identity) error {
	if identity == nil || identity.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// RequireOwnerOrRole allows the caller when it holds one of the listed roles
// or owns the resource. The role override is evaluated before ownership so a
// caller with an allowed role can always act on resources it does not own.
func RequireOwnerOrRole(identity Identity, ownerID string, roles ...Role) error {
	for _, role := range roles {
		if identity.Role == role {
			return nil
		}
	}
	if identity.UserID != "" && identity.UserID == ownerID {
		return nil
	}
	return ErrForbidden
}

// RequireRole is used for operations that have no single owner, such as the
// admin user listing.
func RequireRole(identity Identity, roles ...Role) error {
	for _, role := range roles {
		if identity.Role == role {
			return nil
		}
	}
	return ErrForbidden
}
