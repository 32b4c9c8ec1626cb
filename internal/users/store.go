package users

import "context"

// Store describes persistence operations required by the user service.
// Emails are stored lowercase; uniqueness is enforced by the store at write
// time, so concurrent registrations race on the constraint, not on a
// pre-check.
type Store interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*User, int, error)
}
