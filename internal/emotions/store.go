package emotions

import "context"

// ListFilter narrows a listing to a single owner. The zero value means
// no restriction.
type ListFilter struct {
	UserID string
}

// Store persists emotion logs. Implementations return ErrNotFound for
// lookups of absent ids. List returns the slice for the given window
// plus the total row count under the same filter.
type Store interface {
	Create(ctx context.Context, log *EmotionLog) error
	Find(ctx context.Context, id string) (*EmotionLog, error)
	Update(ctx context.Context, log *EmotionLog) error
	List(ctx context.Context, filter ListFilter, offset, limit int) ([]*EmotionLog, int, error)
}
