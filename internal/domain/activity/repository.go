package activity

import "context"

// Repository stores daily activity records.
type Repository interface {
	// Increment creates or updates the (operator, day) record in one atomic
	// step and returns the record after the change.
	Increment(ctx context.Context, inc Increment) (*DailyActivity, error)
	List(ctx context.Context, filter Filter) ([]*DailyActivity, error)
}
