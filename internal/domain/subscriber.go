package domain

import "time"

// Subscriber is one email address in the newsletter lifecycle. The states
// per email are None (no row), Pending (row, inactive, never confirmed),
// Active, and Inactive (unsubscribed after confirming).
type Subscriber struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	ConfirmToken     string     `json:"-"`
	UnsubscribeToken string     `json:"-"`
	IsActive         bool       `json:"is_active"`
	SubscribedAt     time.Time  `json:"subscribed_at"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
}

// DispatchResult is the per-batch accounting of a newsletter fan-out.
// TotalCount is the size of the subscriber snapshot at batch start; one
// recipient's failure never fails the batch.
type DispatchResult struct {
	SuccessCount int `json:"success_count"`
	TotalCount   int `json:"total_count"`
}
