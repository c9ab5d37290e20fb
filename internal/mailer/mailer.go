// Package mailer delivers transactional and newsletter email.
package mailer

import "context"

// Message is a single outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends one message per call. Implementations must be safe for
// concurrent use; dispatch fans out across subscribers.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
