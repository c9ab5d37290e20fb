package domain

import "time"

// ConsentRecord is one entry in the append-only consent ledger. Records are
// never mutated; the user's current consent state is the newest record.
type ConsentRecord struct {
	ID                int64     `json:"id"`
	UserID            string    `json:"user_id"`
	TermsAccepted     bool      `json:"terms_accepted"`
	PrivacyAccepted   bool      `json:"privacy_accepted"`
	NewsletterOptIn   bool      `json:"newsletter_opt_in"`
	TermsVersion      string    `json:"terms_version"`
	PrivacyVersion    string    `json:"privacy_version"`
	NewsletterVersion string    `json:"newsletter_version"`
	CreatedAt         time.Time `json:"created_at"`
}
