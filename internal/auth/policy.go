package auth

import "strings"

// AdminPolicy decides whether an email belongs to an administrator. The role
// is recomputed at every login so allow-list changes take effect on the next
// sign-in without touching the database by hand.
type AdminPolicy interface {
	IsAdmin(email string) bool
}

type allowListPolicy struct {
	emails map[string]struct{}
}

// NewAllowListPolicy builds a policy from a fixed set of admin emails.
// Matching is case-insensitive.
func NewAllowListPolicy(emails []string) AdminPolicy {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return &allowListPolicy{emails: set}
}

func (p *allowListPolicy) IsAdmin(email string) bool {
	_, ok := p.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
