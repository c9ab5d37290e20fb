package consent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
)

func TestEvaluate(t *testing.T) {
	current := Versions{Terms: "2.0", Privacy: "1.5", Newsletter: "1.0"}

	record := func(mutate func(*domain.ConsentRecord)) *domain.ConsentRecord {
		r := &domain.ConsentRecord{
			TermsAccepted:     true,
			PrivacyAccepted:   true,
			NewsletterOptIn:   true,
			TermsVersion:      "2.0",
			PrivacyVersion:    "1.5",
			NewsletterVersion: "1.0",
		}
		if mutate != nil {
			mutate(r)
		}
		return r
	}

	tests := []struct {
		name     string
		latest   *domain.ConsentRecord
		required bool
	}{
		{"no record", nil, true},
		{"fully current", record(nil), false},
		{"terms not accepted", record(func(r *domain.ConsentRecord) { r.TermsAccepted = false }), true},
		{"privacy not accepted", record(func(r *domain.ConsentRecord) { r.PrivacyAccepted = false }), true},
		{"stale terms version", record(func(r *domain.ConsentRecord) { r.TermsVersion = "1.0" }), true},
		{"stale privacy version", record(func(r *domain.ConsentRecord) { r.PrivacyVersion = "1.0" }), true},
		{"newsletter declined", record(func(r *domain.ConsentRecord) { r.NewsletterOptIn = false }), false},
		{"stale newsletter version", record(func(r *domain.ConsentRecord) { r.NewsletterVersion = "0.9" }), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := Evaluate(tt.latest, current)
			assert.Equal(t, tt.required, status.Required)
			assert.Equal(t, current, status.CurrentVersions)
			assert.Equal(t, tt.latest, status.Latest)
		})
	}
}
