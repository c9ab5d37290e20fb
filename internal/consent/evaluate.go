package consent

import "github.com/ynl8015/LinguaLetter-sub000/internal/domain"

// Versions are the currently published document versions.
type Versions struct {
	Terms      string `json:"terms"`
	Privacy    string `json:"privacy"`
	Newsletter string `json:"newsletter"`
}

// Status is the outcome of evaluating a user's latest consent record against
// the current document versions.
type Status struct {
	Required        bool                  `json:"consent_required"`
	CurrentVersions Versions              `json:"current_versions"`
	Latest          *domain.ConsentRecord `json:"latest,omitempty"`
}

// Evaluate decides whether the user must re-consent. Consent is required when
// no record exists, when either mandatory agreement is missing, or when the
// agreed terms or privacy version lags the current one. The newsletter
// opt-in never forces re-consent on its own.
func Evaluate(latest *domain.ConsentRecord, current Versions) Status {
	status := Status{CurrentVersions: current, Latest: latest}

	switch {
	case latest == nil:
		status.Required = true
	case !latest.TermsAccepted || !latest.PrivacyAccepted:
		status.Required = true
	case latest.TermsVersion != current.Terms:
		status.Required = true
	case latest.PrivacyVersion != current.Privacy:
		status.Required = true
	}
	return status
}
