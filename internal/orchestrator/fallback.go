package orchestrator

import (
	"fmt"

	"github.com/sells-group/research-engine/internal/model"
	"github.com/sells-group/research-engine/internal/provider"
)

// configRequiredText fills the slot of a selected provider whose credential
// is missing or malformed. Static wording; no call was attempted.
func configRequiredText(name string) string {
	spec := provider.Specs[name]
	return fmt.Sprintf(
		"%s configuration required: set a valid %s API key (keys start with %q) to enable this provider. No research was attempted.",
		spec.DisplayName, spec.DisplayName, spec.KeyPrefix,
	)
}

// failureText fills the slot of a dispatched provider whose pipeline ended
// in a terminal failure. Wording is distinct from the configuration case so
// callers can tell a broken key from a broken call.
func failureText(name string, kind model.ErrorKind) string {
	display := provider.Specs[name].DisplayName
	if display == "" {
		display = name
	}
	switch kind {
	case model.ErrorKindAuth:
		return fmt.Sprintf("%s rejected the configured credential. Research from this provider is unavailable until the API key is replaced.", display)
	case model.ErrorKindRateLimited:
		return fmt.Sprintf("%s declined the request due to rate limiting. Research from this provider is unavailable right now; try again later.", display)
	case model.ErrorKindTimeout:
		return fmt.Sprintf("%s did not respond within its time budget after multiple attempts. Research from this provider is unavailable for this request.", display)
	case model.ErrorKindServerUnavailable:
		return fmt.Sprintf("%s is temporarily unavailable and retries were exhausted. Research from this provider is unavailable for this request.", display)
	default:
		return fmt.Sprintf("%s could not complete this research request. Research from this provider is unavailable for this request.", display)
	}
}
