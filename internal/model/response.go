package model

import "time"

// ErrorKind classifies a provider failure. The retry policy keys off it.
type ErrorKind string

const (
	ErrorKindAuth              ErrorKind = "auth"
	ErrorKindRateLimited       ErrorKind = "rate_limited"
	ErrorKindServerUnavailable ErrorKind = "server_unavailable"
	ErrorKindTimeout           ErrorKind = "timeout"
	ErrorKindOther             ErrorKind = "other"
)

// ProviderResult is the outcome of a single provider call. Exactly one of
// Text and ErrKind is set.
type ProviderResult struct {
	Provider     string        `json:"provider"`
	Text         string        `json:"text,omitempty"`
	ErrKind      ErrorKind     `json:"error_kind,omitempty"`
	ErrDetail    string        `json:"error_detail,omitempty"`
	Latency      time.Duration `json:"latency"`
	InputTokens  int64         `json:"input_tokens,omitempty"`
	OutputTokens int64         `json:"output_tokens,omitempty"`
}

// Failed reports whether the call ended in an error.
func (r ProviderResult) Failed() bool { return r.ErrKind != "" }

// ResponseMeta carries aggregate-level metadata.
type ResponseMeta struct {
	ProcessingTime     time.Duration `json:"processing_time"`
	ProvidersAttempted int           `json:"providers_attempted"`
	Confidence         float64       `json:"confidence"`
}

// ValidationNote is an advisory finding from the redaction pipeline. Notes
// never block delivery.
type ValidationNote struct {
	Provider string `json:"provider"`
	Kind     string `json:"kind"` // "masking_violation" or "suspect_domain"
	Detail   string `json:"detail"`
}

// AggregateResponse is the fan-in result of one research request.
//
// Results holds one slot per known provider. A slot is nil if and only if
// the provider was not selected; a selected provider always carries either
// real text or human-readable fallback text after aggregation.
type AggregateResponse struct {
	Results map[string]*string `json:"results"`
	Errors  map[string]string  `json:"errors"`
	Notes   []ValidationNote   `json:"notes,omitempty"`
	Meta    ResponseMeta       `json:"meta"`
}

// SelectedCount returns the number of non-nil provider slots.
func (a *AggregateResponse) SelectedCount() int {
	n := 0
	for _, slot := range a.Results {
		if slot != nil {
			n++
		}
	}
	return n
}
