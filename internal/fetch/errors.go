package fetch

import "fmt"

// Kind classifies a failed request. Retryable kinds (network, timeout,
// rate-limited) are resolved inside the client via backoff and only surface
// after retries are exhausted; all other kinds surface immediately.
type Kind string

const (
	KindNetwork     Kind = "network"
	KindTimeout     Kind = "timeout"
	KindRateLimited Kind = "rate-limited"
	KindServerError Kind = "server-error"
	KindNotFound    Kind = "not-found"
	KindMalformed   Kind = "malformed-response"
)

// Retryable reports whether the client should back off and try again.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindRateLimited:
		return true
	}
	return false
}

// KindForStatus maps an HTTP status to an error kind. Returns "" for
// statuses that are not failures we classify (including 2xx).
func KindForStatus(status int) Kind {
	switch {
	case status == 0:
		return KindNetwork
	case status == 408:
		return KindTimeout
	case status == 429:
		return KindRateLimited
	case status == 404:
		return KindNotFound
	case status >= 500:
		return KindServerError
	}
	return ""
}

// Error is the typed failure a Result carries.
type Error struct {
	Kind   Kind
	Status int
	URL    string
}

func (e *Error) Error() string {
	kind := string(e.Kind)
	if kind == "" {
		kind = "http-error"
	}
	if e.Status > 0 {
		return fmt.Sprintf("fetch %s: %s (HTTP %d)", e.URL, kind, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, kind)
}
