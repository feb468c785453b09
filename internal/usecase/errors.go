package usecase

import (
	crerr "github.com/cockroachdb/errors"
)

var (
	// ErrConfiguration means the API endpoint or credentials are missing. It
	// ends the session's data loading; nothing is retried.
	ErrConfiguration = crerr.New("configuration error")
	// ErrNetwork covers transport failures and non-2xx responses.
	ErrNetwork = crerr.New("network error")
	// ErrDecoding marks payloads that could not be parsed.
	ErrDecoding = crerr.New("decoding error")
	// ErrDependencyUnavailable is returned while the API circuit is open.
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
	// ErrInvalidInput marks requests a view built wrongly, e.g. an unknown
	// dimension.
	ErrInvalidInput = crerr.New("invalid input")
	ErrNotFound     = crerr.New("not found")
)

// ConfigurationStatus is shown in place of data when the API is not
// configured.
const ConfigurationStatus = "Set API_URL and API_KEY to load data."

// NewStatusError builds the error for a non-2xx response. Its message is
// exactly "Request failed (<status>)".
func NewStatusError(status int) error {
	return crerr.Mark(crerr.Newf("Request failed (%d)", status), ErrNetwork)
}

// StatusMessage renders err for the status line.
func StatusMessage(err error) string {
	if err == nil {
		return ""
	}
	if crerr.Is(err, ErrConfiguration) {
		return ConfigurationStatus
	}
	return err.Error()
}
