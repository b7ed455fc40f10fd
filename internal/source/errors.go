package source

import (
	"errors"
	"fmt"
)

// Upstream source names, surfaced in refresh failure responses.
const (
	NameCountries = "restcountries"
	NameRates     = "exchange rate"
)

var (
	ErrTimeout     = errors.New("source_timeout")
	ErrUnavailable = errors.New("source_unavailable")
)

// Error ties a fetch failure to the source that produced it.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// SourceName extracts the failing source from an error chain, if present.
func SourceName(err error) string {
	var srcErr *Error
	if errors.As(err, &srcErr) {
		return srcErr.Source
	}
	return ""
}
