package tracing

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"
)

const maxErrorLength = 256

// SafeAttributes drops attributes with empty values so spans stay compact.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Value.Type() == attribute.STRING && attr.Value.AsString() == "" {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}

// SafeError truncates error messages before they are recorded on a span.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	message := err.Error()
	if len(message) > maxErrorLength {
		message = message[:maxErrorLength]
	}
	return errors.New(message)
}
