package metrics

import "go.opentelemetry.io/otel/attribute"

// Config identifies the service on every emitted metric.
type Config struct {
	ServiceName string
	Environment string
}

// FilterAttributes drops attributes with empty string values.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Value.Type() == attribute.STRING && attr.Value.AsString() == "" {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
