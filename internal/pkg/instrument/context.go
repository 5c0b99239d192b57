package instrument

import "context"

type correlationIDKey struct{}

// SetCorrelationID stores the correlation ID in the context.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// GetCorrelationID returns the correlation ID stored in the context.
//
// It returns an empty string when no ID is set and a sentinel marker when the
// stored value is not a string, so log output never carries a silent mismatch.
func GetCorrelationID(ctx context.Context) string {
	v := ctx.Value(correlationIDKey{})
	if v == nil {
		return ""
	}

	id, ok := v.(string)
	if !ok {
		return "[invalid_chain_id]"
	}

	return id
}
