package utils

// contextKey is a type used for context keys to avoid conflicts with other packages' context keys.
type contextKey struct {
	name string
}

// Returns string representation of the context key.
func (c *contextKey) String() string {
	return c.name
}

// UserKey is the context key under which the JWT middleware stores the
// resolved acting user.
var UserKey = &contextKey{"user"}

// TraceIdKey is the context key used for storing the per-request trace id.
var TraceIdKey = &contextKey{"traceId"}

// SanitizedPayloadKey is the context key under which the validation
// middleware stores the decoded and sanitized request body.
var SanitizedPayloadKey = &contextKey{"sanitizedPayload"}
