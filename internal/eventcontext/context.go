// Package eventcontext carries request-scoped event and actor identifiers.
package eventcontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type eventIDKey struct{}
type actorIDKey struct{}
type requestIDKey struct{}

// WithEventID stores the active event ID in the context.
func WithEventID(ctx context.Context, eventID snowflake.ID) context.Context {
	return context.WithValue(ctx, eventIDKey{}, eventID)
}

// EventIDFromContext returns the event ID from context, if set.
func EventIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	switch typed := ctx.Value(eventIDKey{}).(type) {
	case snowflake.ID:
		return typed, typed != 0
	case int64:
		return snowflake.ID(typed), typed != 0
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, parsed != 0
		}
	}
	return 0, false
}

// WithActorID stores the acting principal's ID in the context.
func WithActorID(ctx context.Context, userID snowflake.ID) context.Context {
	return context.WithValue(ctx, actorIDKey{}, userID)
}

// ActorIDFromContext returns the acting principal's ID, if set.
func ActorIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	id, ok := ctx.Value(actorIDKey{}).(snowflake.ID)
	return id, ok && id != 0
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID, if set.
func RequestIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}
