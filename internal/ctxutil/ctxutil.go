// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import (
	"context"
	"strings"
)

// ActorKey is the context key for actor ID.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// WithActorID returns a context with the actor ID embedded.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorKey{}, actorID)
}

// ActorFromContext returns the actor ID from context, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ActorKey{}).(string); ok {
		return v
	}
	return ""
}

// CLIActor builds the actor id recorded for commands run by a user,
// e.g. "cli:avery". An empty name yields "cli".
func CLIActor(userName string) string {
	name := strings.ToLower(strings.Join(strings.Fields(userName), "-"))
	if name == "" {
		return "cli"
	}
	return "cli:" + name
}
