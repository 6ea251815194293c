package common

import "context"

type ctxKey string

const (
	ownerIDKey  ctxKey = "actor/owner-id"
	workerIDKey ctxKey = "actor/worker-id"
)

// WithOwnerID stores the business owner identifier on the provided context.
// Every data access in the service is scoped under this identity.
func WithOwnerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ownerIDKey, id)
}

// OwnerID extracts the business owner identifier from the context if present.
func OwnerID(ctx context.Context) (string, bool) {
	v := ctx.Value(ownerIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// WithWorkerID stores the acting staff member identifier on the context.
func WithWorkerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, workerIDKey, id)
}

// WorkerID extracts the acting staff member identifier from the context.
func WorkerID(ctx context.Context) (string, bool) {
	v := ctx.Value(workerIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
