package obs

import "context"

type patternCtxKey struct{}

// WithRoutePattern annotates ctx with the matched router pattern so that
// metrics and spans can use a low-cardinality route label.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if pattern == "" {
		return ctx
	}
	return context.WithValue(ctx, patternCtxKey{}, pattern)
}

// RoutePatternFromContext returns the matched route pattern, or "" when the
// request never passed through RoutePatternMiddleware.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(patternCtxKey{}).(string)
	return v
}
