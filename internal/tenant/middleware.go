package tenant

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Resolver extracts the acting owner and worker identities from request
// headers. Session verification happens upstream of this service; the
// gateway forwards verified identities in these headers.
type Resolver struct {
	OwnerHeader  string
	WorkerHeader string
}

// NewResolver returns a resolver with the default header names.
func NewResolver(ownerHeader, workerHeader string) *Resolver {
	if ownerHeader == "" {
		ownerHeader = "X-Owner-ID"
	}
	if workerHeader == "" {
		workerHeader = "X-Worker-ID"
	}
	return &Resolver{OwnerHeader: ownerHeader, WorkerHeader: workerHeader}
}

// Middleware stores the resolved identities on the request context. Requests
// without a valid owner identity are rejected; the worker identity is optional
// since read endpoints are owner-level.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ownerID := strings.TrimSpace(req.Header.Get(r.OwnerHeader))
		if _, err := uuid.Parse(ownerID); err != nil {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity required", nil)
			return
		}
		ctx := common.WithOwnerID(req.Context(), ownerID)
		if workerID := strings.TrimSpace(req.Header.Get(r.WorkerHeader)); workerID != "" {
			if _, err := uuid.Parse(workerID); err != nil {
				common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid worker identity", nil)
				return
			}
			ctx = common.WithWorkerID(ctx, workerID)
		}
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// PrefixKey creates an owner-namespaced cache or channel key.
func PrefixKey(ownerID, key string) string {
	if ownerID == "" {
		return key
	}
	return ownerID + ":" + key
}
