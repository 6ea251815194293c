package tenant

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
)

func TestMiddlewareResolvesIdentities(t *testing.T) {
	resolver := NewResolver("", "")
	var gotOwner, gotWorker string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner, _ = common.OwnerID(r.Context())
		gotWorker, _ = common.WorkerID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Owner-ID", "0c9a7b1d-5e3f-4a2b-8c6d-9e0f1a2b3c4d")
	req.Header.Set("X-Worker-ID", "1d8b6c2e-4f5a-4b3c-9d7e-0f1a2b3c4d5e")
	rec := httptest.NewRecorder()
	resolver.Middleware(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "0c9a7b1d-5e3f-4a2b-8c6d-9e0f1a2b3c4d", gotOwner)
	require.Equal(t, "1d8b6c2e-4f5a-4b3c-9d7e-0f1a2b3c4d5e", gotWorker)
}

func TestMiddlewareRejectsMissingOwner(t *testing.T) {
	resolver := NewResolver("", "")
	rec := httptest.NewRecorder()
	resolver.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next should not run")
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsMalformedWorker(t *testing.T) {
	resolver := NewResolver("", "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Owner-ID", "0c9a7b1d-5e3f-4a2b-8c6d-9e0f1a2b3c4d")
	req.Header.Set("X-Worker-ID", "not-a-uuid")
	rec := httptest.NewRecorder()
	resolver.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next should not run")
	})).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareWorkerOptional(t *testing.T) {
	resolver := NewResolver("", "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Owner-ID", "0c9a7b1d-5e3f-4a2b-8c6d-9e0f1a2b3c4d")
	var workerPresent bool
	rec := httptest.NewRecorder()
	resolver.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, workerPresent = common.WorkerID(r.Context())
	})).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, workerPresent)
}

func TestPrefixKey(t *testing.T) {
	require.Equal(t, "owner:recent", PrefixKey("owner", "recent"))
	require.Equal(t, "recent", PrefixKey("", "recent"))
}
