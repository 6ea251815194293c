package analytics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
)

func analyticsRequest(target string, withOwner bool) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if withOwner {
		req = req.WithContext(common.WithOwnerID(req.Context(), "owner-1"))
	}
	return req
}

func TestDimensionRejectsBadRange(t *testing.T) {
	h := &Handler{Svc: &Service{Store: &stubLoader{}, DefaultRange: 30}}

	rec := httptest.NewRecorder()
	h.RevenueByDay(rec, analyticsRequest("/analytics/revenue-by-day?from=2026-03-10&to=2026-03-01", true))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_RANGE")
}

func TestDimensionRequiresOwner(t *testing.T) {
	h := &Handler{Svc: &Service{Store: &stubLoader{}, DefaultRange: 30}}

	rec := httptest.NewRecorder()
	h.Workers(rec, analyticsRequest("/analytics/workers", false))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDimensionDegradesOnLoadFailure(t *testing.T) {
	h := &Handler{Svc: &Service{Store: &stubLoader{err: errors.New("pg down")}, DefaultRange: 30}}

	rec := httptest.NewRecorder()
	h.RevenueByDay(rec, analyticsRequest("/analytics/revenue-by-day", true))

	// Valid input with a failing store degrades to an empty result; only
	// malformed input is an error.
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestGrowthRejectsBadRange(t *testing.T) {
	h := &Handler{Svc: &Service{Store: &stubLoader{}, DefaultRange: 30}}

	rec := httptest.NewRecorder()
	h.Growth(rec, analyticsRequest("/analytics/growth?from=bogus&to=2026-03-01", true))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_RANGE")
}
