package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/store"
)

type stubSettings struct {
	saved *store.OwnerSettings
}

func (s *stubSettings) GetOwnerSettings(ctx context.Context, ownerID string) (store.OwnerSettings, error) {
	if s.saved != nil {
		return *s.saved, nil
	}
	return store.OwnerSettings{}, nil
}

func (s *stubSettings) UpsertOwnerSettings(ctx context.Context, in store.OwnerSettings) (store.OwnerSettings, error) {
	s.saved = &in
	return in, nil
}

const testOwner = "8b7f4c1e-3d2a-4b5c-9d8e-1f2a3b4c5d6e"

func withOwner(r *http.Request) *http.Request {
	return r.WithContext(common.WithOwnerID(r.Context(), testOwner))
}

func TestGetDefaultsWhenUnset(t *testing.T) {
	h := &Handler{Q: &stubSettings{}}
	req := withOwner(httptest.NewRequest(http.MethodGet, "/settings", nil))
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data store.OwnerSettings `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, testOwner, body.Data.OwnerID)
	require.False(t, body.Data.DiscountEnabled)
	require.False(t, body.Data.NotifyEmailEnable)
}

func TestUpdateRoundTrip(t *testing.T) {
	stub := &stubSettings{}
	h := &Handler{Q: stub, Validate: validator.New()}

	payload := []byte(`{"discountEnabled":true,"discountThreshold":2000,"discountPercentage":10,"notifySmsEnabled":true,"notifySmsMin":5000}`)
	req := withOwner(httptest.NewRequest(http.MethodPut, "/settings", bytes.NewReader(payload)))
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.saved)
	require.True(t, stub.saved.DiscountEnabled)
	require.EqualValues(t, 2000, stub.saved.DiscountThreshold)
	require.EqualValues(t, 5000, stub.saved.NotifySMSMin)
	require.Equal(t, testOwner, stub.saved.OwnerID)
}

func TestUpdateRejectsPercentageOverHundred(t *testing.T) {
	h := &Handler{Q: &stubSettings{}, Validate: validator.New()}
	payload := []byte(`{"discountEnabled":true,"discountPercentage":150}`)
	req := withOwner(httptest.NewRequest(http.MethodPut, "/settings", bytes.NewReader(payload)))
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
