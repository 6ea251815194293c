package sales

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

const (
	testOwner   = "0c9a7b1d-5e3f-4a2b-8c6d-9e0f1a2b3c4d"
	testWorker  = "1d8b6c2e-4f5a-4b3c-9d7e-0f1a2b3c4d5e"
	testProduct = "2e7c5d3f-3a4b-4c5d-8e6f-1a2b3c4d5e6f"
)

type stubGateway struct {
	sale store.Sale
	err  error
	got  CommitInput
}

func (g *stubGateway) Commit(ctx context.Context, in CommitInput) (store.Sale, error) {
	g.got = in
	return g.sale, g.err
}

type stubDetail struct {
	detail  store.SaleWithLines
	listErr error
	err     error
}

func (d *stubDetail) GetSaleWithLines(ctx context.Context, ownerID, saleID string) (store.SaleWithLines, error) {
	return d.detail, d.err
}

func (d *stubDetail) ListSalesWithLines(ctx context.Context, ownerID string, from, to time.Time) ([]store.SaleWithLines, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	return []store.SaleWithLines{d.detail}, nil
}

func commitRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewReader([]byte(body)))
	ctx := common.WithOwnerID(req.Context(), testOwner)
	ctx = common.WithWorkerID(ctx, testWorker)
	return req.WithContext(ctx)
}

func validBody() string {
	return `{"workerName":"Ana","items":[{"productId":"` + testProduct + `","quantity":3}]}`
}

func TestCommitHappyPath(t *testing.T) {
	committed := store.Sale{ID: "sale-1", OwnerID: testOwner, FinalTotal: 2700}
	gateway := &stubGateway{sale: committed}
	detail := &stubDetail{detail: store.SaleWithLines{Sale: committed, Lines: []store.SaleLine{{ProductID: testProduct, QuantitySold: 3}}}}
	h := &Handler{Gateway: gateway, Detail: detail, Validate: validator.New()}

	rec := httptest.NewRecorder()
	h.Commit(rec, commitRequest(t, validBody()))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, testOwner, gateway.got.OwnerID)
	require.Equal(t, testWorker, gateway.got.WorkerID)

	var body struct {
		Data struct {
			Sale     store.SaleWithLines `json:"sale"`
			Readback map[string]string   `json:"readback"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "sale-1", body.Data.Sale.Sale.ID)
	require.Len(t, body.Data.Sale.Lines, 1)
	require.Nil(t, body.Data.Readback)
}

func TestCommitInsufficientStockConflict(t *testing.T) {
	gateway := &stubGateway{err: ErrInsufficientStock}
	h := &Handler{Gateway: gateway, Validate: validator.New()}

	rec := httptest.NewRecorder()
	h.Commit(rec, commitRequest(t, validBody()))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "INSUFFICIENT_STOCK")
}

func TestCommitReadbackFailureStillCreated(t *testing.T) {
	committed := store.Sale{ID: "sale-1", OwnerID: testOwner, FinalTotal: 2700}
	gateway := &stubGateway{sale: committed}
	detail := &stubDetail{err: errors.New("replica lag")}
	h := &Handler{Gateway: gateway, Detail: detail, Validate: validator.New()}

	rec := httptest.NewRecorder()
	h.Commit(rec, commitRequest(t, validBody()))

	// The sale exists even though the read failed; the client must not retry.
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "COMMIT_READBACK_FAILED")
	require.Contains(t, rec.Body.String(), "sale-1")
}

func TestCommitRejectsEmptyItems(t *testing.T) {
	h := &Handler{Gateway: &stubGateway{}, Validate: validator.New()}
	rec := httptest.NewRecorder()
	h.Commit(rec, commitRequest(t, `{"workerName":"Ana","items":[]}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommitRejectsBadQuantity(t *testing.T) {
	h := &Handler{Gateway: &stubGateway{}, Validate: validator.New()}
	rec := httptest.NewRecorder()
	h.Commit(rec, commitRequest(t, `{"items":[{"productId":"`+testProduct+`","quantity":0}]}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommitRequiresWorkerIdentity(t *testing.T) {
	h := &Handler{Gateway: &stubGateway{}, Validate: validator.New()}
	req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewReader([]byte(validBody())))
	req = req.WithContext(common.WithOwnerID(req.Context(), testOwner))
	rec := httptest.NewRecorder()
	h.Commit(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// tenderGuardGateway applies the same guard Service.Commit does, so the
// handler tests can prove the tendered amount travels through CommitInput and
// a shortfall never produces a committed sale.
type tenderGuardGateway struct {
	finalTotal pricing.Money
	committed  bool
}

func (g *tenderGuardGateway) Commit(_ context.Context, in CommitInput) (store.Sale, error) {
	if in.Tendered != nil {
		if state := pricing.Tender(pricing.Summary{FinalTotal: g.finalTotal}, *in.Tendered); !state.Sufficient {
			return store.Sale{}, &TenderError{FinalTotal: g.finalTotal, Tendered: *in.Tendered, Shortfall: state.Shortfall}
		}
	}
	g.committed = true
	return store.Sale{ID: "sale-1", OwnerID: testOwner, FinalTotal: g.finalTotal}, nil
}

func TestCommitBlocksInsufficientTender(t *testing.T) {
	gateway := &tenderGuardGateway{finalTotal: 2700}
	h := &Handler{Gateway: gateway, Validate: validator.New()}

	body := `{"workerName":"Ana","tendered":2000,"items":[{"productId":"` + testProduct + `","quantity":3}]}`
	rec := httptest.NewRecorder()
	h.Commit(rec, commitRequest(t, body))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, gateway.committed, "shortfall must block before anything is persisted")
	require.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	require.Contains(t, rec.Body.String(), `"shortfall":700`)
}

func TestCommitAcceptsSufficientTender(t *testing.T) {
	gateway := &tenderGuardGateway{finalTotal: 2700}
	h := &Handler{Gateway: gateway, Validate: validator.New()}

	body := `{"workerName":"Ana","tendered":3000,"items":[{"productId":"` + testProduct + `","quantity":3}]}`
	rec := httptest.NewRecorder()
	h.Commit(rec, commitRequest(t, body))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, gateway.committed)
}

func TestListDefaultsToThirtyDays(t *testing.T) {
	detail := &stubDetail{detail: store.SaleWithLines{Sale: store.Sale{ID: "sale-1"}}}
	h := &Handler{Detail: detail}

	req := httptest.NewRequest(http.MethodGet, "/sales", nil)
	req = req.WithContext(common.WithOwnerID(req.Context(), testOwner))
	rec := httptest.NewRecorder()
	h.List(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "sale-1")
}

func TestListRejectsBadRange(t *testing.T) {
	h := &Handler{Detail: &stubDetail{}}
	req := httptest.NewRequest(http.MethodGet, "/sales?from=2026-03-10&to=2026-03-01", nil)
	req = req.WithContext(common.WithOwnerID(req.Context(), testOwner))
	rec := httptest.NewRecorder()
	h.List(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_RANGE")
}

func TestGetNotFound(t *testing.T) {
	h := &Handler{Detail: &stubDetail{err: store.ErrNotFound}}
	req := httptest.NewRequest(http.MethodGet, "/sales/missing", nil)
	req = req.WithContext(common.WithOwnerID(req.Context(), testOwner))
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
