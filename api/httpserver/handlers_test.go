package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shkulipa/auction-contract/auction"
	"github.com/Shkulipa/auction-contract/metrics"
	"github.com/Shkulipa/auction-contract/testutil"
)

func newTestAPI(t *testing.T, opts ...testutil.Option) (*testutil.EngineFixture, http.Handler) {
	t.Helper()

	fix := testutil.NewEngineFixture(opts...)
	router := chi.NewRouter()
	handler := NewHandler(fix.Engine, fix.Ledger, metrics.New("test"), fix.Clock, testutil.DiscardLogger())
	handler.RegisterRoutes(router)
	return fix, router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func createTestAuction(t *testing.T, router http.Handler) auction.ID {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/auctions", auction.CreateRequest{
		Seller:        "seller-1",
		StartingPrice: 100000,
		DiscountRate:  3,
		Item:          "fake item",
		Duration:      60,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[createResponse](t, rec).ID
}

func TestCreateAndGetAuction(t *testing.T) {
	fix, router := newTestAPI(t)

	id := createTestAuction(t, router)
	assert.Equal(t, auction.ID(0), id)

	rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/auctions/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	a := decodeBody[auction.Auction](t, rec)
	assert.Equal(t, "fake item", a.Item)
	assert.Equal(t, auction.AccountID("seller-1"), a.Seller)
	assert.Equal(t, fix.Clock.Now().Unix()+60, a.EndAt)
	assert.False(t, a.Stopped)
}

func TestCreateAuction_Validation(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auctions", auction.CreateRequest{
		Seller:        "seller-1",
		StartingPrice: 1,
		DiscountRate:  1,
		Item:          "x",
		Duration:      60,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "incorrect starting price", decodeBody[errorResponse](t, rec).Error)

	rec = doJSON(t, router, http.MethodPost, "/api/auctions", auction.CreateRequest{
		StartingPrice: 100, DiscountRate: 1, Item: "x", Duration: 60,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing seller", decodeBody[errorResponse](t, rec).Error)
}

func TestListAuctions(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/auctions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]auction.Auction](t, rec))

	createTestAuction(t, router)
	createTestAuction(t, router)

	rec = doJSON(t, router, http.MethodGet, "/api/auctions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]auction.Auction](t, rec), 2)
}

func TestGetPrice(t *testing.T) {
	fix, router := newTestAPI(t)
	id := createTestAuction(t, router)

	fix.Clock.Advance(10 * time.Second)
	rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/auctions/%d/price", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	price := decodeBody[priceResponse](t, rec)
	assert.Equal(t, auction.Amount(100000-3*10), price.Price)
}

func TestBuyFlow(t *testing.T) {
	fix, router := newTestAPI(t, testutil.WithBalance("buyer-1", 500000))
	id := createTestAuction(t, router)

	fix.Clock.Advance(1 * time.Second)
	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/auctions/%d/buy", id), buyRequest{
		Buyer:   "buyer-1",
		Payment: 300000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	receipt := decodeBody[auction.Receipt](t, rec)
	wantPrice := auction.Amount(100000 - 3)
	assert.Equal(t, wantPrice, receipt.FinalPrice)
	assert.Equal(t, auction.Amount(300000)-wantPrice, receipt.Refund)
	assert.Equal(t, receipt.FinalPrice, receipt.SellerProceeds+receipt.Fee)

	// Ledger balances reflect the settlement.
	assert.Equal(t, auction.Amount(500000)-wantPrice, fix.Ledger.Balance("buyer-1"))
	assert.Equal(t, receipt.SellerProceeds, fix.Ledger.Balance("seller-1"))
	assert.Equal(t, receipt.Fee, fix.Ledger.Balance(testutil.FeeAccount))

	// The record now carries the final price and the price endpoint
	// reports the settled state.
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/auctions/%d/price", id), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "stopped!", decodeBody[errorResponse](t, rec).Error)
}

func TestBuy_ErrorMapping(t *testing.T) {
	fix, router := newTestAPI(t, testutil.WithBalance("buyer-1", 1_000_000))
	id := createTestAuction(t, router)

	// Underpayment.
	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/auctions/%d/buy", id), buyRequest{
		Buyer: "buyer-1", Payment: 10,
	})
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "not enough funds!", decodeBody[errorResponse](t, rec).Error)

	// Expired.
	fix.Clock.Advance(120 * time.Second)
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/auctions/%d/buy", id), buyRequest{
		Buyer: "buyer-1", Payment: 100000,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ended!", decodeBody[errorResponse](t, rec).Error)

	// Unknown id.
	rec = doJSON(t, router, http.MethodPost, "/api/auctions/99/buy", buyRequest{
		Buyer: "buyer-1", Payment: 100000,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Unparseable id.
	rec = doJSON(t, router, http.MethodGet, "/api/auctions/abc/price", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing buyer.
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/auctions/%d/buy", id), buyRequest{
		Payment: 100000,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDepositAndBalance(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/accounts/buyer-9/deposit", depositRequest{Amount: 1234})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, auction.Amount(1234), decodeBody[balanceResponse](t, rec).Balance)

	rec = doJSON(t, router, http.MethodGet, "/api/accounts/buyer-9", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	balance := decodeBody[balanceResponse](t, rec)
	assert.Equal(t, auction.AccountID("buyer-9"), balance.Account)
	assert.Equal(t, auction.Amount(1234), balance.Balance)

	rec = doJSON(t, router, http.MethodPost, "/api/accounts/buyer-9/deposit", depositRequest{Amount: -5})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
