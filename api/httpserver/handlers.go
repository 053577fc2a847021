package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Shkulipa/auction-contract/auction"
	"github.com/Shkulipa/auction-contract/ledger"
	"github.com/Shkulipa/auction-contract/metrics"
)

// Accounts is the handler's view of the ledger, used by the faucet and
// balance endpoints.
type Accounts interface {
	Deposit(account auction.AccountID, amount auction.Amount) error
	Balance(account auction.AccountID) auction.Amount
}

// Handler registers the auction and account API routes.
type Handler struct {
	engine   *auction.Engine
	accounts Accounts
	metrics  *metrics.Metrics
	clock    auction.Clock
	log      *slog.Logger
}

// NewHandler creates a Handler over the engine and ledger accounts. The
// clock must be the same one the engine observes so the price feed's expiry
// view cannot drift from the engine's.
func NewHandler(engine *auction.Engine, accounts Accounts, m *metrics.Metrics, clock auction.Clock, log *slog.Logger) *Handler {
	if clock == nil {
		clock = auction.SystemClock{}
	}
	return &Handler{
		engine:   engine,
		accounts: accounts,
		metrics:  m,
		clock:    clock,
		log:      log,
	}
}

// RegisterRoutes mounts the API under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auctions", h.createAuction)
		r.Get("/auctions", h.listAuctions)
		r.Get("/auctions/{id}", h.getAuction)
		r.Get("/auctions/{id}/price", h.getPrice)
		r.Post("/auctions/{id}/buy", h.buy)
		r.Get("/auctions/{id}/feed", h.priceFeed)
		r.Post("/accounts/{account}/deposit", h.deposit)
		r.Get("/accounts/{account}", h.balance)
	})
}

type createResponse struct {
	ID auction.ID `json:"id"`
}

func (h *Handler) createAuction(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req auction.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Seller == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing seller"))
		return
	}

	id, err := h.engine.CreateAuction(r.Context(), req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	h.metrics.AuctionsCreated.Inc()
	writeJSON(w, http.StatusOK, createResponse{ID: id})
}

func (h *Handler) listAuctions(w http.ResponseWriter, r *http.Request) {
	auctions, err := h.engine.ListAuctions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if auctions == nil {
		auctions = []auction.Auction{}
	}
	writeJSON(w, http.StatusOK, auctions)
}

func (h *Handler) getAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}

	a, err := h.engine.GetAuction(r.Context(), id)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type priceResponse struct {
	AuctionID auction.ID     `json:"auction_id"`
	Price     auction.Amount `json:"price"`
}

func (h *Handler) getPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}

	price, err := h.engine.GetPriceFor(r.Context(), id)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, priceResponse{AuctionID: id, Price: price})
}

type buyRequest struct {
	Buyer   auction.AccountID `json:"buyer"`
	Payment auction.Amount    `json:"payment"`
}

func (h *Handler) buy(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, ok := auctionID(w, r)
	if !ok {
		return
	}

	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Buyer == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing buyer"))
		return
	}

	receipt, err := h.engine.Buy(r.Context(), auction.BuyRequest{
		AuctionID: id,
		Buyer:     req.Buyer,
		Payment:   req.Payment,
	})
	if err != nil {
		h.metrics.SettlementFailures.WithLabelValues(failureReason(err)).Inc()
		writeError(w, statusForError(err), err)
		return
	}

	h.metrics.AuctionsSettled.Inc()
	h.metrics.FeesCollected.Add(float64(receipt.Fee))
	writeJSON(w, http.StatusOK, receipt)
}

type depositRequest struct {
	Amount auction.Amount `json:"amount"`
}

type balanceResponse struct {
	Account auction.AccountID `json:"account"`
	Balance auction.Amount    `json:"balance"`
}

func (h *Handler) deposit(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	account := auction.AccountID(chi.URLParam(r, "account"))

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.accounts.Deposit(account, req.Amount); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Account: account, Balance: h.accounts.Balance(account)})
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	account := auction.AccountID(chi.URLParam(r, "account"))
	writeJSON(w, http.StatusOK, balanceResponse{Account: account, Balance: h.accounts.Balance(account)})
}

func auctionID(w http.ResponseWriter, r *http.Request) (auction.ID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid auction id"))
		return 0, false
	}
	return auction.ID(id), true
}

// statusForError maps the engine's error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, auction.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auction.ErrStopped), errors.Is(err, auction.ErrExpired):
		return http.StatusConflict
	case errors.Is(err, auction.ErrInsufficientFunds), errors.Is(err, ledger.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, auction.ErrInvalidPrice),
		errors.Is(err, auction.ErrInvalidDuration),
		errors.Is(err, auction.ErrInvalidDiscount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auction.ErrNotFound):
		return "not_found"
	case errors.Is(err, auction.ErrStopped):
		return "stopped"
	case errors.Is(err, auction.ErrExpired):
		return "expired"
	case errors.Is(err, auction.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "transfer"
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
