// Package handler exposes a cart store to the storefront views over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/snapshot"
	"github.com/nikolayk812/storefront-cart/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

type HTTPHandler struct {
	cart      *store.Store[domain.ProductDisplay]
	currency  currency.Unit
	logger    *zap.Logger
	validator *validator.Validate
}

func NewHTTPHandler(cart *store.Store[domain.ProductDisplay], unit currency.Unit, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPHandler{
		cart:      cart,
		currency:  unit,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *HTTPHandler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(h.logRequests)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.handleGetCart)
		r.Delete("/", h.handleClearCart)

		r.Post("/items", h.handleAddItem)
		r.Get("/items/{productID}", h.handleGetItem)
		r.Put("/items/{productID}", h.handleUpdateQuantity)
		r.Delete("/items/{productID}", h.handleRemoveItem)
	})

	return r
}

type addItemRequest struct {
	ProductID   string          `json:"productId"   validate:"required"`
	Price       decimal.Decimal `json:"price"       validate:"-"`
	MaxQuantity int             `json:"maxQuantity" validate:"required,min=1"`
	Quantity    int             `json:"quantity"    validate:"omitempty,min=1"`
	Name        string          `json:"name"        validate:"required"`
	ImageURL    string          `json:"imageUrl"    validate:"omitempty,url"`
	CategoryID  string          `json:"categoryId"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type itemResponse struct {
	ProductID   string `json:"productId"`
	InCart      bool   `json:"inCart"`
	Quantity    int    `json:"quantity"`
	MaxQuantity int    `json:"maxQuantity,omitempty"`
	Subtotal    string `json:"subtotal,omitempty"`
}

type cartResponse struct {
	Items       json.RawMessage `json:"items"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount json.Number     `json:"totalAmount"`
	Total       string          `json:"total"`
	IsLoading   bool            `json:"isLoading"`
}

var errNegativePrice = errors.New("price must not be negative")

func (h *HTTPHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, http.StatusOK, h.cart.State())
}

func (h *HTTPHandler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	resp := itemResponse{ProductID: productID}
	if line, ok := h.cart.Line(productID); ok {
		resp.InCart = true
		resp.Quantity = line.Quantity
		resp.MaxQuantity = line.MaxQuantity
		resp.Subtotal = domain.Money{Amount: line.Subtotal(), Currency: h.currency}.String()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, errNegativePrice)
		return
	}

	state := h.cart.AddItem(r.Context(), domain.CartLine[domain.ProductDisplay]{
		ProductID:   req.ProductID,
		MaxQuantity: req.MaxQuantity,
		Price:       req.Price,
		Payload: domain.ProductDisplay{
			Name:       req.Name,
			ImageURL:   req.ImageURL,
			CategoryID: req.CategoryID,
		},
	}, req.Quantity)

	h.writeCart(w, http.StatusOK, state)
}

func (h *HTTPHandler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	state := h.cart.UpdateQuantity(r.Context(), chi.URLParam(r, "productID"), *req.Quantity)
	h.writeCart(w, http.StatusOK, state)
}

func (h *HTTPHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	state := h.cart.RemoveItem(r.Context(), chi.URLParam(r, "productID"))
	h.writeCart(w, http.StatusOK, state)
}

func (h *HTTPHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	state := h.cart.ClearCart(r.Context())
	h.writeCart(w, http.StatusOK, state)
}

func (h *HTTPHandler) writeCart(w http.ResponseWriter, status int, state domain.CartState[domain.ProductDisplay]) {
	items, err := snapshot.Encode(state.Items)
	if err != nil {
		h.logger.Error("encode cart items", zap.Error(err))
		respondError(w, http.StatusInternalServerError, fmt.Errorf("encode cart items"))
		return
	}

	writeJSON(w, status, cartResponse{
		Items:       items,
		TotalItems:  state.TotalItems,
		TotalAmount: json.Number(state.TotalAmount.String()),
		Total:       state.Total(h.currency).String(),
		IsLoading:   state.IsLoading,
	})
}

func (h *HTTPHandler) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return h.validator.Struct(dst)
}

func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.logger.Info("http request",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
