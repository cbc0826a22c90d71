package http

import (
	"net/http"

	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

type ProductHandler struct {
	products ports.ProductService
	sessions ports.SessionService
}

func NewProductHandler(products ports.ProductService, sessions ports.SessionService) *ProductHandler {
	return &ProductHandler{
		products: products,
		sessions: sessions,
	}
}

type createProductRequest struct {
	Name     string  `json:"name"`
	ColorHex *string `json:"color_hex"`
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, _ := currentUser(r)
	product, err := h.products.Create(r.Context(), user, ports.CreateProductInput{
		Name:     req.Name,
		ColorHex: req.ColorHex,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r)
	products, err := h.products.List(r.Context(), user)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid product id")
		return
	}

	user, _ := currentUser(r)
	product, err := h.products.Get(r.Context(), user, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid product id")
		return
	}

	user, _ := currentUser(r)
	sessions, err := h.sessions.ListByProduct(r.Context(), user, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *ProductHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid product id")
		return
	}

	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, _ := currentUser(r)
	session, err := h.sessions.Create(r.Context(), user, req.input(id))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}
