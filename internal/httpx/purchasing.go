package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mbenitez/stockroom/internal/purchasing"
)

type PurchasingHandler struct {
	Purchasing *purchasing.Service
}

func (h *PurchasingHandler) Register(r *chi.Mux) {
	r.Get("/purchase-orders", h.list)
	r.Post("/purchase-orders", h.create)
	r.Get("/purchase-orders/{id}", h.get)
	r.Get("/purchase-orders/{id}/document", h.document)
}

func (h *PurchasingHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	pos, err := h.Purchasing.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

func (h *PurchasingHandler) create(w http.ResponseWriter, r *http.Request) {
	var in purchasing.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	po, err := h.Purchasing.Create(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, po)
}

func (h *PurchasingHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	po, err := h.Purchasing.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, po)
}

func (h *PurchasingHandler) document(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	po, err := h.Purchasing.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(purchasing.Document(po)))
}
