package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mbenitez/stockroom/internal/catalog"
	"github.com/mbenitez/stockroom/internal/domain"
)

type KitsHandler struct {
	Catalog *catalog.Service
}

func (h *KitsHandler) Register(r *chi.Mux) {
	r.Get("/kits", h.list)
	r.Post("/kits", h.create)
	r.Get("/kits/{id}", h.get)
	r.Put("/kits/{id}", h.update)
	r.Delete("/kits/{id}", h.delete)
	r.Get("/kits/{id}/availability", h.availability)
}

func (h *KitsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ks, err := h.Catalog.ListKits(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ks)
}

func (h *KitsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	k, err := h.Catalog.GetKit(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, k)
}

func (h *KitsHandler) create(w http.ResponseWriter, r *http.Request) {
	var k domain.Kit
	if err := json.NewDecoder(r.Body).Decode(&k); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	created, err := h.Catalog.CreateKit(ctx, k)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *KitsHandler) update(w http.ResponseWriter, r *http.Request) {
	var k domain.Kit
	if err := json.NewDecoder(r.Body).Decode(&k); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	k.ID = chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Catalog.UpdateKit(ctx, k)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *KitsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.DeleteKit(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *KitsHandler) availability(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	n, err := h.Catalog.KitAvailability(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"available": n})
}
