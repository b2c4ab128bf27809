package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/services"
	"go.uber.org/zap"
)

type ProductHandler struct {
	Products *services.ProductService
	Log      *zap.Logger
}

func NewProductHandler(svc *services.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{Products: svc, Log: log}
}

// List accepts ?q=, ?category= and ?low_stock=<threshold>.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	f := services.ProductFilter{
		ListParams: listParams(r),
		Category:   strings.TrimSpace(r.URL.Query().Get("category")),
		LowStock:   queryInt(r, "low_stock"),
	}
	items, total, err := h.Products.List(r.Context(), f)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Page[models.Product]{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	p, err := h.Products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, r)
		return
	}
	p, err := h.Products.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	var in services.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, r)
		return
	}
	p, err := h.Products.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	if err := h.Products.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
