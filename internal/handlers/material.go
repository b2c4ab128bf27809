package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/services"
	"go.uber.org/zap"
)

type MaterialHandler struct {
	Inventory *services.InventoryService
	Log       *zap.Logger
}

func NewMaterialHandler(svc *services.InventoryService, log *zap.Logger) *MaterialHandler {
	return &MaterialHandler{Inventory: svc, Log: log}
}

func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	items, total, err := h.Inventory.List(r.Context(), p)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Page[models.Material]{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset})
}

func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	m, err := h.Inventory.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.MaterialInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, r)
		return
	}
	m, err := h.Inventory.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	var in services.MaterialInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, r)
		return
	}
	m, err := h.Inventory.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	if err := h.Inventory.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustStock handles PATCH /materials/{id}/stock. The legacy payload keys
// quantidade/operacao are accepted alongside quantity/operation.
func (h *MaterialHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	var body struct {
		services.AdjustInput
		Quantidade *int   `json:"quantidade"`
		Operacao   string `json:"operacao"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		badJSON(w, r)
		return
	}
	in := body.AdjustInput
	if in.Quantity == 0 && body.Quantidade != nil {
		in.Quantity = *body.Quantidade
	}
	if in.Operation == "" {
		in.Operation = body.Operacao
	}
	in.UserID = currentUser(r)
	res, err := h.Inventory.AdjustStock(r.Context(), id, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// Movements handles GET /stock-movements?entity_type=&entity_id=&order_id=&limit=.
func (h *MaterialHandler) Movements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.MovementFilter{
		EntityType: strings.TrimSpace(q.Get("entity_type")),
		Limit:      queryInt(r, "limit"),
	}
	if v, err := strconv.ParseUint(q.Get("entity_id"), 10, 64); err == nil {
		f.EntityID = uint(v)
	}
	if v, err := strconv.ParseUint(q.Get("order_id"), 10, 64); err == nil {
		f.OrderID = uint(v)
	}
	items, err := h.Inventory.Movements(r.Context(), f)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}
