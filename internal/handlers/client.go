package handlers

import (
	"net/http"

	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/services"
	"go.uber.org/zap"
)

type ClientHandler struct {
	Clients *services.ClientService
	Log     *zap.Logger
}

func NewClientHandler(svc *services.ClientService, log *zap.Logger) *ClientHandler {
	return &ClientHandler{Clients: svc, Log: log}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	items, total, err := h.Clients.List(r.Context(), p)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Page[models.Client]{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset})
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	c, err := h.Clients.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ClientInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, r)
		return
	}
	c, err := h.Clients.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	var in services.ClientInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, r)
		return
	}
	c, err := h.Clients.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	if err := h.Clients.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
