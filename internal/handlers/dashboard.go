package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/services"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	Dashboard *services.DashboardService
	Log       *zap.Logger
}

func NewDashboardHandler(svc *services.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{Dashboard: svc, Log: log}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Dashboard.Summary(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *DashboardHandler) OrdersPerDay(w http.ResponseWriter, r *http.Request) {
	days, err := h.Dashboard.OrdersPerDay(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, days)
}

// DailyRevenue accepts ?date=YYYY-MM-DD, today by default.
func (h *DashboardHandler) DailyRevenue(w http.ResponseWriter, r *http.Request) {
	d, err := h.Dashboard.DailyRevenue(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// MonthlyRevenue accepts ?month=YYYY-MM, the current month by default.
func (h *DashboardHandler) MonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	m, err := h.Dashboard.MonthlyRevenue(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *DashboardHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	top, err := h.Dashboard.TopProducts(r.Context(), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, top)
}

func (h *DashboardHandler) ExportMonthly(w http.ResponseWriter, r *http.Request) {
	rep, data, err := h.Dashboard.ExportMonthly(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+rep.Filename()+"\"")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
