package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/apperr"
	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/dates"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/pdf"
	"github.com/diewo77/go-printshop/internal/services"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Orders  *services.OrderService
	Company config.CompanyConfig
	Loc     *time.Location
	Log     *zap.Logger
}

func NewOrderHandler(svc *services.OrderService, company config.CompanyConfig, loc *time.Location, log *zap.Logger) *OrderHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderHandler{Orders: svc, Company: company, Loc: loc, Log: log}
}

// List accepts ?status=, ?client_id=, ?from=YYYY-MM-DD, ?to=YYYY-MM-DD
// (inclusive) and the usual paging.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.OrderFilter{ListParams: listParams(r), Status: q.Get("status")}
	if v, err := strconv.ParseUint(q.Get("client_id"), 10, 64); err == nil {
		f.ClientID = uint(v)
	}
	if v := q.Get("from"); v != "" {
		t, err := time.ParseInLocation(dates.DayLayout, v, h.Loc)
		if err != nil {
			writeError(w, r, h.Log, apperr.Invalidf("from", "invalid_date"))
			return
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.ParseInLocation(dates.DayLayout, v, h.Loc)
		if err != nil {
			writeError(w, r, h.Log, apperr.Invalidf("to", "invalid_date"))
			return
		}
		f.To = t.AddDate(0, 0, 1)
	}
	items, total, err := h.Orders.List(r.Context(), f)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Page[models.Order]{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	o, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

// Create runs the order workflow: on success the stock of every product and
// material involved has been taken.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.OrderInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, r)
		return
	}
	in.UserID = currentUser(r)
	o, err := h.Orders.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	var in services.OrderUpdate
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, r)
		return
	}
	o, err := h.Orders.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		badJSON(w, r)
		return
	}
	o, err := h.Orders.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	if err := h.Orders.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PDF renders the order as a printable quote.
func (h *OrderHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		badID(w, r)
		return
	}
	o, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	body, err := pdf.QuotePDF(quoteData(o, h.Company, h.Loc))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"orcamento-%s.pdf\"", o.Number()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func quoteData(o *models.Order, c config.CompanyConfig, loc *time.Location) pdf.QuoteData {
	q := pdf.QuoteData{
		Number:   o.Number(),
		Date:     dates.LongPT(o.OrderDate.In(loc)),
		Company:  pdf.CompanyData{Name: c.Name, Tagline: c.Tagline, Address: c.Address, Phone: c.Phone},
		Client:   pdf.ClientData{Name: o.ClientName, Company: o.ClientCompany},
		Discount: o.Discount,
		Total:    o.Total(),
		Notes:    o.Notes,
	}
	for _, it := range o.Items {
		q.Items = append(q.Items, pdf.QuoteItem{
			Description: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.LineTotal(),
		})
	}
	return q
}
