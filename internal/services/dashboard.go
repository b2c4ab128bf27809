package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/diewo77/go-printshop/internal/apperr"
	"github.com/diewo77/go-printshop/internal/dates"
	"github.com/diewo77/go-printshop/internal/export"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnnamedClient is shown for orders stored without a client name.
const UnnamedClient = "Cliente não especificado"

type Summary struct {
	TotalOrders   int64 `json:"total_orders"`
	TotalClients  int64 `json:"total_clients"`
	TotalProducts int64 `json:"total_products"`
	PendingOrders int64 `json:"pending_orders"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DailyOrder struct {
	ID         uint               `json:"id"`
	ClientName string             `json:"client_name"`
	Total      decimal.Decimal    `json:"total"`
	Status     models.OrderStatus `json:"status"`
}

type DailyRevenue struct {
	Date        string          `json:"date"`
	Revenue     decimal.Decimal `json:"revenue"`
	OrdersCount int             `json:"orders_count"`
	Orders      []DailyOrder    `json:"orders"`
}

type DayRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Count   int             `json:"count"`
}

type MonthlyRevenue struct {
	Month       string          `json:"month"`
	Revenue     decimal.Decimal `json:"revenue"`
	OrdersCount int             `json:"orders_count"`
	DailyData   []DayRevenue    `json:"daily_data"`
}

type TopProduct struct {
	ID      *uint           `json:"id"`
	Name    string          `json:"name"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DashboardService computes the dashboard figures from the stored orders on
// every call. Day boundaries follow Loc.
type DashboardService struct {
	DB  *gorm.DB
	Loc *time.Location
	Now func() time.Time
}

func NewDashboardService(db *gorm.DB, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{DB: db, Loc: loc, Now: time.Now}
}

func (s *DashboardService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	db := s.DB.WithContext(ctx)
	var out Summary
	if err := db.Model(&models.Order{}).Count(&out.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	if err := db.Model(&models.Client{}).Count(&out.TotalClients).Error; err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}
	if err := db.Model(&models.Product{}).Count(&out.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	err := db.Model(&models.Order{}).
		Where("status IN ?", []models.OrderStatus{models.OrderStatusPending, models.OrderStatusInProduction}).
		Count(&out.PendingOrders).Error
	if err != nil {
		return nil, fmt.Errorf("count pending orders: %w", err)
	}
	return &out, nil
}

// ordersBetween loads orders whose date falls in [from, to) in Loc. The SQL
// range is widened by a day on both sides and the exact cut is made on the
// day key, so the result does not depend on how the driver stores zones.
func (s *DashboardService) ordersBetween(ctx context.Context, from, to time.Time, withItems bool) ([]models.Order, error) {
	q := s.DB.WithContext(ctx).
		Where("order_date >= ? AND order_date < ?", from.AddDate(0, 0, -1).UTC(), to.AddDate(0, 0, 1).UTC()).
		Order("order_date asc, id asc")
	if withItems {
		q = q.Preload("Items", orderedItems)
	}
	var rows []models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	lo, hi := from.Format(dates.DayLayout), to.AddDate(0, 0, -1).Format(dates.DayLayout)
	out := rows[:0]
	for _, o := range rows {
		key, ok := dates.DayKey(o.OrderDate, s.Loc)
		if ok && key >= lo && key <= hi {
			out = append(out, o)
		}
	}
	return out, nil
}

// OrdersPerDay counts orders for the last seven days, oldest first.
func (s *DashboardService) OrdersPerDay(ctx context.Context) ([]DayCount, error) {
	days := dates.LastDays(s.now(), 7, s.Loc)
	from, _ := time.ParseInLocation(dates.DayLayout, days[0], s.Loc)
	to := from.AddDate(0, 0, len(days))
	orders, err := s.ordersBetween(ctx, from, to, false)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(days))
	for _, o := range orders {
		key, _ := dates.DayKey(o.OrderDate, s.Loc)
		counts[key]++
	}
	out := make([]DayCount, len(days))
	for i, d := range days {
		out[i] = DayCount{Date: d, Count: counts[d]}
	}
	return out, nil
}

// DailyRevenue sums the orders of one day ("YYYY-MM-DD", empty for today).
func (s *DashboardService) DailyRevenue(ctx context.Context, day string) (*DailyRevenue, error) {
	start, err := dates.ParseDay(day, s.now(), s.Loc)
	if err != nil {
		return nil, apperr.Invalidf("date", "invalid_date")
	}
	orders, err := s.ordersBetween(ctx, start, start.AddDate(0, 0, 1), true)
	if err != nil {
		return nil, err
	}
	out := &DailyRevenue{Date: start.Format(dates.DayLayout), Revenue: decimal.Zero, Orders: []DailyOrder{}}
	for i := range orders {
		o := &orders[i]
		total := o.Subtotal()
		name := strings.TrimSpace(o.ClientName)
		if name == "" {
			name = UnnamedClient
		}
		out.Revenue = out.Revenue.Add(total)
		out.Orders = append(out.Orders, DailyOrder{ID: o.ID, ClientName: name, Total: total, Status: o.Status})
	}
	out.OrdersCount = len(out.Orders)
	return out, nil
}

// MonthlyRevenue sums the orders of one month ("YYYY-MM", empty for the
// current month) with an entry for every calendar day.
func (s *DashboardService) MonthlyRevenue(ctx context.Context, month string) (*MonthlyRevenue, error) {
	out, _, err := s.monthly(ctx, month)
	return out, err
}

func (s *DashboardService) monthly(ctx context.Context, month string) (*MonthlyRevenue, []models.Order, error) {
	first, err := dates.ParseMonth(month, s.now(), s.Loc)
	if err != nil {
		return nil, nil, apperr.Invalidf("month", "invalid_month")
	}
	orders, err := s.ordersBetween(ctx, first, first.AddDate(0, 1, 0), true)
	if err != nil {
		return nil, nil, err
	}
	byDay := map[string]*DayRevenue{}
	days := dates.DaysInMonth(first)
	out := &MonthlyRevenue{Month: first.Format(dates.MonthLayout), Revenue: decimal.Zero, DailyData: make([]DayRevenue, len(days))}
	for i, d := range days {
		out.DailyData[i] = DayRevenue{Date: d, Revenue: decimal.Zero}
		byDay[d] = &out.DailyData[i]
	}
	for i := range orders {
		key, _ := dates.DayKey(orders[i].OrderDate, s.Loc)
		total := orders[i].Subtotal()
		if e, ok := byDay[key]; ok {
			e.Revenue = e.Revenue.Add(total)
			e.Count++
		}
		out.Revenue = out.Revenue.Add(total)
		out.OrdersCount++
	}
	return out, orders, nil
}

// ExportMonthly renders the monthly report as an xlsx workbook.
func (s *DashboardService) ExportMonthly(ctx context.Context, month string) (export.Monthly, []byte, error) {
	rep, orders, err := s.monthly(ctx, month)
	if err != nil {
		return export.Monthly{}, nil, err
	}
	m := export.Monthly{Month: rep.Month, Revenue: rep.Revenue}
	for _, d := range rep.DailyData {
		m.Days = append(m.Days, export.DayRow{Date: d.Date, Count: d.Count, Revenue: d.Revenue})
	}
	for i := range orders {
		o := &orders[i]
		key, _ := dates.DayKey(o.OrderDate, s.Loc)
		name := o.ClientName
		if strings.TrimSpace(name) == "" {
			name = UnnamedClient
		}
		m.Orders = append(m.Orders, export.OrderRow{
			ID: o.ID, Date: key, Client: name, Status: o.Status.Label(),
			Items: len(o.Items), Revenue: o.Subtotal(),
		})
	}
	data, err := export.MonthlyXLSX(m)
	if err != nil {
		return m, nil, fmt.Errorf("export month %s: %w", m.Month, err)
	}
	return m, data, nil
}

// TopProducts ranks products by quantity sold across all orders. Lines are
// grouped by product id, or by name for lines without one.
func (s *DashboardService) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 5
	}
	var items []models.OrderItem
	err := s.DB.WithContext(ctx).
		Joins("JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL").
		Order("order_items.id asc").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	groups := map[string]*TopProduct{}
	var order []string
	for _, it := range items {
		key := "name:" + it.ProductName
		if it.ProductID != nil {
			key = fmt.Sprintf("id:%d", *it.ProductID)
		}
		g, ok := groups[key]
		if !ok {
			g = &TopProduct{ID: it.ProductID, Name: it.ProductName, Revenue: decimal.Zero}
			groups[key] = g
			order = append(order, key)
		}
		g.Count += it.Quantity
		g.Revenue = g.Revenue.Add(it.LineTotal())
	}
	out := make([]TopProduct, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
