package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-printshop/internal/apperr"
	"github.com/diewo77/go-printshop/internal/dates"
	"github.com/diewo77/go-printshop/internal/metrics"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderItemInput is one requested line. ProductID is preferred; ProductName
// alone resolves to the first product with that exact name. A nil UnitPrice
// takes the product's current price.
type OrderItemInput struct {
	ProductID   *uint            `json:"product_id"`
	ProductName string           `json:"product_name"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

type OrderInput struct {
	ClientID  uint             `json:"client_id"`
	Items     []OrderItemInput `json:"items"`
	Status    string           `json:"status"`
	OrderDate *dates.Flexible  `json:"order_date"`
	Discount  decimal.Decimal  `json:"discount"`
	Notes     string           `json:"notes"`
	UserID    *uint            `json:"-"`
}

// OrderUpdate changes an existing order. Nil fields are left untouched.
// Replacing items never touches stock.
type OrderUpdate struct {
	Status    *string           `json:"status"`
	OrderDate *dates.Flexible   `json:"order_date"`
	Discount  *decimal.Decimal  `json:"discount"`
	Notes     *string           `json:"notes"`
	Items     *[]OrderItemInput `json:"items"`
}

// OrderFilter narrows List.
type OrderFilter struct {
	ListParams
	Status   string
	ClientID uint
	From, To time.Time
}

type OrderService struct {
	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func NewOrderService(db *gorm.DB, log *zap.Logger, m *metrics.Metrics) *OrderService {
	return &OrderService{DB: db, Log: log, Metrics: m, Now: time.Now}
}

func validateItems(items []OrderItemInput, v validation.Violations) {
	if len(items) == 0 {
		v.Add("items", "required")
		return
	}
	for i, it := range items {
		field := "items[" + strconv.Itoa(i) + "]"
		if (it.ProductID == nil || *it.ProductID == 0) && strings.TrimSpace(it.ProductName) == "" {
			v.Add(field+".product_id", "required")
		}
		validation.PositiveInt(field+".quantity", it.Quantity, v)
		validation.MaxInt(field+".quantity", it.Quantity, MaxQuantity, v)
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			v.Add(field+".unit_price", "must_not_be_negative")
		}
	}
}

func parseStatus(raw string, v validation.Violations) models.OrderStatus {
	if strings.TrimSpace(raw) == "" {
		return models.OrderStatusPending
	}
	st, err := models.ParseOrderStatus(raw)
	if err != nil {
		v.Add("status", "invalid_choice")
	}
	return st
}

// Create records an order and takes its stock in one transaction: for each
// line the product is decremented by the quantity and each material it
// consumes by per-unit quantity times the line quantity. Any failure rolls
// back every change of the order.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	v := validation.Violations{}
	validation.RequiredID("client_id", in.ClientID, v)
	validateItems(in.Items, v)
	status := parseStatus(in.Status, v)
	if in.Discount.IsNegative() {
		v.Add("discount", "must_not_be_negative")
	}
	if !v.Empty() {
		s.Metrics.OrderFailed(string(apperr.KindValidation))
		return nil, apperr.Invalid(v)
	}

	orderDate := s.Now()
	if in.OrderDate != nil && !in.OrderDate.IsZero() {
		orderDate = in.OrderDate.Time
	}

	var order models.Order
	var moves []models.StockMovement
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := findByID(tx, &client, "client", in.ClientID); err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(in.Items))
		for i, it := range in.Items {
			product, err := resolveProduct(tx, it)
			if err != nil {
				return err
			}
			before, after, err := decrementStock(tx, models.EntityProduct, product.ID, product.Name, it.Quantity)
			if err != nil {
				return err
			}
			moves = append(moves, models.StockMovement{
				EntityType: models.EntityProduct, EntityID: product.ID, Delta: -it.Quantity,
				StockBefore: before, StockAfter: after, Reason: models.ReasonOrder, UserID: in.UserID,
			})

			for _, req := range product.Requirements() {
				var mat models.Material
				if err := findByID(tx, &mat, "material", req.MaterialID); err != nil {
					return err
				}
				need, ok := mulQuantity(req.PerUnit, it.Quantity)
				if !ok {
					return apperr.InsufficientStock(models.EntityMaterial, mat.ID, mat.Name, math.MaxInt, mat.Stock)
				}
				before, after, err := decrementStock(tx, models.EntityMaterial, mat.ID, mat.Name, need)
				if err != nil {
					return err
				}
				moves = append(moves, models.StockMovement{
					EntityType: models.EntityMaterial, EntityID: mat.ID, Delta: -need,
					StockBefore: before, StockAfter: after, Reason: models.ReasonOrder, UserID: in.UserID,
					Note: product.Name,
				})
			}

			items = append(items, lineFor(i, it, product))
		}

		order = models.Order{
			ClientID:      client.ID,
			ClientName:    client.Name,
			ClientEmail:   client.Email,
			ClientCompany: client.Company,
			Status:        status,
			OrderDate:     orderDate.UTC(),
			Discount:      in.Discount,
			Notes:         strings.TrimSpace(in.Notes),
			Items:         items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range moves {
			moves[i].OrderID = &order.ID
		}
		return tx.Create(&moves).Error
	})
	if err != nil {
		reason := "store_error"
		if e, ok := apperr.As(err); ok {
			reason = string(e.Kind)
		}
		s.Metrics.OrderFailed(reason)
		s.Log.Info("order rejected", zap.Uint("client_id", in.ClientID), zap.String("reason", reason), zap.Error(err))
		return nil, wrapUnlessDomain(err, "create order")
	}

	s.Metrics.OrderCreated()
	for _, m := range moves {
		s.Metrics.StockMoved(m.EntityType, m.Reason)
	}
	s.Log.Info("order created",
		zap.Uint("order_id", order.ID), zap.Uint("client_id", order.ClientID),
		zap.Int("items", len(order.Items)), zap.Int("stock_movements", len(moves)))
	return &order, nil
}

// resolveProduct looks the product up by id, or by exact name when no id is
// given. Materials are preloaded.
func resolveProduct(tx *gorm.DB, it OrderItemInput) (*models.Product, error) {
	var p models.Product
	q := tx.Preload("Materials", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
	if it.ProductID != nil && *it.ProductID != 0 {
		if err := findByID(q, &p, "product", *it.ProductID); err != nil {
			return nil, err
		}
		return &p, nil
	}
	name := strings.TrimSpace(it.ProductName)
	if err := q.Where("name = ?", name).Order("id asc").First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundByName("product", name)
		}
		return nil, fmt.Errorf("find product %q: %w", name, err)
	}
	return &p, nil
}

func lineFor(pos int, it OrderItemInput, p *models.Product) models.OrderItem {
	line := models.OrderItem{
		Position:    pos,
		ProductName: strings.TrimSpace(it.ProductName),
		Quantity:    it.Quantity,
	}
	if p != nil {
		id := p.ID
		line.ProductID = &id
		if line.ProductName == "" {
			line.ProductName = p.Name
		}
		line.UnitPrice = p.Price
	}
	if it.UnitPrice != nil {
		line.UnitPrice = *it.UnitPrice
	}
	return line
}

func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		st, err := models.ParseOrderStatus(f.Status)
		if err != nil {
			return nil, 0, apperr.Invalidf("status", "invalid_choice")
		}
		q = q.Where("status = ?", st)
	}
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if !f.From.IsZero() {
		q = q.Where("order_date >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("order_date < ?", f.To.UTC())
	}
	if strings.TrimSpace(f.Query) != "" {
		q = q.Where("lower(client_name) LIKE ?", like(f.Query))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	var out []models.Order
	err := q.Preload("Items", orderedItems).
		Order("order_date desc, id desc").
		Limit(f.limit()).Offset(f.Offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return out, total, nil
}

func orderedItems(db *gorm.DB) *gorm.DB { return db.Order("position asc, id asc") }

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := findByID(s.DB.WithContext(ctx).Preload("Items", orderedItems), &o, "order", id); err != nil {
		return nil, err
	}
	return &o, nil
}

// Update edits an order without re-validating or moving stock.
func (s *OrderService) Update(ctx context.Context, id uint, in OrderUpdate) (*models.Order, error) {
	v := validation.Violations{}
	var status models.OrderStatus
	if in.Status != nil {
		status = parseStatus(*in.Status, v)
	}
	if in.Discount != nil && in.Discount.IsNegative() {
		v.Add("discount", "must_not_be_negative")
	}
	if in.Items != nil {
		validateItems(*in.Items, v)
	}
	if !v.Empty() {
		return nil, apperr.Invalid(v)
	}

	var o models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findByID(tx, &o, "order", id); err != nil {
			return err
		}
		if in.Status != nil {
			o.Status = status
		}
		if in.OrderDate != nil && !in.OrderDate.IsZero() {
			o.OrderDate = in.OrderDate.UTC()
		}
		if in.Discount != nil {
			o.Discount = *in.Discount
		}
		if in.Notes != nil {
			o.Notes = strings.TrimSpace(*in.Notes)
		}
		if err := tx.Omit("Items").Save(&o).Error; err != nil {
			return err
		}
		if in.Items == nil {
			return tx.Where("order_id = ?", o.ID).Order("position asc, id asc").Find(&o.Items).Error
		}
		if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		o.Items = o.Items[:0]
		for i, it := range *in.Items {
			p, err := lookupProduct(tx, it)
			if err != nil {
				return err
			}
			line := lineFor(i, it, p)
			line.OrderID = o.ID
			o.Items = append(o.Items, line)
		}
		return tx.Create(&o.Items).Error
	})
	if err != nil {
		return nil, wrapUnlessDomain(err, fmt.Sprintf("update order %d", id))
	}
	s.Log.Info("order updated", zap.Uint("order_id", id))
	return &o, nil
}

// lookupProduct is resolveProduct for edits: an unknown product name is kept
// as free text instead of failing, an unknown id still fails.
func lookupProduct(tx *gorm.DB, it OrderItemInput) (*models.Product, error) {
	p, err := resolveProduct(tx, it)
	if err == nil {
		return p, nil
	}
	if e, ok := apperr.As(err); ok && e.Kind == apperr.KindNotFound && e.Name != "" {
		return nil, nil
	}
	return nil, err
}

// UpdateStatus moves an order to another status.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, raw string) (*models.Order, error) {
	st, err := models.ParseOrderStatus(raw)
	if err != nil {
		return nil, apperr.Invalidf("status", "invalid_choice")
	}
	res := s.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", st)
	if res.Error != nil {
		return nil, fmt.Errorf("update order %d status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("order", id)
	}
	s.Log.Info("order status changed", zap.Uint("order_id", id), zap.String("status", string(st)))
	return s.Get(ctx, id)
}

// Delete removes the order. Stock taken by the order is not restored.
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Order{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("order", id)
	}
	s.Log.Info("order deleted", zap.Uint("order_id", id))
	return nil
}
