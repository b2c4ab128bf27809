package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/diewo77/go-printshop/internal/apperr"
	"github.com/diewo77/go-printshop/internal/metrics"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stock operations accepted by AdjustStock.
const (
	OpAdd    = "add"
	OpRemove = "remove"
)

var opAliases = map[string]string{
	OpAdd: OpAdd, "adicionar": OpAdd, "in": OpAdd,
	OpRemove: OpRemove, "remover": OpRemove, "out": OpRemove,
}

type MaterialInput struct {
	Name        string `json:"name"`
	Stock       int    `json:"stock"`
	Unit        string `json:"unit"`
	Category    string `json:"category"`
	Supplier    string `json:"supplier"`
	Description string `json:"description"`
}

func (in MaterialInput) validate() error {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.NonNegativeInt("stock", in.Stock, v)
	validation.MaxInt("stock", in.Stock, MaxStock, v)
	if !v.Empty() {
		return apperr.Invalid(v)
	}
	return nil
}

func (in MaterialInput) apply(m *models.Material) {
	m.Name = strings.TrimSpace(in.Name)
	m.Stock = in.Stock
	m.Unit = strings.TrimSpace(in.Unit)
	m.Category = strings.TrimSpace(in.Category)
	m.Supplier = strings.TrimSpace(in.Supplier)
	m.Description = in.Description
}

// AdjustInput is a manual stock correction.
type AdjustInput struct {
	Quantity  int    `json:"quantity"`
	Operation string `json:"operation"`
	Reason    string `json:"reason"`
	UserID    *uint  `json:"-"`
}

// AdjustResult reports the stock around an adjustment.
type AdjustResult struct {
	MaterialID    uint `json:"material_id"`
	PreviousStock int  `json:"previous_stock"`
	CurrentStock  int  `json:"current_stock"`
}

// MovementFilter narrows Movements.
type MovementFilter struct {
	EntityType string
	EntityID   uint
	OrderID    uint
	Limit      int
}

// InventoryService manages materials and their stock.
type InventoryService struct {
	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

func NewInventoryService(db *gorm.DB, log *zap.Logger, m *metrics.Metrics) *InventoryService {
	return &InventoryService{DB: db, Log: log, Metrics: m}
}

func (s *InventoryService) List(ctx context.Context, p ListParams) ([]models.Material, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Material{})
	if strings.TrimSpace(p.Query) != "" {
		pat := like(p.Query)
		q = q.Where("lower(name) LIKE ? OR lower(category) LIKE ?", pat, pat)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count materials: %w", err)
	}
	var out []models.Material
	if err := q.Order("name asc, id asc").Limit(p.limit()).Offset(p.Offset).Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}
	return out, total, nil
}

func (s *InventoryService) Get(ctx context.Context, id uint) (*models.Material, error) {
	var m models.Material
	if err := findByID(s.DB.WithContext(ctx), &m, "material", id); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *InventoryService) Create(ctx context.Context, in MaterialInput) (*models.Material, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var m models.Material
	in.apply(&m)
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("create material: %w", err)
	}
	s.Log.Info("material created", zap.Uint("material_id", m.ID), zap.String("name", m.Name))
	return &m, nil
}

func (s *InventoryService) Update(ctx context.Context, id uint, in MaterialInput) (*models.Material, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(m)
	if err := s.DB.WithContext(ctx).Save(m).Error; err != nil {
		return nil, fmt.Errorf("update material %d: %w", id, err)
	}
	return m, nil
}

// References counts live products using the material, through structured
// associations or the legacy single reference.
func (s *InventoryService) References(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Product{}).
		Where("material_id = ? OR id IN (?)", id,
			s.DB.Model(&models.ProductMaterial{}).Select("product_id").Where("material_id = ?", id)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count material references: %w", err)
	}
	return n, nil
}

// Delete refuses to remove a material still used by a product.
func (s *InventoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	refs, err := s.References(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apperr.Conflict("material", id, refs)
	}
	if err := s.DB.WithContext(ctx).Delete(&models.Material{}, id).Error; err != nil {
		return fmt.Errorf("delete material %d: %w", id, err)
	}
	s.Log.Info("material deleted", zap.Uint("material_id", id))
	return nil
}

// AdjustStock adds or removes stock manually. Removal never takes stock below
// zero.
func (s *InventoryService) AdjustStock(ctx context.Context, id uint, in AdjustInput) (*AdjustResult, error) {
	v := validation.Violations{}
	validation.PositiveInt("quantity", in.Quantity, v)
	validation.MaxInt("quantity", in.Quantity, MaxQuantity, v)
	op, ok := opAliases[strings.ToLower(strings.TrimSpace(in.Operation))]
	if !ok {
		v.Add("operation", "invalid_choice")
	}
	if !v.Empty() {
		return nil, apperr.Invalid(v)
	}

	var res AdjustResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Material
		if err := findByID(tx, &m, "material", id); err != nil {
			return err
		}
		var before, after int
		var err error
		delta := in.Quantity
		if op == OpRemove {
			delta = -in.Quantity
			before, after, err = decrementStock(tx, models.EntityMaterial, m.ID, m.Name, in.Quantity)
		} else {
			before, after, err = incrementStock(tx, models.EntityMaterial, m.ID, in.Quantity)
		}
		if err != nil {
			return err
		}
		res = AdjustResult{MaterialID: m.ID, PreviousStock: before, CurrentStock: after}
		return tx.Create(&models.StockMovement{
			EntityType:  models.EntityMaterial,
			EntityID:    m.ID,
			Delta:       delta,
			StockBefore: before,
			StockAfter:  after,
			Reason:      models.ReasonAdjustment,
			Note:        strings.TrimSpace(in.Reason),
			UserID:      in.UserID,
		}).Error
	})
	if err != nil {
		return nil, wrapUnlessDomain(err, fmt.Sprintf("adjust material %d", id))
	}
	s.Metrics.StockMoved(models.EntityMaterial, models.ReasonAdjustment)
	s.Log.Info("material stock adjusted",
		zap.Uint("material_id", id), zap.String("operation", op),
		zap.Int("quantity", in.Quantity), zap.Int("stock", res.CurrentStock))
	return &res, nil
}

// Movements lists recorded stock movements, newest first.
func (s *InventoryService) Movements(ctx context.Context, f MovementFilter) ([]models.StockMovement, error) {
	q := s.DB.WithContext(ctx).Model(&models.StockMovement{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.OrderID != 0 {
		q = q.Where("order_id = ?", f.OrderID)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []models.StockMovement
	if err := q.Order("id desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return out, nil
}
