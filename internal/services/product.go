package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/diewo77/go-printshop/internal/apperr"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaterialLine is one material association of a product.
type MaterialLine struct {
	MaterialID uint `json:"material_id"`
	Quantity   int  `json:"quantity"`
}

type ProductInput struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Supplier    string          `json:"supplier"`
	Description string          `json:"description"`
	Materials   []MaterialLine  `json:"materials"`

	MaterialID       *uint `json:"material_id"`
	MaterialQuantity int   `json:"material_quantity"`
}

func (in ProductInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if in.Price.IsNegative() {
		v.Add("price", "must_not_be_negative")
	}
	validation.NonNegativeInt("stock", in.Stock, v)
	validation.MaxInt("stock", in.Stock, MaxStock, v)
	validation.NonNegativeInt("material_quantity", in.MaterialQuantity, v)
	validation.MaxInt("material_quantity", in.MaterialQuantity, MaxQuantity, v)
	for i, m := range in.Materials {
		field := "materials[" + strconv.Itoa(i) + "]"
		validation.RequiredID(field+".material_id", m.MaterialID, v)
		validation.NonNegativeInt(field+".quantity", m.Quantity, v)
		validation.MaxInt(field+".quantity", m.Quantity, MaxQuantity, v)
	}
	return v
}

type ProductService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewProductService(db *gorm.DB, log *zap.Logger) *ProductService {
	return &ProductService{DB: db, Log: log}
}

// ProductFilter narrows List.
type ProductFilter struct {
	ListParams
	Category string
	LowStock int // when > 0, only products with stock below this value
}

func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Product{})
	if strings.TrimSpace(f.Query) != "" {
		q = q.Where("lower(name) LIKE ?", like(f.Query))
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.LowStock > 0 {
		q = q.Where("stock < ?", f.LowStock)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	var out []models.Product
	if err := q.Preload("Materials").Order("name asc, id asc").Limit(f.limit()).Offset(f.Offset).Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return out, total, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := findByID(s.DB.WithContext(ctx).Preload("Materials.Material"), &p, "product", id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if v := in.validate(); !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	p := models.Product{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkMaterials(tx, in); err != nil {
			return err
		}
		applyProduct(&p, in)
		p.Stock = in.Stock
		p.Materials = materialLinks(in.Materials)
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, wrapUnlessDomain(err, "create product")
	}
	s.Log.Info("product created", zap.Uint("product_id", p.ID), zap.String("name", p.Name))
	return &p, nil
}

// Update overwrites the product, including its stock, and replaces the
// material associations.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if v := in.validate(); !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	var p models.Product
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findByID(tx, &p, "product", id); err != nil {
			return err
		}
		if err := checkMaterials(tx, in); err != nil {
			return err
		}
		applyProduct(&p, in)
		p.Stock = in.Stock
		if err := tx.Omit("Materials").Save(&p).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&models.ProductMaterial{}).Error; err != nil {
			return err
		}
		p.Materials = materialLinks(in.Materials)
		for i := range p.Materials {
			p.Materials[i].ProductID = p.ID
		}
		if len(p.Materials) > 0 {
			return tx.Create(&p.Materials).Error
		}
		return nil
	})
	if err != nil {
		return nil, wrapUnlessDomain(err, fmt.Sprintf("update product %d", id))
	}
	return &p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product", id)
	}
	s.Log.Info("product deleted", zap.Uint("product_id", id))
	return nil
}

func applyProduct(p *models.Product, in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Price = in.Price
	p.Category = strings.TrimSpace(in.Category)
	p.Supplier = strings.TrimSpace(in.Supplier)
	p.Description = in.Description
	p.MaterialID = in.MaterialID
	if p.MaterialID != nil && *p.MaterialID == 0 {
		p.MaterialID = nil
	}
	p.MaterialQuantity = in.MaterialQuantity
}

func materialLinks(lines []MaterialLine) []models.ProductMaterial {
	out := make([]models.ProductMaterial, 0, len(lines))
	for _, l := range lines {
		out = append(out, models.ProductMaterial{MaterialID: l.MaterialID, Quantity: l.Quantity})
	}
	return out
}

// checkMaterials makes sure every referenced material exists.
func checkMaterials(tx *gorm.DB, in ProductInput) error {
	ids := make([]uint, 0, len(in.Materials)+1)
	for _, m := range in.Materials {
		ids = append(ids, m.MaterialID)
	}
	if in.MaterialID != nil && *in.MaterialID != 0 {
		ids = append(ids, *in.MaterialID)
	}
	for _, id := range ids {
		var n int64
		if err := tx.Model(&models.Material{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("material", id)
		}
	}
	return nil
}

func wrapUnlessDomain(err error, op string) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
