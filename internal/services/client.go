package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/diewo77/go-printshop/internal/apperr"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ClientInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
	Address  string `json:"address"`
	Company  string `json:"company"`
}

func (in ClientInput) validate() error {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Email("email", in.Email, v)
	if !v.Empty() {
		return apperr.Invalid(v)
	}
	return nil
}

func (in ClientInput) apply(c *models.Client) {
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Document = strings.TrimSpace(in.Document)
	c.Address = strings.TrimSpace(in.Address)
	c.Company = strings.TrimSpace(in.Company)
}

type ClientService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewClientService(db *gorm.DB, log *zap.Logger) *ClientService {
	return &ClientService{DB: db, Log: log}
}

func (s *ClientService) List(ctx context.Context, p ListParams) ([]models.Client, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Client{})
	if strings.TrimSpace(p.Query) != "" {
		pat := like(p.Query)
		q = q.Where("lower(name) LIKE ? OR lower(company) LIKE ? OR lower(email) LIKE ?", pat, pat, pat)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}
	var out []models.Client
	if err := q.Order("name asc, id asc").Limit(p.limit()).Offset(p.Offset).Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	return out, total, nil
}

func (s *ClientService) Get(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := findByID(s.DB.WithContext(ctx), &c, "client", id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ClientService) Create(ctx context.Context, in ClientInput) (*models.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var c models.Client
	in.apply(&c)
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	s.Log.Info("client created", zap.Uint("client_id", c.ID))
	return &c, nil
}

// Update overwrites the client. Orders keep the client fields copied when
// they were created.
func (s *ClientService) Update(ctx context.Context, id uint, in ClientInput) (*models.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	if err := s.DB.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("update client %d: %w", id, err)
	}
	return c, nil
}

func (s *ClientService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Client{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete client %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("client", id)
	}
	s.Log.Info("client deleted", zap.Uint("client_id", id))
	return nil
}
