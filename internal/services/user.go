package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/internal/apperr"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or a
// wrong password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewUserService(db *gorm.DB, log *zap.Logger) *UserService {
	return &UserService{DB: db, Log: log}
}

// Authenticate checks an email/password pair against the stored bcrypt hash.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	var u models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(u.Password, password) {
		s.Log.Info("login failed", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	v := validation.Violations{}
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.MinLength("password", in.Password, 8, v)
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = models.RoleOperator
	}
	validation.OneOf("role", role, []string{models.RoleAdmin, models.RoleOperator}, v)
	if !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := models.User{
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Name:     strings.TrimSpace(in.Name),
		Password: hash,
		Role:     role,
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflictf("user", "email %s already registered", u.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.Log.Info("user created", zap.Uint("user_id", u.ID), zap.String("role", u.Role))
	return &u, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := findByID(s.DB.WithContext(ctx), &u, "user", id); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := s.DB.WithContext(ctx).Order("email asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// Exists reports whether the user is still active; used to reject sessions of
// deleted accounts.
func (s *UserService) Exists(ctx context.Context, id uint) bool {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false
	}
	return n > 0
}
