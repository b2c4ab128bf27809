package services

import (
	"testing"
	"time"

	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/db"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: "file:" + t.Name() + "?mode=memory&cache=shared"}
	conn, err := db.Connect(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func mustCreate(t *testing.T, conn *gorm.DB, v any) {
	t.Helper()
	require.NoError(t, conn.Create(v).Error)
}

func stockOf(t *testing.T, conn *gorm.DB, model any, id uint) int {
	t.Helper()
	var stock int
	require.NoError(t, conn.Model(model).Select("stock").Where("id = ?", id).Scan(&stock).Error)
	return stock
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// fixture is a client, a material and a product consuming 2 units of it.
type fixture struct {
	client   models.Client
	material models.Material
	product  models.Product
}

func newFixture(t *testing.T, conn *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		client:   models.Client{Name: "Maria Silva", Email: "maria@example.com", Company: "Gráfica MS"},
		material: models.Material{Name: "Papel A4", Stock: 15, Unit: "folha"},
	}
	mustCreate(t, conn, &f.client)
	mustCreate(t, conn, &f.material)
	f.product = models.Product{
		Name: "Panfleto", Price: money("1.50"), Stock: 10,
		Materials: []models.ProductMaterial{{MaterialID: f.material.ID, Quantity: 2}},
	}
	mustCreate(t, conn, &f.product)
	return f
}

func fixedNow(s string) func() time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return ts }
}
