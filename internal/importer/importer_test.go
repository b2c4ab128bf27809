package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/db"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const export = `{
  "materials": {
    "mat1": {"nome": "Papel A4", "estoque": 500, "unidade": "folha"},
    "mat2": {"nome": "Lona", "estoque": "12", "categoria": "Comunicação visual"}
  },
  "products": [
    {"id": "p1", "nome": "Cópia", "preco": 0.25, "estoque": 1000,
     "materiais": [{"id": "mat1", "nome": "Papel A4", "quantidade": 1}]},
    {"id": "p2", "nome": "Banner", "preco": "60,00", "estoque": 5, "materialId": "mat2", "quantidadeMaterial": 1}
  ],
  "clients": {
    "c1": {"name": "Maria Silva", "email": "maria@example.com", "empresa": "Gráfica MS"}
  },
  "orders": {
    "o1": {"clientId": "c1", "status": "Entregue", "dataPedido": "2024-03-05T14:00:00.000Z",
           "items": [{"produto": "Cópia", "quantidade": 100, "precoUnitario": 0.25}]},
    "o2": {"clientId": "c1", "dataPedido": {"_seconds": 1709726400, "_nanoseconds": 0}, "desconto": 5,
           "items": [{"produto": "Banner", "quantidade": 1, "precoUnitario": 60},
                     {"produto": "Arte avulsa", "quantidade": 1, "precoUnitario": 30}]},
    "o3": {"clientId": "c1", "dataPedido": 1709812800000, "status": "desconhecido",
           "items": [{"produto": "Cópia", "quantidade": 10, "precoUnitario": 0.25}]},
    "o4": {"clientId": "ghost", "dataPedido": "2024-03-05", "items": []}
  }
}`

func setup(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Connect(config.DatabaseConfig{Driver: "sqlite", Path: "file:" + t.Name() + "?mode=memory&cache=shared"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(conn))
	return conn
}

func TestImport(t *testing.T) {
	conn := setup(t)
	im := New(conn, zap.NewNop(), time.UTC)

	res, err := im.Import(context.Background(), strings.NewReader(export))
	require.NoError(t, err)
	assert.Equal(t, Result{Materials: 2, Products: 2, Clients: 1, Orders: 3, Skipped: 1}, *res)

	var banner models.Product
	require.NoError(t, conn.Where("name = ?", "Banner").First(&banner).Error)
	assert.Equal(t, "60", banner.Price.String())
	require.NotNil(t, banner.MaterialID)
	assert.Equal(t, 1, banner.MaterialQuantity)

	var copia models.Product
	require.NoError(t, conn.Preload("Materials").Where("name = ?", "Cópia").First(&copia).Error)
	require.Len(t, copia.Materials, 1)
	assert.Equal(t, 1, copia.Materials[0].Quantity)

	var orders []models.Order
	require.NoError(t, conn.Preload("Items").Order("order_date asc").Find(&orders).Error)
	require.Len(t, orders, 3)
	assert.Equal(t, models.OrderStatusDelivered, orders[0].Status)
	assert.Equal(t, "Maria Silva", orders[0].ClientName)
	assert.Equal(t, "Gráfica MS", orders[0].ClientCompany)
	require.NotNil(t, orders[0].Items[0].ProductID)
	assert.Equal(t, copia.ID, *orders[0].Items[0].ProductID)

	assert.Equal(t, "2024-03-06", orders[1].OrderDate.UTC().Format("2006-01-02"))
	assert.Equal(t, "5", orders[1].Discount.String())
	require.Len(t, orders[1].Items, 2)
	assert.Nil(t, orders[1].Items[1].ProductID)

	assert.Equal(t, models.OrderStatusPending, orders[2].Status)
	assert.Equal(t, "2024-03-07", orders[2].OrderDate.UTC().Format("2006-01-02"))

	// stock is taken as exported
	assert.Equal(t, 1000, copia.Stock)
}

func TestImportTwiceSkipsExisting(t *testing.T) {
	conn := setup(t)
	im := New(conn, nil, nil)

	_, err := im.Import(context.Background(), strings.NewReader(export))
	require.NoError(t, err)
	res, err := im.Import(context.Background(), strings.NewReader(export))
	require.NoError(t, err)
	assert.Zero(t, res.Materials+res.Products+res.Clients+res.Orders)

	var n int64
	conn.Model(&models.Order{}).Count(&n)
	assert.EqualValues(t, 3, n)
}

func TestImportRejectsGarbage(t *testing.T) {
	im := New(setup(t), nil, nil)
	_, err := im.Import(context.Background(), strings.NewReader("not json"))
	assert.Error(t, err)
	_, err = im.Import(context.Background(), strings.NewReader(`{"clients": 42}`))
	assert.Error(t, err)
}
