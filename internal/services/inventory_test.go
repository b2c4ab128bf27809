package services

import (
	"context"
	"testing"

	"github.com/diewo77/go-printshop/internal/apperr"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAdjustStock(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInventoryService(conn, zap.NewNop(), nil)
	ctx := context.Background()
	m, err := svc.Create(ctx, MaterialInput{Name: "Lona", Stock: 10, Unit: "m²"})
	require.NoError(t, err)

	res, err := svc.AdjustStock(ctx, m.ID, AdjustInput{Quantity: 5, Operation: "add", Reason: "compra"})
	require.NoError(t, err)
	assert.Equal(t, AdjustResult{MaterialID: m.ID, PreviousStock: 10, CurrentStock: 15}, *res)

	res, err = svc.AdjustStock(ctx, m.ID, AdjustInput{Quantity: 15, Operation: "remover"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.CurrentStock)

	_, err = svc.AdjustStock(ctx, m.ID, AdjustInput{Quantity: 1, Operation: "remove"})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInsufficientStock, e.Kind)
	assert.Equal(t, 0, e.Available)

	moves, err := svc.Movements(ctx, MovementFilter{EntityType: models.EntityMaterial, EntityID: m.ID})
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, -15, moves[0].Delta)
	assert.Equal(t, 5, moves[1].Delta)
	assert.Equal(t, "compra", moves[1].Note)
	assert.Equal(t, models.ReasonAdjustment, moves[1].Reason)
}

func TestAdjustStockValidation(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInventoryService(conn, zap.NewNop(), nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   AdjustInput
	}{
		{"zero quantity", AdjustInput{Quantity: 0, Operation: "add"}},
		{"negative quantity", AdjustInput{Quantity: -3, Operation: "add"}},
		{"unknown operation", AdjustInput{Quantity: 1, Operation: "set"}},
		{"quantity above limit", AdjustInput{Quantity: MaxQuantity + 1, Operation: "add"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AdjustStock(ctx, 1, tt.in)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}

	_, err := svc.AdjustStock(ctx, 42, AdjustInput{Quantity: 1, Operation: "add"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAdjustStockRefusesStockAboveLimit(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInventoryService(conn, zap.NewNop(), nil)
	m := models.Material{Name: "Toner", Stock: MaxStock - 1}
	mustCreate(t, conn, &m)

	_, err := svc.AdjustStock(context.Background(), m.ID, AdjustInput{Quantity: 2, Operation: "add"})
	e, ok := apperr.As(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Equal(t, "too_large", e.Violations["quantity"])
	assert.Equal(t, MaxStock-1, stockOf(t, conn, &models.Material{}, m.ID))

	res, err := svc.AdjustStock(context.Background(), m.ID, AdjustInput{Quantity: 1, Operation: "add"})
	require.NoError(t, err)
	assert.Equal(t, MaxStock, res.CurrentStock)
}

func TestDeleteMaterialInUse(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInventoryService(conn, zap.NewNop(), nil)
	ctx := context.Background()
	f := newFixture(t, conn)
	legacy := models.Product{Name: "Adesivo", Stock: 1, MaterialID: &f.material.ID, MaterialQuantity: 1}
	mustCreate(t, conn, &legacy)

	err := svc.Delete(ctx, f.material.ID)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, e.Kind)
	assert.EqualValues(t, 2, e.References)

	require.NoError(t, conn.Delete(&models.Product{}, legacy.ID).Error)
	require.NoError(t, conn.Delete(&models.Product{}, f.product.ID).Error)
	require.NoError(t, svc.Delete(ctx, f.material.ID))
	assert.True(t, apperr.Is(svc.Delete(ctx, f.material.ID), apperr.KindNotFound))
}

func TestMaterialCRUD(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewInventoryService(conn, zap.NewNop(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, MaterialInput{Stock: -1})
	e, _ := apperr.As(err)
	require.NotNil(t, e)
	assert.Contains(t, e.Violations, "name")
	assert.Contains(t, e.Violations, "stock")

	m, err := svc.Create(ctx, MaterialInput{Name: " Papel Kraft ", Stock: 3, Category: "Papel"})
	require.NoError(t, err)
	assert.Equal(t, "Papel Kraft", m.Name)

	m, err = svc.Update(ctx, m.ID, MaterialInput{Name: "Papel Kraft 80g", Stock: 7, Category: "Papel"})
	require.NoError(t, err)
	assert.Equal(t, 7, m.Stock)

	list, total, err := svc.List(ctx, ListParams{Query: "kraft"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Papel Kraft 80g", list[0].Name)
}
