package services

import (
	"github.com/diewo77/go-printshop/internal/apperr"
	"github.com/diewo77/go-printshop/internal/models"
	"gorm.io/gorm"
)

// decrementStock takes qty units from a product or material in a single
// conditional UPDATE so concurrent orders can never oversell. It returns the
// stock before and after, or an InsufficientStock error carrying the stock
// observed at failure time.
func decrementStock(tx *gorm.DB, entity string, id uint, name string, qty int) (before, after int, err error) {
	if qty < 0 {
		return 0, 0, apperr.Invalidf("quantity", "must_not_be_negative")
	}
	model := stockModel(entity)
	res := tx.Model(model).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return 0, 0, res.Error
	}
	current, err := currentStock(tx, entity, id)
	if err != nil {
		return 0, 0, err
	}
	if res.RowsAffected == 0 {
		return 0, 0, apperr.InsufficientStock(entity, id, name, qty, current)
	}
	return current + qty, current, nil
}

// incrementStock adds qty units. The update is refused when the result would
// exceed MaxStock.
func incrementStock(tx *gorm.DB, entity string, id uint, qty int) (before, after int, err error) {
	if qty < 0 || qty > MaxStock {
		return 0, 0, apperr.Invalidf("quantity", "too_large")
	}
	res := tx.Model(stockModel(entity)).
		Where("id = ? AND stock <= ?", id, MaxStock-qty).
		Update("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return 0, 0, res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := tx.Model(stockModel(entity)).Where("id = ?", id).Count(&n).Error; err != nil {
			return 0, 0, err
		}
		if n == 0 {
			return 0, 0, apperr.NotFound(entity, id)
		}
		return 0, 0, apperr.Invalidf("quantity", "too_large")
	}
	current, err := currentStock(tx, entity, id)
	if err != nil {
		return 0, 0, err
	}
	return current - qty, current, nil
}

func currentStock(tx *gorm.DB, entity string, id uint) (int, error) {
	var stock int
	err := tx.Model(stockModel(entity)).Select("stock").Where("id = ?", id).Scan(&stock).Error
	return stock, err
}

func stockModel(entity string) any {
	if entity == models.EntityMaterial {
		return &models.Material{}
	}
	return &models.Product{}
}
