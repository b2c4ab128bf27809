// Package services holds the business operations of the print shop. Services
// talk to the store through gorm and return *apperr.Error for domain failures.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-printshop/internal/apperr"
	"gorm.io/gorm"
)

// Upper bounds on quantities accepted from callers. Stock arithmetic stays
// far from int overflow within these limits.
const (
	MaxQuantity = 1_000_000
	MaxStock    = 1_000_000_000
)

// mulQuantity multiplies two non-negative quantities, reporting false on
// overflow.
func mulQuantity(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	n := a * b
	if n/a != b {
		return 0, false
	}
	return n, true
}

// ListParams is the common list filter: free-text query plus paging.
type ListParams struct {
	Query  string
	Limit  int
	Offset int
}

func (p ListParams) limit() int {
	if p.Limit <= 0 || p.Limit > 500 {
		return 50
	}
	return p.Limit
}

// like builds a case-insensitive LIKE pattern.
func like(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}

// findByID loads dst by primary key, translating a missing row into NotFound.
func findByID(db *gorm.DB, dst any, entity string, id uint) error {
	if err := db.First(dst, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(entity, id)
		}
		return fmt.Errorf("load %s %d: %w", entity, id, err)
	}
	return nil
}

// isDuplicate reports unique-key violations across drivers.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate") || strings.Contains(s, "unique constraint")
}
