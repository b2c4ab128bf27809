package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/diewo77/go-printshop/validation"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"not found by id", NotFound("client", uint(7)), "client 7 not found"},
		{"not found by name", NotFoundByName("product", "Banner"), `product "Banner" not found`},
		{"insufficient", InsufficientStock("material", 3, "Papel A4", 12, 5), `insufficient stock for material "Papel A4": requested 12, available 5`},
		{"conflict refs", Conflict("material", uint(2), 3), "material 2 is referenced by 3 record(s)"},
		{"conflict msg", Conflictf("user", "email %s already registered", "a@b"), "email a@b already registered"},
		{"invalid", Invalid(validation.Violations{"name": "required"}), "validation failed: 1 field(s)"},
		{"invalidf", Invalidf("quantity", "must_be_positive"), "validation failed: quantity must_be_positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create order: %w", InsufficientStock("product", 1, "Cartão", 6, 5))

	e, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, 6, e.Requested)
	assert.True(t, Is(err, KindInsufficientStock))
	assert.False(t, Is(err, KindNotFound))

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}
