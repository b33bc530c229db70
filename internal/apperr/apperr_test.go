package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodesMapToClasses(t *testing.T) {
	cases := map[Code]Class{
		NotFound:                   ClassNotFound,
		SaleNotFound:               ClassNotFound,
		SessionNotFound:            ClassNotFound,
		BadStatus:                  ClassConflict,
		AlreadyRefunded:            ClassConflict,
		SessionAlreadyOpen:         ClassConflict,
		NotApproved:                ClassConflict,
		BadQty:                     ClassValidation,
		BadAmount:                  ClassValidation,
		Invalid:                    ClassValidation,
		SaleDiscountTooHigh:        ClassBusinessRule,
		InsufficientInventoryStock: ClassBusinessRule,
		Forbidden:                  ClassForbidden,
		Code("SOMETHING_ELSE"):     ClassUnknown,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.Class(), "code %s", code)
	}
}

func TestWrappedErrorKeepsCode(t *testing.T) {
	err := fmt.Errorf("mark sale: %w", WrongStatus("sale", "COMPLETED"))

	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, BadStatus, code)
	assert.True(t, Is(err, BadStatus))
	assert.Equal(t, ClassConflict, ClassOf(err))

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "COMPLETED", appErr.Status)
}

func TestUnknownErrorHasNoClass(t *testing.T) {
	assert.Equal(t, ClassUnknown, ClassOf(errors.New("boom")))
	assert.Equal(t, ClassUnknown, ClassOf(nil))
	assert.False(t, Is(errors.New("boom"), NotFound))
}
