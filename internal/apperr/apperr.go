// Package apperr defines the typed domain errors returned by the core.
// Callers branch on Code or Class, never on message text.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	NotFound        Code = "NOT_FOUND"
	ProductNotFound Code = "PRODUCT_NOT_FOUND"
	SaleNotFound    Code = "SALE_NOT_FOUND"
	SessionNotFound Code = "SESSION_NOT_FOUND"

	BadStatus          Code = "BAD_STATUS"
	AlreadyDecided     Code = "ALREADY_DECIDED"
	AlreadyRefunded    Code = "ALREADY_REFUNDED"
	DuplicateCredit    Code = "DUPLICATE_CREDIT"
	DuplicatePayment   Code = "DUPLICATE_PAYMENT"
	SessionAlreadyOpen Code = "SESSION_ALREADY_OPEN"
	NotApproved        Code = "NOT_APPROVED"

	BadQty      Code = "BAD_QTY"
	BadPrice    Code = "BAD_PRICE"
	BadDiscount Code = "BAD_DISCOUNT"
	BadAmount   Code = "BAD_AMOUNT"
	// Invalid covers malformed commands: missing names, unknown decisions.
	Invalid Code = "INVALID"

	PriceTooHigh               Code = "PRICE_TOO_HIGH"
	DiscountTooHigh            Code = "DISCOUNT_TOO_HIGH"
	SaleDiscountTooHigh        Code = "SALE_DISCOUNT_TOO_HIGH"
	InsufficientStock          Code = "INSUFFICIENT_STOCK"
	InsufficientSellerStock    Code = "INSUFFICIENT_SELLER_STOCK"
	InsufficientInventoryStock Code = "INSUFFICIENT_INVENTORY_STOCK"

	Forbidden Code = "FORBIDDEN"
)

type Class int

const (
	ClassUnknown Class = iota
	ClassNotFound
	ClassConflict
	ClassValidation
	ClassBusinessRule
	ClassForbidden
)

func (c Class) String() string {
	switch c {
	case ClassNotFound:
		return "not_found"
	case ClassConflict:
		return "conflict"
	case ClassValidation:
		return "validation"
	case ClassBusinessRule:
		return "business_rule"
	case ClassForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Class reports the taxonomy class of a code. Unknown codes return ClassUnknown.
func (c Code) Class() Class {
	switch c {
	case NotFound, ProductNotFound, SaleNotFound, SessionNotFound:
		return ClassNotFound
	case BadStatus, AlreadyDecided, AlreadyRefunded, DuplicateCredit, DuplicatePayment, SessionAlreadyOpen, NotApproved:
		return ClassConflict
	case BadQty, BadPrice, BadDiscount, BadAmount, Invalid:
		return ClassValidation
	case PriceTooHigh, DiscountTooHigh, SaleDiscountTooHigh, InsufficientStock, InsufficientSellerStock, InsufficientInventoryStock:
		return ClassBusinessRule
	case Forbidden:
		return ClassForbidden
	default:
		return ClassUnknown
	}
}

type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"error"`
	// Status is the current lifecycle state when Code is BadStatus.
	Status string `json:"status,omitempty"`
}

func (e *Error) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s: %s (status=%s)", e.Code, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrongStatus builds a BadStatus error carrying the entity's current status.
func WrongStatus(entity string, current string) *Error {
	return &Error{
		Code:    BadStatus,
		Message: fmt.Sprintf("%s is %s", entity, current),
		Status:  current,
	}
}

func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func CodeOf(err error) (Code, bool) {
	appErr, ok := As(err)
	if !ok {
		return "", false
	}
	return appErr.Code, true
}

func Is(err error, code Code) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}

// ClassOf returns ClassUnknown for nil and for errors outside the taxonomy.
func ClassOf(err error) Class {
	code, ok := CodeOf(err)
	if !ok {
		return ClassUnknown
	}
	return code.Class()
}
