package checkout

import (
	"errors"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// ValidationError is returned when the checkout form has invalid fields.
type ValidationError struct {
	Fields domain.FieldErrors
}

func (e *ValidationError) Error() string {
	var names []string
	if e.Fields.Name {
		names = append(names, "name")
	}
	if e.Fields.Phone {
		names = append(names, "phone")
	}
	if e.Fields.Email {
		names = append(names, "email")
	}
	return "invalid checkout form: " + strings.Join(names, ", ")
}
