package volume

import (
	"fmt"
	"strings"
)

// Order is the direction of the natural sort.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder validates an order name.
func ParseOrder(s string) (Order, error) {
	o := Order(strings.ToLower(strings.TrimSpace(s)))
	if err := o.Validate(); err != nil {
		return "", err
	}
	return o, nil
}

// Validate reports whether o is one of the two known orders.
func (o Order) Validate() error {
	if o != OrderAsc && o != OrderDesc {
		return fmt.Errorf("%w: order must be 'asc' or 'desc', got %q", ErrConfig, string(o))
	}
	return nil
}
