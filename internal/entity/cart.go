package domain

import (
	"github.com/shopspring/decimal"
)

type CartLine struct {
	MenuID    int64           `json:"menu_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Notes     string          `json:"notes,omitempty"`
}

func (l CartLine) Validate() error {
	if l.MenuID <= 0 || l.Quantity < 1 || l.UnitPrice.IsNegative() {
		return ErrInvalidLine
	}
	return nil
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps one line per menu item in insertion order.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// AddItem merges the line into an existing one with the same menu id,
// or appends it.
func (c *Cart) AddItem(line CartLine) error {
	if err := line.Validate(); err != nil {
		return err
	}
	if i := c.index(line.MenuID); i >= 0 {
		c.Lines[i].Quantity += line.Quantity
		if line.Notes != "" {
			c.Lines[i].Notes = line.Notes
		}
		return nil
	}
	c.Lines = append(c.Lines, line)
	return nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity below one
// removes the line.
func (c *Cart) UpdateQuantity(menuID int64, qty int) error {
	i := c.index(menuID)
	if i < 0 {
		return ErrLineNotFound
	}
	if qty < 1 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return nil
	}
	c.Lines[i].Quantity = qty
	return nil
}

func (c *Cart) RemoveItem(menuID int64) bool {
	i := c.index(menuID)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

func (c *Cart) Clear() { c.Lines = nil }

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func (c *Cart) index(menuID int64) int {
	for i, l := range c.Lines {
		if l.MenuID == menuID {
			return i
		}
	}
	return -1
}

// Pricing owns the service fee so that cart preview and order submission
// always agree on it.
type Pricing struct {
	ServiceFee decimal.Decimal
}

type CartSummary struct {
	Lines      []CartLine      `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	ServiceFee decimal.Decimal `json:"service_fee"`
	Total      decimal.Decimal `json:"total"`
}

// Summarize derives subtotal, fee and total from the current lines.
func (p Pricing) Summarize(c *Cart) CartSummary {
	lines := c.Lines
	if lines == nil {
		lines = []CartLine{}
	}
	sub := c.Subtotal()
	return CartSummary{
		Lines:      lines,
		Subtotal:   sub,
		ServiceFee: p.ServiceFee,
		Total:      sub.Add(p.ServiceFee),
	}
}
