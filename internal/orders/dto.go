package orders

import (
	"github.com/shopspring/decimal"

	"github.com/meatshare/orderbook-backend/pkg/db/models"
	"github.com/meatshare/orderbook-backend/pkg/enums"
)

// SubmitInput carries a customer submission. Quantities is keyed by
// catalog item key; values are raw form strings ("2", "1/2", "").
type SubmitInput struct {
	Name       string `validate:"required"`
	Phone      string `validate:"required,len=10,number"`
	PIN        string `validate:"omitempty,len=4,number"`
	Channel    enums.Channel
	Quantities map[string]string
}

// EditInput carries an admin edit of an existing order.
type EditInput struct {
	Quantities map[string]string
}

// OrderView is an order as shown on the dashboard, with the shared
// cost apportioned in by the caller where it applies.
type OrderView struct {
	Order        models.Order
	ShareOfCost  decimal.Decimal
	TotalWithFee decimal.Decimal
	Balance      decimal.Decimal
}
