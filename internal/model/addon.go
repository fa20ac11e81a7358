package model

import "github.com/shopspring/decimal"

// Addon is an optional extra a user can attach to a booking, such as
// extra luggage or an on-board meal.  The fee charged for the known
// add-on kinds is a flat amount resolved by the pricing package from
// the add-on name; Price holds the catalogue value for display.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – catalogue name, e.g. "EXTRA_LUGGAGE".
//  Description – optional human readable description.
//  Price       – listed price of the add-on.
type Addon struct {
	ID          uint64          // addons.id
	Name        string          // addons.name
	Description string          // addons.description
	Price       decimal.Decimal // addons.price
}
