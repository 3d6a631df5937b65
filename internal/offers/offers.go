// Package offers manages promotional offers and the public list of the ones
// currently running.
package offers

import (
	"strings"
	"time"

	"github.com/homebite/orderdesk/internal/orders"
)

// PublicDateLayout is how offer dates are shown to customers.
const PublicDateLayout = "02-Jan-2006"

// Offer is a discount campaign. Unset dates leave that side of the window open.
type Offer struct {
	ID              string      `json:"id"`
	Title           string      `json:"title" validate:"required,max=120,no_xss"`
	Description     string      `json:"description,omitempty" validate:"max=1000,no_xss"`
	DiscountPercent float64     `json:"discountPercent" validate:"gte=0,lte=100"`
	Code            string      `json:"code,omitempty" validate:"omitempty,max=40,alphanum"`
	StartDate       orders.Date `json:"startDate"`
	EndDate         orders.Date `json:"endDate"`
	IsActive        bool        `json:"isActive"`
}

// PublicOffer is the customer-facing view of an active offer.
type PublicOffer struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	DiscountPercent float64 `json:"discountPercent"`
	Code            string  `json:"code,omitempty"`
	StartDate       string  `json:"startDate,omitempty"`
	EndDate         string  `json:"endDate,omitempty"`
}

// Running reports whether o is switched on and today falls inside its
// window, both ends inclusive. today must be a UTC midnight.
func (o Offer) Running(today time.Time) bool {
	if !o.IsActive {
		return false
	}
	if o.StartDate.Valid() && today.Before(o.StartDate.Time) {
		return false
	}
	if o.EndDate.Valid() && today.After(o.EndDate.Time) {
		return false
	}
	return true
}

// Public formats o for customers.
func (o Offer) Public() PublicOffer {
	p := PublicOffer{
		ID:              o.ID,
		Title:           o.Title,
		Description:     o.Description,
		DiscountPercent: o.DiscountPercent,
		Code:            strings.ToUpper(o.Code),
	}
	if o.StartDate.Valid() {
		p.StartDate = o.StartDate.Format(PublicDateLayout)
	}
	if o.EndDate.Valid() {
		p.EndDate = o.EndDate.Format(PublicDateLayout)
	}
	return p
}

// ActiveOffers filters list down to the running offers, in list order.
func ActiveOffers(list []Offer, today time.Time) []PublicOffer {
	out := []PublicOffer{}
	for _, o := range list {
		if o.Running(today) {
			out = append(out, o.Public())
		}
	}
	return out
}
