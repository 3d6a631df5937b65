package perf

import (
	"fmt"
	"time"

	"github.com/homebite/orderdesk/internal/orders"
)

// generateOrders builds n orders spread over the year before 2025-06-30,
// cycling modes, payment states and a few hundred addresses.
func generateOrders(n int) []orders.Order {
	modes := []string{"Breakfast", "Lunch", "Dinner"}
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	list := make([]orders.Order, 0, n)
	for i := 0; i < n; i++ {
		day := end.AddDate(0, 0, -(i % 365))
		qty := 1 + i%4
		price := float64(100 + 10*(i%5))
		o := orders.Order{
			OrderID:         orders.FormatOrderID(day, i+1),
			Date:            orders.NewDate(day),
			DeliveryAddress: fmt.Sprintf("Tower %c-%d", 'A'+rune(i%6), 100+i%300),
			Quantity:        qty,
			UnitPrice:       price,
			Total:           float64(qty) * price,
			Mode:            modes[i%len(modes)],
			Status:          orders.StatusUnpaid,
			PaymentStatus:   orders.PaymentPending,
		}
		if i%3 != 0 {
			o.Status = orders.StatusPaid
			o.PaymentStatus = orders.PaymentPaid
			o.PaymentMode = orders.PaymentModeOnline
		}
		orders.ApplyBillingPeriod(&o)
		list = append(list, o)
	}
	return list
}
