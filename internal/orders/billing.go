package orders

// BillingPeriod resolves the month and year an order is billed in. Stored
// values are authoritative; missing ones come from the order date in UTC.
func BillingPeriod(o Order) (month, year int, ok bool) {
	month, year = o.BillingMonth, o.BillingYear
	if month < 1 || month > 12 {
		month = 0
	}
	if year < 0 {
		year = 0
	}
	if (month == 0 || year == 0) && o.Date.Valid() {
		d := o.Date.UTC()
		if month == 0 {
			month = int(d.Month())
		}
		if year == 0 {
			year = d.Year()
		}
	}
	return month, year, month != 0 && year != 0
}

// ApplyBillingPeriod fills the billing fields at write time.
func ApplyBillingPeriod(o *Order) {
	if month, year, ok := BillingPeriod(*o); ok {
		o.BillingMonth = month
		o.BillingYear = year
	}
}
