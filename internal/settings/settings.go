// Package settings holds the business profile and the percentages the profit
// estimator works from.
package settings

import (
	"github.com/homebite/orderdesk/internal/reports"
)

// DocumentKey is where the settings document is stored.
const DocumentKey = "settings"

// Settings is the single business settings document.
type Settings struct {
	BusinessName       string   `json:"businessName" validate:"max=120,no_xss"`
	Phone              string   `json:"phone" validate:"omitempty,max=20"`
	Email              string   `json:"email" validate:"omitempty,email"`
	Address            string   `json:"address" validate:"max=300,no_xss"`
	Currency           string   `json:"currency" validate:"omitempty,len=3,alpha"`
	DefaultUnitPrice   float64  `json:"defaultUnitPrice" validate:"gte=0,lte=1000"`
	ExpensePercentage  float64  `json:"expensePercentage" validate:"gte=0,lte=100"`
	TargetProfitMargin float64  `json:"targetProfitMargin" validate:"gte=0,lte=100"`
	DeliveryModes      []string `json:"deliveryModes" validate:"dive,required,max=40"`
}

// Defaults returns the settings used before anything is saved.
func Defaults() Settings {
	return Settings{
		BusinessName:       "HomeBite",
		Currency:           "INR",
		DefaultUnitPrice:   120,
		ExpensePercentage:  reports.DefaultProfitOptions.ExpensePercentage,
		TargetProfitMargin: reports.DefaultProfitOptions.TargetProfitMargin,
		DeliveryModes:      []string{"Breakfast", "Lunch", "Dinner"},
	}
}

// Profit returns the estimator inputs.
func (s Settings) Profit() reports.ProfitOptions {
	return reports.ProfitOptions{
		ExpensePercentage:  s.ExpensePercentage,
		TargetProfitMargin: s.TargetProfitMargin,
	}
}
