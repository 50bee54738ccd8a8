package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RentalDays returns the number of billable days for a rental window,
// rounding partial days up. A window shorter than one day still bills one.
func RentalDays(start, end time.Time) (int64, error) {
	if !start.Before(end) {
		return 0, fmt.Errorf("rental end must be after start")
	}
	hours := end.Sub(start).Hours()
	days := int64(hours / 24)
	if float64(days)*24 < hours {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days, nil
}

// RentalCost returns pricePerDay multiplied by the billable days of the window.
func RentalCost(pricePerDay decimal.Decimal, start, end time.Time) (decimal.Decimal, error) {
	days, err := RentalDays(start, end)
	if err != nil {
		return decimal.Zero, err
	}
	return pricePerDay.Mul(decimal.NewFromInt(days)), nil
}
