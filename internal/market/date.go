package market

import (
	"fmt"
	"time"
)

const tradeDateLayout = "20060102"

// ValidateTradeDate checks the YYYYMMDD trade date format. An invalid
// date is a caller-level error, not a pipeline failure.
func ValidateTradeDate(date string) error {
	if _, err := time.Parse(tradeDateLayout, date); err != nil {
		return fmt.Errorf("%w: trade date %q must be YYYYMMDD", ErrConfiguration, date)
	}
	return nil
}

// RecentTradeDate returns the date daysBack calendar days before today,
// formatted as a trade date.
func RecentTradeDate(daysBack int) string {
	return time.Now().AddDate(0, 0, -daysBack).Format(tradeDateLayout)
}
