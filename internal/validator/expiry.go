package validator

import (
	"strconv"
	"strings"
	"time"
)

// ValidateExpiry reports whether the card expiry is the current month or later.
func ValidateExpiry(month, year string) bool {
	return ValidateExpiryAt(month, year, time.Now())
}

// ValidateExpiryAt is ValidateExpiry evaluated against now. Two-digit years are
// treated as 20YY; any other length than 2 or 4 digits is rejected.
func ValidateExpiryAt(month, year string, now time.Time) bool {
	month = strings.TrimSpace(month)
	year = strings.TrimSpace(year)

	m, ok := parseDigits(month)
	if !ok || m < 1 || m > 12 {
		return false
	}

	y, ok := parseDigits(year)
	if !ok {
		return false
	}
	switch len(year) {
	case 2:
		y += 2000
	case 4:
	default:
		return false
	}

	currentYear, currentMonth := now.Year(), int(now.Month())
	if y != currentYear {
		return y > currentYear
	}
	return m >= currentMonth
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
