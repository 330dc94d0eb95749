package validator

import (
	"regexp"
	"strconv"
	"strings"
)

// Network identifies the card scheme derived from a card number prefix.
type Network string

const (
	NetworkVisa       Network = "visa"
	NetworkMastercard Network = "mastercard"
	NetworkAmex       Network = "amex"
	NetworkRupay      Network = "rupay"
	NetworkUnknown    Network = "unknown"
)

var cardNumberPattern = regexp.MustCompile(`^\d{13,19}$`)

// CleanCardNumber removes spaces and hyphens from a card number
func CleanCardNumber(number string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(number)
}

// ValidateCardNumber validates a card number using Luhn algorithm
func ValidateCardNumber(number string) bool {
	cleaned := CleanCardNumber(number)
	if !cardNumberPattern.MatchString(cleaned) {
		return false
	}

	var sum int
	double := false
	for i := len(cleaned) - 1; i >= 0; i-- {
		d := int(cleaned[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}

	return sum%10 == 0
}

// DetectCardNetwork detects the card network based on IIN
func DetectCardNetwork(number string) Network {
	cleaned := CleanCardNumber(number)
	if strings.HasPrefix(cleaned, "4") {
		return NetworkVisa
	}
	if len(cleaned) < 2 {
		return NetworkUnknown
	}

	first2, err := strconv.Atoi(cleaned[:2])
	if err != nil {
		return NetworkUnknown
	}

	switch {
	case first2 >= 51 && first2 <= 55:
		return NetworkMastercard
	case first2 == 34 || first2 == 37:
		return NetworkAmex
	case first2 == 60 || first2 == 65 || (first2 >= 81 && first2 <= 89):
		return NetworkRupay
	default:
		return NetworkUnknown
	}
}

// Last4 returns the last four characters of the cleaned card number.
func Last4(number string) string {
	cleaned := CleanCardNumber(number)
	if len(cleaned) < 4 {
		return cleaned
	}
	return cleaned[len(cleaned)-4:]
}
