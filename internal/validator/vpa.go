package validator

import "regexp"

var vpaPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+$`)

// ValidateVPA reports whether vpa has the shape localpart@handle.
func ValidateVPA(vpa string) bool {
	return vpaPattern.MatchString(vpa)
}
