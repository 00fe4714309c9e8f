// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

// ValidateContactAddress accepts E.164 phone numbers with an optional
// "whatsapp:" prefix, the shape Twilio expects for WhatsApp delivery.
func ValidateContactAddress(address string) bool {
	cleaned := strings.TrimPrefix(address, "whatsapp:")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")

	regex := `^\+?[1-9]\d{1,14}$`
	match, _ := regexp.MatchString(regex, cleaned)
	return match
}
