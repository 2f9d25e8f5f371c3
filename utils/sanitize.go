package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy   = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks while keeping
// basic formatting. Used for league descriptions.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizePlain strips all markup. Used for names, bios, prize and
// punishment texts, and activity details.
func SanitizePlain(input string) string {
	return plainPolicy.Sanitize(input)
}
