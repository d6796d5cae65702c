package contacts

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CleanLabel turns a native label such as "_$!<Mobile>!$_" or "home fax"
// into a display label ("Mobile", "Home Fax"). Empty labels become fallback.
func CleanLabel(raw, fallback string) string {
	label := strings.TrimSpace(raw)
	label = strings.TrimPrefix(label, "_$!<")
	label = strings.TrimSuffix(label, ">!$_")
	label = strings.TrimSpace(label)
	if label == "" || strings.EqualFold(label, MissingValue) {
		label = fallback
	}
	caser := cases.Title(language.English)
	return caser.String(strings.ToLower(label))
}
