package models

import (
	"strings"
	"unicode/utf8"
)

// IsValidQuery rejects blank queries and queries longer than MaxQueryLength characters
func IsValidQuery(query string) bool {
	return strings.TrimSpace(query) != "" && utf8.RuneCountInString(query) <= MaxQueryLength
}
