// Package i18n provides locale-aware message catalogs for domain error codes.
package i18n

import (
	"strings"
	"text/template"
)

// Code is the string form of a domain error code.
type Code = string

// Catalog resolves error codes to localized user-facing messages.
type Catalog struct {
	locale   string
	messages map[Code]string
}

// Locale returns the catalog's BCP 47 locale tag.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code, substituting {{.Key}} placeholders
// from metadata. Unknown codes fall back to the code itself.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	if c == nil {
		return code
	}
	raw, ok := c.messages[code]
	if !ok {
		return code
	}
	if len(metadata) == 0 || !strings.Contains(raw, "{{") {
		return raw
	}

	tmpl, err := template.New(code).Parse(raw)
	if err != nil {
		return raw
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, metadata); err != nil {
		return raw
	}
	return sb.String()
}

// GetCatalog returns the catalog for the given locale, defaulting to en-US.
func GetCatalog(locale string) *Catalog {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "en-us", "en", "":
		return enUSCatalog
	default:
		return enUSCatalog
	}
}
