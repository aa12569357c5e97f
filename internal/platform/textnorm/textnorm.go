// Package textnorm centralizes the Unicode-aware case normalization
// spec §4.6 and §6 both rely on — tenant subdomains and user emails
// are compared and stored case-insensitively, and a plain ASCII
// strings.ToLower mishandles scripts whose casing rules differ from
// English (Turkish dotless i, German eszett).
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// folder performs locale-independent case folding, the right tool for
// case-insensitive equality checks (hostnames, emails) rather than
// display purposes, which is why it isn't pinned to a language.Tag.
var folder = cases.Fold()

// lower renders canonical lower-case text for storage, pinned to
// language.Und (script-agnostic) since tenant emails carry no locale
// of their own.
var lower = cases.Lower(language.Und)

// FoldHost case-folds a hostname for subdomain matching.
func FoldHost(host string) string {
	return folder.String(strings.TrimSpace(host))
}

// NormalizeEmail lower-cases an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return lower.String(strings.TrimSpace(email))
}
