package contextutils

import (
	"net/url"
	"strings"
)

// MaskSecret masks a secret for logging purposes to prevent exposure
// Returns a masked version that shows only first 4 and last 4 characters
func MaskSecret(secret string) string {
	if secret == "" {
		return "[EMPTY]"
	}

	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}

	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}

// MaskDatabaseURL replaces the password of a connection URL so it can be logged.
// Strings that do not parse as URLs are masked entirely.
func MaskDatabaseURL(raw string) string {
	if raw == "" {
		return "[EMPTY]"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return MaskSecret(raw)
	}
	if u.User == nil {
		return u.String()
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLikePattern escapes LIKE wildcards so user input matches literally.
// The result uses backslash as the escape character, which is the PostgreSQL default.
func EscapeLikePattern(term string) string {
	return likeEscaper.Replace(term)
}
