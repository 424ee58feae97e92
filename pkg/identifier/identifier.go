package identifier

import (
	"strings"
	"unicode"
)

// IsEmail reports whether the identifier looks like an email address rather
// than a phone number. The OTP flow accepts either.
func IsEmail(identifier string) bool {
	at := strings.IndexByte(identifier, '@')
	return at > 0 && at < len(identifier)-1
}

// DisplayName derives a presentable name from an email identifier, used when
// a sponsor has no profile name to show on rankings.
func DisplayName(email string) string {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Sponsor"
	}

	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

// Mask hides most of an identifier for log lines: "al***@example.com",
// "+2547****321". OTP identifiers are contact details and must not appear in
// logs verbatim.
func Mask(identifier string) string {
	if at := strings.IndexByte(identifier, '@'); at > 0 {
		local, domain := identifier[:at], identifier[at:]
		if len(local) <= 2 {
			return "***" + domain
		}
		return local[:2] + "***" + domain
	}
	if len(identifier) <= 7 {
		return "****"
	}
	return identifier[:5] + "****" + identifier[len(identifier)-3:]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
