// Input validation and sanitization for every value crossing into storage.
package validation

import (
	"net"
	"regexp"
	"strings"

	"migratemate-be/internal/entity"
	"migratemate-be/internal/pkg/apperrors"

	"github.com/google/uuid"
)

const (
	MaxReasonOtherLen = 500
	MaxUserAgentLen   = 500
	MaxSessionIDLen   = 32
	MinSessionIDLen   = 8
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// SanitizeFreeText is total: it never fails. It strips tag-like runs,
// removes <>&"' characters, drops control characters, trims surrounding
// whitespace and truncates to maxLen code points.
func SanitizeFreeText(input string, maxLen int) string {
	if input == "" {
		return ""
	}

	s := tagPattern.ReplaceAllString(input, "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '&', '"', '\'':
			return -1
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if maxLen > 0 && len(runes) > maxLen {
		s = strings.TrimSpace(string(runes[:maxLen]))
	}
	return s
}

// ValidateReason checks the reason code against the closed set and, for
// "other", sanitizes the free-text elaboration. The sanitized text must be
// non-empty when "other" is selected.
func ValidateReason(code string, otherText string) (entity.CancellationReason, string, error) {
	reason := entity.CancellationReason(code)
	valid := false
	for _, r := range entity.CancellationReasons {
		if r == reason {
			valid = true
			break
		}
	}
	if !valid {
		return "", "", apperrors.InvalidEnum("reason", code)
	}

	if reason != entity.ReasonOther {
		return reason, "", nil
	}

	sanitized := SanitizeFreeText(otherText, MaxReasonOtherLen)
	if sanitized == "" {
		return "", "", apperrors.EmptyRequiredField("reason_other")
	}
	return reason, sanitized, nil
}

// ValidateIdentifier parses an opaque identifier in canonical UUID form.
func ValidateIdentifier(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperrors.MalformedIdentifier(field)
	}
	return id, nil
}

// ValidateVariant accepts exactly "A" or "B".
func ValidateVariant(value string) (entity.DownsellVariant, error) {
	switch entity.DownsellVariant(value) {
	case entity.VariantA:
		return entity.VariantA, nil
	case entity.VariantB:
		return entity.VariantB, nil
	}
	return "", apperrors.InvalidEnum("downsell_variant", value)
}

// ValidatePricing checks the downsell snapshot: original must be a positive
// amount, offered non-negative and never above original. Minor currency units.
func ValidatePricing(original, offered int64) error {
	if original <= 0 {
		return apperrors.InvalidRange("original_price", "must be a positive amount")
	}
	if offered < 0 {
		return apperrors.InvalidRange("offered_price", "must not be negative")
	}
	if offered > original {
		return apperrors.InvalidRange("offered_price", "must not exceed the original price")
	}
	return nil
}

// SanitizeIPAddress returns the IP in canonical form, or empty string when
// the input is not a valid IPv4/IPv6 address. Never trusted raw.
func SanitizeIPAddress(ip string) string {
	if ip == "" {
		return ""
	}
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return ""
	}
	return parsed.String()
}

// SanitizeUserAgent caps and sanitizes the client user agent.
func SanitizeUserAgent(ua string) string {
	return SanitizeFreeText(ua, MaxUserAgentLen)
}

// SanitizeSessionID keeps only well-formed opaque session identifiers.
func SanitizeSessionID(sid string) string {
	s := SanitizeFreeText(sid, MaxSessionIDLen)
	if len(s) < MinSessionIDLen {
		return ""
	}
	return s
}

// ReasonDisplayText maps a reason code to the label shown to users.
func ReasonDisplayText(reason entity.CancellationReason) string {
	switch reason {
	case entity.ReasonTooExpensive:
		return "Too expensive"
	case entity.ReasonNotUsing:
		return "Not using the service"
	case entity.ReasonMissingFeatures:
		return "Missing features I need"
	case entity.ReasonTechnicalIssues:
		return "Technical issues"
	case entity.ReasonCompetitor:
		return "Found a better alternative"
	case entity.ReasonTemporaryPause:
		return "Need a temporary pause"
	case entity.ReasonOther:
		return "Other"
	}
	return string(reason)
}
