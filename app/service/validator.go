package service

import (
	"regexp"
	"strings"
)

// ValidationReason classifies why an email candidate was rejected.
type ValidationReason int

const (
	ReasonNone ValidationReason = iota
	ReasonRequired
	ReasonTooShort
	ReasonTooLong
	ReasonInvalidFormat
)

func (r ValidationReason) Code() string {
	switch r {
	case ReasonRequired:
		return "REQUIRED"
	case ReasonTooShort:
		return "TOO_SHORT"
	case ReasonTooLong:
		return "TOO_LONG"
	case ReasonInvalidFormat:
		return "INVALID_FORMAT"
	default:
		return ""
	}
}

func (r ValidationReason) Message() string {
	switch r {
	case ReasonRequired:
		return "email address is required"
	case ReasonTooShort:
		return "email address is too short"
	case ReasonTooLong:
		return "email address is too long"
	case ReasonInvalidFormat:
		return "email address format is invalid"
	default:
		return ""
	}
}

type ValidationResult struct {
	Valid  bool
	Reason ValidationReason
}

const (
	minEmailLength  = 5
	maxEmailLength  = 254
	maxLocalLength  = 64
	maxDomainLength = 253
	maxLabelLength  = 63
)

var (
	emailGrammar = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	labelPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	tldPattern   = regexp.MustCompile(`^[A-Za-z]{2,}$`)
)

// ValidateEmail checks an email candidate syntactically and structurally,
// short-circuiting at the first failure. It is pure: no storage, no network.
func ValidateEmail(raw string) ValidationResult {
	if strings.TrimSpace(raw) == "" {
		return invalid(ReasonRequired)
	}

	email := strings.TrimSpace(raw)
	if len(email) < minEmailLength {
		return invalid(ReasonTooShort)
	}
	if len(email) > maxEmailLength {
		return invalid(ReasonTooLong)
	}

	if !emailGrammar.MatchString(email) {
		return invalid(ReasonInvalidFormat)
	}

	// The grammar guarantees exactly one @.
	at := strings.Index(email, "@")
	local, domain := email[:at], email[at+1:]

	if !validLocalPart(local) || !validDomainPart(domain) {
		return invalid(ReasonInvalidFormat)
	}

	return ValidationResult{Valid: true, Reason: ReasonNone}
}

func invalid(reason ValidationReason) ValidationResult {
	return ValidationResult{Valid: false, Reason: reason}
}

func validLocalPart(local string) bool {
	if len(local) < 1 || len(local) > maxLocalLength {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return false
	}
	return !strings.Contains(local, "..")
}

func validDomainPart(domain string) bool {
	if len(domain) < 1 || len(domain) > maxDomainLength {
		return false
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}

	for _, label := range labels {
		if len(label) < 1 || len(label) > maxLabelLength {
			return false
		}
		if !labelPattern.MatchString(label) {
			return false
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}

	return tldPattern.MatchString(labels[len(labels)-1])
}
