// Package validation holds the pure input rules shared by checkout and the mailer endpoints.
// None of the functions log or panic on bad input; they report validity only.
package validation

import (
	"regexp"
	"strings"
	"time"
)

const (
	MinAddressLength     = 10
	MaxDeliveryAheadDays = 90
)

var (
	emailRegex       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex       = regexp.MustCompile(`^(\+?250|0)?7[0-9]{8}$`)
	bankAccountRegex = regexp.MustCompile(`^[0-9]{10,16}$`)
	fullNameRegex    = regexp.MustCompile(`^[a-zA-Z]{2,}\s+[a-zA-Z]{2,}(\s+[a-zA-Z]{2,})*$`)
	scriptRegex      = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	whitespace       = regexp.MustCompile(`\s`)
	phoneGroups      = regexp.MustCompile(`^(\+250)(\d{3})(\d{3})(\d{3})$`)
)

// Email accepts the permissive local@domain.tld shape, not full RFC 5322.
func Email(email string) bool {
	return emailRegex.MatchString(email)
}

// Phone accepts Rwandan mobile numbers: optional +250, 250 or 0 prefix, then 7 and eight digits.
func Phone(phone string) bool {
	return phoneRegex.MatchString(stripSpaces(phone))
}

// BankAccount accepts 10 to 16 digits once whitespace is removed.
func BankAccount(account string) bool {
	return bankAccountRegex.MatchString(stripSpaces(account))
}

// FullName wants at least two words of two or more letters each.
func FullName(name string) bool {
	return fullNameRegex.MatchString(strings.TrimSpace(name))
}

func Address(address string) bool {
	return len([]rune(strings.TrimSpace(address))) >= MinAddressLength
}

type Result struct {
	Valid   bool
	Message string
}

const (
	MsgDeliveryDatePast   = "Delivery date cannot be in the past"
	MsgDeliveryDateTooFar = "Delivery date cannot be more than 90 days in the future"
)

// DeliveryDate compares calendar dates only: date must fall within [today, today+90 days].
// Both values are interpreted in now's location.
func DeliveryDate(date, now time.Time) Result {
	day := truncateDay(date.In(now.Location()))
	today := truncateDay(now)

	if day.Before(today) {
		return Result{Valid: false, Message: MsgDeliveryDatePast}
	}
	if day.After(today.AddDate(0, 0, MaxDeliveryAheadDays)) {
		return Result{Valid: false, Message: MsgDeliveryDateTooFar}
	}
	return Result{Valid: true}
}

// NormalizePhone returns the canonical +250XXXXXXXXX form of a number that passed Phone.
func NormalizePhone(phone string) string {
	cleaned := stripSpaces(phone)
	switch {
	case strings.HasPrefix(cleaned, "+"):
		return cleaned
	case strings.HasPrefix(cleaned, "0"):
		return "+250" + cleaned[1:]
	case strings.HasPrefix(cleaned, "250"):
		return "+" + cleaned
	default:
		return "+250" + cleaned
	}
}

// FormatPhoneDisplay renders +250 788 123 456.
func FormatPhoneDisplay(phone string) string {
	return phoneGroups.ReplaceAllString(NormalizePhone(phone), "$1 $2 $3 $4")
}

// Sanitize trims and drops inline script blocks from free text.
func Sanitize(input string) string {
	return strings.TrimSpace(scriptRegex.ReplaceAllString(input, ""))
}

func StripSpaces(s string) string {
	return stripSpaces(s)
}

func stripSpaces(s string) string {
	return whitespace.ReplaceAllString(s, "")
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
