// Package validate checks hero and voucher payloads against the service's
// business rules.
//
// Rules are evaluated in a fixed order and the first violation wins, so a
// payload that breaks several rules always reports the same message. Both
// entry points are pure: the only ambient input, the current time, is a
// parameter.
package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/herocheck/internal/hero"
)

// Code identifies the rule a payload violated.
type Code string

const (
	CodeNone             Code = ""
	CodeNatIDFormat      Code = "NATID_FORMAT"
	CodeNameLength       Code = "NAME_LENGTH"
	CodeGender           Code = "GENDER"
	CodeBirthDateMissing Code = "BIRTH_DATE_MISSING"
	CodeBirthDateFormat  Code = "BIRTH_DATE_FORMAT"
	CodeBirthDateFuture  Code = "BIRTH_DATE_FUTURE"
	CodeSalaryNegative   Code = "SALARY_NEGATIVE"
	CodeTaxPaidNegative  Code = "TAX_PAID_NEGATIVE"
	CodeVouchersEmpty    Code = "VOUCHERS_EMPTY"
	CodeVoucherName      Code = "VOUCHER_NAME"
	CodeVoucherType      Code = "VOUCHER_TYPE"
)

var messages = map[Code]string{
	CodeNatIDFormat:      "Invalid National ID format. Must be in format 'natid-number' where number is between 0 and 9999999.",
	CodeNameLength:       "Invalid name. Must be between 1 and 100 characters.",
	CodeGender:           "Invalid gender. Must be MALE or FEMALE.",
	CodeBirthDateMissing: "Birth date is required.",
	CodeBirthDateFormat:  "Invalid birth date format.",
	CodeBirthDateFuture:  "Birth date cannot be in the future.",
	CodeSalaryNegative:   "Salary cannot be negative.",
	CodeTaxPaidNegative:  "Tax paid cannot be negative.",
	CodeVouchersEmpty:    "Vouchers cannot be empty.",
	CodeVoucherName:      "Voucher name cannot be empty.",
	CodeVoucherType:      "Invalid voucher type.",
}

// MaxNameLength is the longest accepted hero name, in characters.
const MaxNameLength = 100

var natIDPattern = regexp.MustCompile(`^natid-\d{1,7}$`)

// birthDateLayouts are tried in order. Layouts without a zone are read as UTC.
var birthDateLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02",
}

// Result is the outcome of a validation: valid, or the first violated rule.
type Result struct {
	Code    Code
	Message string
}

// Valid is the result of a payload that passed every rule.
var Valid = Result{}

// OK reports whether no rule was violated.
func (r Result) OK() bool {
	return r.Code == CodeNone
}

func (r Result) String() string {
	if r.OK() {
		return "valid"
	}
	return "invalid: " + r.Message
}

func invalid(code Code) Result {
	return Result{Code: code, Message: messages[code]}
}

// Hero validates a hero payload. Vouchers attached to p are ignored.
func Hero(p hero.HeroPayload, now time.Time) Result {
	if !natIDPattern.MatchString(p.NatID) {
		return invalid(CodeNatIDFormat)
	}

	if n := nameLength(p.Name); n < 1 || n > MaxNameLength {
		return invalid(CodeNameLength)
	}

	if !p.Gender.Valid() {
		return invalid(CodeGender)
	}

	if p.BirthDate == "" {
		return invalid(CodeBirthDateMissing)
	}
	born, ok := ParseDate(p.BirthDate)
	if !ok {
		return invalid(CodeBirthDateFormat)
	}
	if born.After(now) {
		return invalid(CodeBirthDateFuture)
	}

	if p.Salary < 0 {
		return invalid(CodeSalaryNegative)
	}
	if p.TaxPaid < 0 {
		return invalid(CodeTaxPaidNegative)
	}

	return Valid
}

// Vouchers validates the voucher list of a hero-with-vouchers payload.
func Vouchers(vouchers []hero.VoucherPayload) Result {
	if len(vouchers) == 0 {
		return invalid(CodeVouchersEmpty)
	}

	for _, v := range vouchers {
		if strings.TrimSpace(v.VoucherName) == "" {
			return invalid(CodeVoucherName)
		}
		if !v.VoucherType.Valid() {
			return invalid(CodeVoucherType)
		}
	}

	return Valid
}

// ParseDate parses a date in any of the layouts the service accepts.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range birthDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// nameLength counts characters after NFC normalisation, so a composed and a
// decomposed spelling of the same name have the same length.
func nameLength(name string) int {
	return utf8.RuneCountInString(norm.NFC.String(name))
}
