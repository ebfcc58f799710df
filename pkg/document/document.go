// Package document validates Brazilian tax-id numbers.
//
// CPF identifies individuals (11 digits) and CNPJ identifies companies
// (14 digits). Both end in two modulo-11 check digits. Validation is pure and
// accepts formatted input such as "111.444.777-35"; everything that is not an
// ASCII digit is stripped first.
package document

import (
	"strings"
)

// Kind is the tax-id document kind.
type Kind string

const (
	KindCPF  Kind = "CPF"
	KindCNPJ Kind = "CNPJ"
)

const (
	cpfLength  = 11
	cnpjLength = 14
)

// Length returns the digit count of the document kind, or 0 if unknown.
func (k Kind) Length() int {
	switch k {
	case KindCPF:
		return cpfLength
	case KindCNPJ:
		return cnpjLength
	}
	return 0
}

func (k Kind) String() string {
	return string(k)
}

// Normalize strips every non-digit character.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// KindFor detects the document kind from the digit count of raw.
func KindFor(raw string) (Kind, bool) {
	switch len(Normalize(raw)) {
	case cpfLength:
		return KindCPF, true
	case cnpjLength:
		return KindCNPJ, true
	}
	return "", false
}

// IsValid reports whether raw is a well-formed document of the given kind
// with correct check digits.
func IsValid(raw string, kind Kind) bool {
	digits := Normalize(raw)
	switch kind {
	case KindCPF:
		return validCPF(digits)
	case KindCNPJ:
		return validCNPJ(digits)
	}
	return false
}

var (
	cpfFirstWeights   = []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	cpfSecondWeights  = []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

func validCPF(digits string) bool {
	if len(digits) != cpfLength || repeated(digits) {
		return false
	}
	return checkDigits(digits, cpfFirstWeights, cpfSecondWeights)
}

func validCNPJ(digits string) bool {
	if len(digits) != cnpjLength || repeated(digits) {
		return false
	}
	return checkDigits(digits, cnpjFirstWeights, cnpjSecondWeights)
}

// checkDigits verifies the two trailing check digits. The first weight set
// covers the base digits; the second also covers the first check digit.
func checkDigits(digits string, first, second []int) bool {
	d1 := checkDigit(digits[:len(first)], first)
	if int(digits[len(first)]-'0') != d1 {
		return false
	}
	d2 := checkDigit(digits[:len(second)], second)
	return int(digits[len(second)]-'0') == d2
}

func checkDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func repeated(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// Format renders a document with its conventional punctuation. Input that
// does not have the kind's digit count is returned normalized but unformatted.
func Format(raw string, kind Kind) string {
	d := Normalize(raw)
	switch {
	case kind == KindCPF && len(d) == cpfLength:
		return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
	case kind == KindCNPJ && len(d) == cnpjLength:
		return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
	}
	return d
}

// Mask hides all but the last two digits, for logs.
func Mask(raw string) string {
	d := Normalize(raw)
	if len(d) <= 2 {
		return strings.Repeat("*", len(d))
	}
	return strings.Repeat("*", len(d)-2) + d[len(d)-2:]
}
