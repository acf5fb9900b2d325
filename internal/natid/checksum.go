// Package natid validates national identity numbers with a modulo-11
// check digit and renders the spoken confirmation of an ID's tail.
package natid

import (
	"errors"
	"strings"
)

// ErrNotDigits indicates the ID body contains non-digit characters.
var ErrNotDigits = errors.New("natid: body must contain only digits")

// ExpectedCheckDigit computes the modulo-11 check digit for a digit-only
// body. Digits are weighted from least-significant to most-significant with
// multipliers cycling 2,3,4,5,6,7. A remainder of 11 maps to '0' and 10
// maps to 'K'.
func ExpectedCheckDigit(body string) (byte, error) {
	if body == "" {
		return 0, ErrNotDigits
	}
	sum := 0
	mult := 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return 0, ErrNotDigits
		}
		sum += int(c-'0') * mult
		mult++
		if mult > 7 {
			mult = 2
		}
	}
	rem := 11 - (sum % 11)
	switch rem {
	case 11:
		return '0', nil
	case 10:
		return 'K', nil
	default:
		return byte('0' + rem), nil
	}
}

// Validate reports whether checkDigit is the correct check digit for body.
// 'k' and 'K' are equivalent. Total over all digit strings: a malformed
// body is simply invalid, never an error.
func Validate(body, checkDigit string) bool {
	if len(checkDigit) != 1 {
		return false
	}
	expected, err := ExpectedCheckDigit(body)
	if err != nil {
		return false
	}
	given := checkDigit[0]
	if given == 'k' {
		given = 'K'
	}
	return given == expected
}

var digitWords = map[byte]string{
	'0': "zero",
	'1': "one",
	'2': "two",
	'3': "three",
	'4': "four",
	'5': "five",
	'6': "six",
	'7': "seven",
	'8': "eight",
	'9': "nine",
	'K': "kay",
	'k': "kay",
}

// MaskedReading renders the last three digits of body plus the check digit
// as spoken words, e.g. "six seven eight dash five". Purely presentational:
// used to disambiguate the confirmation prompt, never for validation.
func MaskedReading(body, checkDigit string) string {
	tail := body
	if len(tail) > 3 {
		tail = tail[len(tail)-3:]
	}
	words := make([]string, 0, 5)
	for i := 0; i < len(tail); i++ {
		if w, ok := digitWords[tail[i]]; ok {
			words = append(words, w)
		}
	}
	if len(checkDigit) == 1 {
		if w, ok := digitWords[checkDigit[0]]; ok {
			words = append(words, "dash", w)
		}
	}
	return strings.Join(words, " ")
}
