package card

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

// DefaultBIN is the issuer prefix used when none is configured.
const DefaultBIN = "400000"

const numberLength = 16

// Issuer derives card numbers and security codes.
type Issuer struct {
	bin    string
	secret []byte
}

// NewIssuer returns an Issuer for the given BIN and CVV secret.
func NewIssuer(bin, secret string) (*Issuer, error) {
	if bin == "" {
		bin = DefaultBIN
	}
	if len(bin) >= numberLength-1 || strings.Trim(bin, "0123456789") != "" {
		return nil, fmt.Errorf("invalid card BIN %q", bin)
	}
	return &Issuer{bin: bin, secret: []byte(secret)}, nil
}

// Number returns the card number for a sequence value: BIN, zero padded
// sequence and a Luhn check digit. Distinct sequences give distinct numbers.
func (i *Issuer) Number(seq int64) (string, error) {
	width := numberLength - 1 - len(i.bin)
	body := fmt.Sprintf("%s%0*d", i.bin, width, seq)
	if seq < 0 || len(body) != numberLength-1 {
		return "", fmt.Errorf("card sequence %d out of range", seq)
	}
	return body + string(rune('0'+LuhnDigit(body))), nil
}

// CVV derives a three digit security code bound to number and expiry.
func (i *Issuer) CVV(number, expiry string) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(number + "|" + expiry))
	sum := mac.Sum(nil)
	return fmt.Sprintf("%03d", binary.BigEndian.Uint32(sum[:4])%1000)
}

// LuhnDigit computes the check digit to append to digits.
func LuhnDigit(digits string) int {
	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}

// LuhnValid reports whether number carries a valid check digit.
func LuhnValid(number string) bool {
	if len(number) < 2 || strings.Trim(number, "0123456789") != "" {
		return false
	}
	last := int(number[len(number)-1] - '0')
	return LuhnDigit(number[:len(number)-1]) == last
}
