// Package ident generates the identifiers the console assigns itself:
// client-side product ids and request trace ids.
package ident

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ProductIDPrefix marks product ids generated by the console.
const ProductIDPrefix = "prod_"

const crockfordBase32Alphabet = "0123456789abcdefghjkmnpqrstvwxyz" // Crockford's Base32 alphabet, lowercase

// NewProductID returns a unique, time-ordered product id such as
// "prod_01j9z3k8q4v6x2m0c7y5n1t8wd".
func NewProductID() (string, error) {
	id, err := newV7()
	if err != nil {
		return "", err
	}

	return ProductIDPrefix + id, nil
}

// NewTraceID returns a request id for the X-Request-ID header.
// It never fails: when the random source is unavailable the id is empty
// and the header is simply omitted.
func NewTraceID() string {
	id, err := newV7()
	if err != nil {
		return ""
	}

	return id
}

func newV7() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("new uuid v7: %w", err)
	}

	return EncodeCrockfordB32LC(u[:]), nil
}

// EncodeCrockfordB32LC encodes bytes with Crockford's Base32 alphabet in lowercase.
// The alphabet leaves out I, L, O and U, so ids survive being read aloud or retyped.
//
//nolint:gosec
func EncodeCrockfordB32LC(input []byte) string {
	var (
		result strings.Builder
		bits   = 0
		accum  = 0
	)

	result.Grow((len(input)*8 + 4) / 5)

	for _, b := range input {
		accum = accum<<8 | int(b)
		bits += 8

		for bits >= 5 {
			bits -= 5
			result.WriteByte(crockfordBase32Alphabet[(accum>>bits)&0x1F])
		}
	}

	if bits > 0 {
		result.WriteByte(crockfordBase32Alphabet[(accum<<uint(5-bits))&0x1F])
	}

	return result.String()
}

// NormalizeCrockfordB32LC maps user-typed ids onto the canonical alphabet:
// whitespace is removed, O becomes 0 and I/L become 1.
func NormalizeCrockfordB32LC(input string) string {
	var result strings.Builder

	for _, char := range strings.ToUpper(input) {
		switch char {
		case ' ', '\t', '\n':
			continue
		case 'O':
			result.WriteRune('0')
		case 'I', 'L':
			result.WriteRune('1')
		default:
			result.WriteRune(char)
		}
	}

	return strings.ToLower(result.String())
}
