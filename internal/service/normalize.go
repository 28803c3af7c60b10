package service

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	maxNameRunes  = 120
	maxContactLen = 20
	minContactLen = 8
)

// NormalizeContact keeps only the ASCII digits of raw, so "(11) 99999-8888"
// and "11999998888" compare equal.
func NormalizeContact(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NormalizeName trims surrounding whitespace and puts the name in Unicode
// NFC form so visually identical names compare equal byte for byte.
func NormalizeName(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

func validateName(name string) error {
	if name == "" {
		return invalid("name", "required")
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		return invalid("name", "too long")
	}
	return nil
}

func validateContact(contact string) error {
	switch {
	case contact == "":
		return invalid("contact_number", "required")
	case len(contact) < minContactLen:
		return invalid("contact_number", "too short")
	case len(contact) > maxContactLen:
		return invalid("contact_number", "too long")
	}
	return nil
}
