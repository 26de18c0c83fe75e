package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// StripNonWord removes every character outside [A-Za-z0-9_].
func StripNonWord(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeName returns the NFC form of a file name so names read from
// filesystems that store decomposed forms compare and serialize identically.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// PrefixedName joins a sanitized folder prefix to a file name. An empty
// prefix after sanitizing still yields the leading underscore.
func PrefixedName(folder, name string) string {
	return StripNonWord(folder) + "_" + NormalizeName(name)
}
