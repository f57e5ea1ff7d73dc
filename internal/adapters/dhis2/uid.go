// Package dhis2 submits ADX payloads to a DHIS2 instance and derives DHIS2
// identifiers for openIMIS entities
package dhis2

import (
	"crypto/sha1"
	"strings"

	"github.com/google/uuid"
)

const (
	letters  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	alphanum = "0123456789" + letters

	// UIDLength is the fixed length of a DHIS2 UID
	UIDLength = 11
)

// UIDFromUUID derives a stable DHIS2 UID from an openIMIS UUID: a letter
// followed by ten alphanumerics. The same UUID always maps to the same
// UID regardless of its textual case
func UIDFromUUID(u uuid.UUID) string {
	sum := sha1.Sum([]byte(u.String()))
	var b strings.Builder
	b.Grow(UIDLength)
	b.WriteByte(letters[int(sum[0])%len(letters)])
	for _, x := range sum[1:UIDLength] {
		b.WriteByte(alphanum[int(x)%len(alphanum)])
	}
	return b.String()
}

// UIDFromString parses s as a UUID first; ok is false when it is not one
func UIDFromString(s string) (uid string, ok bool) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return UIDFromUUID(u), true
}

// IsUID reports whether s is shaped like a DHIS2 UID
func IsUID(s string) bool {
	if len(s) != UIDLength || !strings.ContainsRune(letters, rune(s[0])) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !strings.ContainsRune(alphanum, rune(s[i])) {
			return false
		}
	}
	return true
}
