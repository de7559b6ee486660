package archive

import (
	"encoding/hex"
	"path"
	"strings"
	"time"

	"github.com/de-tools/daily-report/pkg/adapters"
)

const (
	keyRoot     = "reports"
	localPrefix = adapters.LocalRefPrefix
	dateLayout  = "2006-01-02"
	encodedMark = "~"
)

// segment encodes s as a single key path segment. Names made only of
// [A-Za-z0-9._@-] are kept as-is; anything else, including "", "." and "..",
// becomes "~" followed by its hex bytes. Plain names never start with "~", so
// distinct inputs always map to distinct segments.
func segment(s string) string {
	if plainSegment(s) {
		return s
	}
	return encodedMark + hex.EncodeToString([]byte(s))
}

func plainSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == '@':
		default:
			return false
		}
	}
	return true
}

// Prefix is the key namespace of one owner under one role.
func Prefix(owner, role string) string {
	return keyRoot + "/" + segment(role) + "/" + segment(owner) + "/"
}

// Key is the remote object key of the report for date.
func Key(owner, role, date string) string {
	return Prefix(owner, role) + Filename(date)
}

func Filename(date string) string {
	return date + ".pdf"
}

// ValidDate reports whether date is a YYYY-MM-DD calendar date.
func ValidDate(date string) bool {
	_, err := time.Parse(dateLayout, date)
	return err == nil
}

func localRef(id string) string {
	return localPrefix + id
}

func parseLocalRef(ref string) (string, bool) {
	if !strings.HasPrefix(ref, localPrefix) {
		return "", false
	}
	return strings.TrimPrefix(ref, localPrefix), true
}

// ownsKey reports whether a remote ref lies directly inside the owner's
// namespace.
func ownsKey(owner, role, ref string) bool {
	prefix := Prefix(owner, role)
	if !strings.HasPrefix(ref, prefix) || path.Clean(ref) != ref {
		return false
	}
	rest := strings.TrimPrefix(ref, prefix)
	return rest != "" && !strings.Contains(rest, "/")
}
