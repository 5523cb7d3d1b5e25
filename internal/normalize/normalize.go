// Package normalize holds the small coercions shared by every fetcher.
package normalize

import (
	"strconv"
	"strings"
	"time"
)

const (
	insecureScheme = "http://"
	secureScheme   = "https://"
)

// ToSecure upgrades an http:// URL to https://. A nil input yields "".
func ToSecure(u *string) string {
	if u == nil {
		return ""
	}
	return Secure(*u)
}

// Secure is ToSecure for values that are already known to be present.
func Secure(u string) string {
	if strings.HasPrefix(u, insecureScheme) {
		return secureScheme + u[len(insecureScheme):]
	}
	return u
}

// VersionNumber turns "v1.2.3" into 123 for comparison; anything unparsable is 0.
func VersionNumber(v string) int64 {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V")
	v = strings.ReplaceAll(v, ".", "")
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// IsNewer reports whether remote is a later version than local.
func IsNewer(remote, local string) bool {
	return VersionNumber(remote) > VersionNumber(local)
}

// Today is the current date as YYYY-MM-DD in loc.
func Today(loc *time.Location) string {
	return DateOf(time.Now(), loc)
}

func DateOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02")
}

// FormatMillis renders an epoch-millis string as "2006-01-02 15:04:05".
// Unparsable input renders the current time instead.
func FormatMillis(ms string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	const layout = "2006-01-02 15:04:05"
	n, err := strconv.ParseInt(strings.TrimSpace(ms), 10, 64)
	if err != nil {
		return time.Now().In(loc).Format(layout)
	}
	return time.UnixMilli(n).In(loc).Format(layout)
}
