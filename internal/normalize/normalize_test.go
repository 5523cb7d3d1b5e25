package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestToSecure(t *testing.T) {
	cases := []struct {
		In       *string
		Expected string
	}{
		{In: strPtr("http://x/y"), Expected: "https://x/y"},
		{In: strPtr("https://x/y"), Expected: "https://x/y"},
		{In: strPtr("//i0.hdslb.com/a.jpg"), Expected: "//i0.hdslb.com/a.jpg"},
		{In: strPtr(""), Expected: ""},
		{In: strPtr("ftp://x"), Expected: "ftp://x"},
		{In: strPtr("http://http://x"), Expected: "https://http://x"},
		{In: nil, Expected: ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.Expected, ToSecure(c.In))
	}
}

func TestVersionNumber(t *testing.T) {
	assert.Equal(t, int64(123), VersionNumber("v1.2.3"))
	assert.Equal(t, int64(1010), VersionNumber("1.0.10"))
	assert.Equal(t, int64(0), VersionNumber("beta"))
	assert.Equal(t, int64(0), VersionNumber(""))

	assert.True(t, IsNewer("1.2.4", "v1.2.3"))
	assert.False(t, IsNewer("1.2.3", "1.2.3"))
	assert.False(t, IsNewer("garbage", "1.0.0"))
}

func TestDateHelpers(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)

	ts := time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-01", DateOf(ts, loc))

	assert.Equal(t, "2025-01-01 04:00:00", FormatMillis("1735675200000", loc))
	assert.Len(t, FormatMillis("not-a-number", loc), len("2006-01-02 15:04:05"))
}
