package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldDigits(t *testing.T) {
	assert.Equal(t, "0123456789", FoldDigits("۰۱۲۳۴۵۶۷۸۹"))
	assert.Equal(t, "0123456789", FoldDigits("٠١٢٣٤٥٦٧٨٩"))
	assert.Equal(t, "abc 12", FoldDigits("abc ۱٢"))
}

func TestParseNumber_LocalizedDigitsMatchASCII(t *testing.T) {
	cases := map[string]string{
		"۱۵۰۰۰۰":  "150000",
		"٢٥٠":     "250",
		"۱۲.۵":    "12.5",
		" ۹۹۰۰ ":  "9900",
		"۱٢3":     "123",
		"۰":       "0",
	}

	for localized, ascii := range cases {
		got, ok := ParseNumber(localized)
		want, wantOK := ParseNumber(ascii)
		assert.True(t, ok, localized)
		assert.True(t, wantOK, ascii)
		assert.True(t, want.Equal(got), "%s should equal %s", localized, ascii)
	}
}

func TestParseNumber_Unparsable(t *testing.T) {
	for _, s := range []string{"", "   ", "abc", "۱۲a", "150,000", "-5", "18446744073709551615", "9223372036854775807.5"} {
		_, ok := ParseNumber(s)
		assert.False(t, ok, "%q", s)
	}
}

func TestToAmount_Rounds(t *testing.T) {
	d, ok := ParseNumber("1999.5")
	assert.True(t, ok)
	assert.Equal(t, int64(2000), toAmount(d))
}

func TestParseNumber_LargestAmount(t *testing.T) {
	d, ok := ParseNumber("9223372036854775807")
	assert.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), toAmount(d))
}
