package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonata-lang/jsonata/compiler/errors"
)

// 2017-05-07 14:03:09.123 UTC, a Sunday
var ref = time.Date(2017, 5, 7, 14, 3, 9, 123_000_000, time.UTC)

func format(t *testing.T, picture string) string {
	t.Helper()
	out, err := FormatPicture(ref, picture)
	require.Nil(t, err)
	return out
}

func TestFormatBasicComponents(t *testing.T) {
	assert.Equal(t, "2017", format(t, "[Y0001]"))
	assert.Equal(t, "17", format(t, "[Y,2]"))
	assert.Equal(t, "05", format(t, "[M01]"))
	assert.Equal(t, "5", format(t, "[M#1]"))
	assert.Equal(t, "07", format(t, "[D01]"))
	assert.Equal(t, "7", format(t, "[D#1]"))
	assert.Equal(t, "14", format(t, "[H01]"))
	assert.Equal(t, "2", format(t, "[h]"))
	assert.Equal(t, "03", format(t, "[m01]"))
	assert.Equal(t, "09", format(t, "[s01]"))
	assert.Equal(t, "123", format(t, "[f001]"))
}

func TestFormatComposite(t *testing.T) {
	assert.Equal(t, "05/07/2017", format(t, "[M01]/[D01]/[Y0001]"))
	assert.Equal(t, "2:03pm", format(t, "[h]:[m01][P]"))
}

func TestFormatNames(t *testing.T) {
	assert.Equal(t, "Sunday", format(t, "[FNn]"))
	assert.Equal(t, "Sun", format(t, "[FNn,3-3]"))
	assert.Equal(t, "May", format(t, "[MNn]"))
	assert.Equal(t, "MAY", format(t, "[MN]"))
	assert.Equal(t, "7th", format(t, "[D1o]"))
	assert.Equal(t, "seventh", format(t, "[Dwo]"))
}

func TestFormatYearForms(t *testing.T) {
	assert.Equal(t, "MMXVII", format(t, "[YI]"))
	assert.Equal(t, "mmxvii", format(t, "[Yi]"))
	assert.Equal(t, "two thousand and seventeen", format(t, "[Yw]"))
	assert.Equal(t, "2,017", format(t, "[Y9,999,*]"))
}

func TestFormatTimezone(t *testing.T) {
	assert.Equal(t, "+00:00", format(t, "[Z]"))
	assert.Equal(t, "GMT+00:00", format(t, "[z]"))

	loc := time.FixedZone("GMT-05:00", -5*3600)
	out, err := FormatPicture(ref.In(loc), "[z]")
	require.Nil(t, err)
	assert.Equal(t, "GMT-05:00", out)
}

func TestFormatBracketEscapes(t *testing.T) {
	assert.Equal(t, "[Y] 2017", format(t, "[[Y]] [Y0001]"))
}

func TestFormatErrors(t *testing.T) {
	_, err := FormatPicture(ref, "[Y0001")
	require.NotNil(t, err)
	assert.Equal(t, errors.ErrPictureNoClosingBracket, err.Code)

	_, err = FormatPicture(ref, "[YN]")
	require.NotNil(t, err)
	assert.Equal(t, errors.ErrPictureNameModifier, err.Code)

	_, err = FormatPicture(ref, "[Z010101t]")
	require.NotNil(t, err)
	assert.Equal(t, errors.ErrTooManyTzDigits, err.Code)
}

func TestUnknownComponentIsLiteral(t *testing.T) {
	assert.Equal(t, "[bogus]", format(t, "[bogus]"))
}

func TestCheckBalancedBrackets(t *testing.T) {
	assert.Nil(t, CheckBalancedBrackets("[Y0001]-[M01]"))
	assert.Nil(t, CheckBalancedBrackets("literal [[ bracket ]]"))
	assert.NotNil(t, CheckBalancedBrackets("[Y0001"))
	assert.NotNil(t, CheckBalancedBrackets("oops]"))
}

func TestParseTimezoneOffset(t *testing.T) {
	loc, ok := ParseTimezoneOffset("-0500")
	require.True(t, ok)
	_, offset := time.Now().In(loc).Zone()
	assert.Equal(t, -5*3600, offset)

	_, ok = ParseTimezoneOffset("invalid")
	assert.False(t, ok)
	_, ok = ParseTimezoneOffset("0500")
	assert.False(t, ok)
}

func TestParsePictureISO(t *testing.T) {
	millis, ok := ParsePicture("2017-05-07T14:03:09.123Z", "")
	require.True(t, ok)
	assert.Equal(t, ref.UnixMilli(), millis)

	_, ok = ParsePicture("not a timestamp", "")
	assert.False(t, ok)
}

func TestParsePictureCustom(t *testing.T) {
	millis, ok := ParsePicture("2017-05-07", "[Y0001]-[M01]-[D01]")
	require.True(t, ok)
	expected := time.Date(2017, 5, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, expected.UnixMilli(), millis)

	_, ok = ParsePicture("whatever", "[bogus]")
	assert.False(t, ok)
}

func TestFormatRoundTrip(t *testing.T) {
	picture := "[Y0001]-[M01]-[D01]"
	text := format(t, picture)
	millis, ok := ParsePicture(text, picture)
	require.True(t, ok)
	assert.Equal(t, time.Date(2017, 5, 7, 0, 0, 0, 0, time.UTC).UnixMilli(), millis)
}
