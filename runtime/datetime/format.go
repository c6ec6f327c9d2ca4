// Package datetime implements the date/time picture string used by the
// timestamp built-ins: bracketed component specifiers like [Y0001], [M01]
// or [H01], with [[ and ]] escaping literal brackets.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/jsonata-lang/jsonata/compiler/errors"
)

// FormatPicture renders a timestamp according to a picture string.
// An unbalanced `[` fails with D3135; the year name-modifier fails with
// D3133; a timezone specifier with more than four digits fails with D3134.
func FormatPicture(t time.Time, picture string) (string, *errors.Error) {
	var out strings.Builder
	var pattern strings.Builder
	insideBrackets := false

	runes := []rune(picture)
	i := 0
	for i < len(runes) {
		ch := runes[i]

		if ch == '[' && i+1 < len(runes) && runes[i+1] == '[' {
			out.WriteByte('[')
			i += 2
			continue
		}
		if ch == ']' && i+1 < len(runes) && runes[i+1] == ']' {
			out.WriteByte(']')
			i += 2
			continue
		}

		if ch == '[' {
			insideBrackets = true
			pattern.Reset()
			i++
			continue
		}

		if ch == ']' {
			insideBrackets = false
			trimmed := strings.NewReplacer("\n", "", "\t", "", " ", "").Replace(strings.TrimSpace(pattern.String()))
			component, err := formatComponent(trimmed, t)
			if err != nil {
				return "", err
			}
			out.WriteString(component)
			pattern.Reset()
			i++
			continue
		}

		if insideBrackets {
			pattern.WriteRune(ch)
		} else {
			out.WriteRune(ch)
		}
		i++
	}

	if insideBrackets {
		return "", errors.New(errors.ErrPictureNoClosingBracket, -1)
	}

	return out.String(), nil
}

// CheckBalancedBrackets validates the bracket structure of a picture
// string without formatting anything, honoring [[ and ]] escapes.
func CheckBalancedBrackets(picture string) *errors.Error {
	depth := 0
	runes := []rune(picture)
	i := 0
	for i < len(runes) {
		switch runes[i] {
		case '[':
			if i+1 < len(runes) && runes[i+1] == '[' {
				i++
			} else {
				depth++
			}
		case ']':
			if i+1 < len(runes) && runes[i+1] == ']' {
				i++
			} else {
				if depth == 0 {
					return errors.New(errors.ErrPictureNoClosingBracket, -1)
				}
				depth--
			}
		}
		i++
	}
	if depth != 0 {
		return errors.New(errors.ErrPictureNoClosingBracket, -1)
	}
	return nil
}

func formatComponent(pattern string, t time.Time) (string, *errors.Error) {
	switch pattern {
	// Year
	case "Y0001", "Y0001,2", "Y":
		return fmt.Sprintf("%04d", t.Year()), nil
	case "Y,2":
		return fmt.Sprintf("%02d", t.Year()%100), nil
	case "Y0001,2-2", "Y##01,2-2":
		return fmt.Sprintf("%02d", t.Year()%100), nil
	case "Y9,999,*":
		return formatGrouped(t.Year()), nil
	case "YI":
		return toRoman(t.Year()), nil
	case "Yi":
		return strings.ToLower(toRoman(t.Year())), nil
	case "Yw":
		return yearInWords(t.Year()), nil
	case "YN":
		return "", errors.New(errors.ErrPictureNameModifier, -1, "Y")

	// Month
	case "M01", "M1,2":
		return fmt.Sprintf("%02d", int(t.Month())), nil
	case "M#1", "M1", "M":
		return fmt.Sprintf("%d", int(t.Month())), nil
	case "MNn":
		return t.Month().String(), nil
	case "MNn,3-3":
		return t.Month().String()[:3], nil
	case "MN":
		return strings.ToUpper(t.Month().String()), nil
	case "MA":
		return monthLetter(int(t.Month())), nil

	// Day
	case "D01", "D#1,2":
		return fmt.Sprintf("%02d", t.Day()), nil
	case "D#1", "D1", "D":
		return fmt.Sprintf("%d", t.Day()), nil
	case "D1o":
		return dayWithOrdinal(t.Day()), nil
	case "Da":
		return dayLetter(t.Day()), nil
	case "Dwo":
		return dayInWordsWithOrdinal(t.Day()), nil
	case "dwo":
		return dayInWordsWithOrdinal(t.YearDay()), nil
	case "d":
		return fmt.Sprintf("%d", daysInYear(t.Year())), nil

	// Week
	case "W01":
		_, week := t.ISOWeek()
		return fmt.Sprintf("%02d", week), nil
	case "W":
		_, week := t.ISOWeek()
		return fmt.Sprintf("%d", week), nil
	case "w":
		return weekOfMonth(t), nil
	case "xNn":
		return weekMonthName(t), nil

	// Weekday
	case "F1", "F0":
		return fmt.Sprintf("%d", isoWeekday(t)), nil
	case "FNn":
		return t.Weekday().String(), nil
	case "FNn,3-3":
		return t.Weekday().String()[:3], nil
	case "F":
		return strings.ToLower(t.Weekday().String()), nil

	// Time
	case "H01":
		return fmt.Sprintf("%02d", t.Hour()), nil
	case "h", "h#1":
		hour := t.Hour() % 12
		if hour == 0 {
			hour = 12
		}
		return fmt.Sprintf("%d", hour), nil
	case "m", "m01":
		return fmt.Sprintf("%02d", t.Minute()), nil
	case "s", "s01":
		return fmt.Sprintf("%02d", t.Second()), nil
	case "f001":
		return fmt.Sprintf("%03d", t.Nanosecond()/1e6), nil
	case "P":
		return strings.ToLower(amPM(t)), nil
	case "PN":
		return amPM(t), nil
	case "Pn":
		return strings.ToLower(amPM(t)), nil

	// Timezone
	case "Z":
		return offsetColon(t), nil
	case "z":
		return "GMT" + offsetColon(t), nil
	case "Z0":
		return offsetTrimmed(t), nil
	case "Z01:01t":
		if offsetSeconds(t) == 0 {
			return "Z", nil
		}
		return offsetColon(t), nil
	case "Z01:01":
		if offsetSeconds(t) == 0 {
			return "+00:00", nil
		}
		return offsetColon(t), nil
	case "Z0101t":
		if offsetSeconds(t) == 0 {
			return "Z", nil
		}
		return offsetPlain(t), nil
	case "Z010101t":
		return "", errors.New(errors.ErrTooManyTzDigits, -1)

	// Calendar markers
	case "E", "C":
		return "ISO", nil
	}

	// Unrecognized patterns pass through as literal text
	return "[" + pattern + "]", nil
}

// ParseTimezoneOffset parses a `±HHMM` timezone string
func ParseTimezoneOffset(tz string) (*time.Location, bool) {
	if len(tz) != 5 {
		return nil, false
	}
	sign := 0
	switch tz[0] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return nil, false
	}
	var hours, minutes int
	if _, err := fmt.Sscanf(tz[1:], "%02d%02d", &hours, &minutes); err != nil {
		return nil, false
	}
	offset := sign * (hours*3600 + minutes*60)
	name := fmt.Sprintf("GMT%+03d:%02d", sign*hours, minutes)
	return time.FixedZone(name, offset), true
}

func offsetSeconds(t time.Time) int {
	_, offset := t.Zone()
	return offset
}

func offsetColon(t time.Time) string {
	offset := offsetSeconds(t)
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%02d:%02d", sign, offset/3600, offset%3600/60)
}

func offsetPlain(t time.Time) string {
	offset := offsetSeconds(t)
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%02d%02d", sign, offset/3600, offset%3600/60)
}

func offsetTrimmed(t time.Time) string {
	offset := offsetSeconds(t)
	if offset == 0 {
		return "0"
	}
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	hours, minutes := offset/3600, offset%3600/60
	if minutes == 0 {
		return fmt.Sprintf("%s%d", sign, hours)
	}
	return fmt.Sprintf("%s%d:%02d", sign, hours, minutes)
}

func amPM(t time.Time) string {
	if t.Hour() < 12 {
		return "AM"
	}
	return "PM"
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func daysInYear(year int) int {
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 366
	}
	return 365
}

func monthLetter(month int) string {
	if month >= 1 && month <= 12 {
		return strings.ToUpper(string(rune('a' + month - 1)))
	}
	return " "
}

func dayLetter(day int) string {
	switch {
	case day >= 1 && day <= 26:
		return string(rune('a' + day - 1))
	case day >= 27 && day <= 31:
		return string(rune('a' + day - 27))
	}
	return " "
}

func weekOfMonth(t time.Time) string {
	_, isoWeek := t.ISOWeek()
	month := int(t.Month())
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	firstWeekday := int(firstOfMonth.Weekday())
	week := (t.Day()+firstWeekday-1)/7 + 1

	switch {
	case month == 12 && isoWeek == 1,
		week == 5 && month == 1 && isoWeek == 5,
		week == 1 && firstWeekday == 5 && isoWeek == 5:
		return fmt.Sprintf("%d", isoWeek)
	case week == 5 && firstWeekday == 0:
		return "1"
	case month == 1 && isoWeek >= 52 && firstWeekday == 0:
		return "5"
	}
	return fmt.Sprintf("%d", week)
}

// weekMonthName names the month that owns the current ISO week: the month
// containing the week's Thursday.
func weekMonthName(t time.Time) string {
	daysFromMonday := (int(t.Weekday()) + 6) % 7
	firstDay := t.AddDate(0, 0, -daysFromMonday)
	lastDay := firstDay.AddDate(0, 0, 6)
	weekMonth := firstDay.Month()
	if firstDay.Month() != lastDay.Month() && lastDay.Day() >= 4 {
		weekMonth = lastDay.Month()
	}
	return weekMonth.String()
}

func formatGrouped(year int) string {
	s := fmt.Sprintf("%d", year)
	var out strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(digit)
	}
	return out.String()
}

func dayWithOrdinal(day int) string {
	switch day {
	case 1, 21, 31:
		return fmt.Sprintf("%dst", day)
	case 2, 22:
		return fmt.Sprintf("%dnd", day)
	case 3, 23:
		return fmt.Sprintf("%drd", day)
	}
	return fmt.Sprintf("%dth", day)
}

func toRoman(year int) string {
	numerals := []struct {
		value  int
		symbol string
	}{
		{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
		{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
		{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
	}
	var out strings.Builder
	for _, n := range numerals {
		for year >= n.value {
			out.WriteString(n.symbol)
			year -= n.value
		}
	}
	return out.String()
}

var below20Cardinal = []string{
	"", "one", "two", "three", "four", "five", "six", "seven", "eight",
	"nine", "ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen",
	"sixteen", "seventeen", "eighteen", "nineteen",
}

var tensCardinal = []string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy",
	"eighty", "ninety",
}

func yearInWords(year int) string {
	if year < 0 {
		return "minus " + yearInWords(-year)
	}

	var out strings.Builder
	y := year

	if y >= 1000 {
		out.WriteString(below20Cardinal[y/1000])
		out.WriteString(" thousand")
		y %= 1000
		if y > 0 && y < 100 {
			out.WriteString(" and ")
		} else if y > 0 {
			out.WriteByte(' ')
		}
	}

	if y >= 100 {
		out.WriteString(below20Cardinal[y/100])
		out.WriteString(" hundred")
		y %= 100
		if y > 0 {
			out.WriteString(" and ")
		}
	}

	if y >= 20 {
		out.WriteString(tensCardinal[y/10])
		y %= 10
		if y > 0 {
			out.WriteByte('-')
		}
	}

	if y > 0 {
		out.WriteString(below20Cardinal[y])
	}

	return strings.TrimSpace(out.String())
}

var below20Ordinal = []string{
	"", "first", "second", "third", "fourth", "fifth", "sixth", "seventh",
	"eighth", "ninth", "tenth", "eleventh", "twelfth", "thirteenth",
	"fourteenth", "fifteenth", "sixteenth", "seventeenth", "eighteenth",
	"nineteenth",
}

var tensOrdinal = []string{
	"", "", "twentieth", "thirtieth", "fortieth", "fiftieth", "sixtieth",
	"seventieth", "eightieth", "ninetieth",
}

func dayInWordsWithOrdinal(day int) string {
	word := numberInOrdinalWords(day)

	if day%100 >= 11 && day%100 <= 13 {
		return word
	}
	if strings.HasSuffix(word, "first") || strings.HasSuffix(word, "second") ||
		strings.HasSuffix(word, "third") || strings.HasSuffix(word, "th") {
		return word
	}

	switch day % 10 {
	case 1:
		return word + "st"
	case 2:
		return word + "nd"
	case 3:
		return word + "rd"
	}
	return word + "th"
}

func numberInOrdinalWords(num int) string {
	if num < 20 {
		return below20Ordinal[num]
	}
	if num < 100 {
		if num%10 == 0 {
			return tensOrdinal[num/10]
		}
		return tensCardinal[num/10] + "-" + below20Ordinal[num%10]
	}
	return fmt.Sprintf("%d", num)
}
