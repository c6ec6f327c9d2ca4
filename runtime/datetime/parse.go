package datetime

import (
	"strings"
	"time"
)

// iso8601Layouts are the layouts tried when no picture string is given
var iso8601Layouts = []string{
	"2006-01-02T15:04:05.000Z07:00",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// componentLayouts maps picture components to Go reference-time layouts
// for parsing
var componentLayouts = map[string]string{
	"Y0001": "2006",
	"Y":     "2006",
	"Y,2":   "06",
	"M01":   "01",
	"M#1":   "1",
	"M":     "1",
	"MNn":   "January",
	"D01":   "02",
	"D#1":   "2",
	"D":     "2",
	"H01":   "15",
	"h":     "3",
	"h#1":   "3",
	"m01":   "04",
	"m":     "04",
	"s01":   "05",
	"s":     "05",
	"f001":  "000",
	"P":     "pm",
	"PN":    "PM",
	"Z":     "-07:00",
	"z":     "GMT-07:00",
}

// ParsePicture parses a timestamp string against a picture and returns
// milliseconds since the Unix epoch. With an empty picture the common
// ISO 8601 layouts are tried. A picture containing a component that has
// no parseable layout yields ok == false.
func ParsePicture(timestamp, picture string) (int64, bool) {
	if picture == "" {
		for _, layout := range iso8601Layouts {
			if t, err := time.Parse(layout, timestamp); err == nil {
				return t.UnixMilli(), true
			}
		}
		return 0, false
	}

	layout, ok := pictureToLayout(picture)
	if !ok {
		return 0, false
	}
	t, err := time.Parse(layout, timestamp)
	if err != nil {
		return 0, false
	}
	return t.UnixMilli(), true
}

// pictureToLayout translates a picture string into a Go time layout
func pictureToLayout(picture string) (string, bool) {
	var layout strings.Builder
	runes := []rune(picture)
	i := 0
	for i < len(runes) {
		ch := runes[i]

		if ch == '[' && i+1 < len(runes) && runes[i+1] == '[' {
			layout.WriteByte('[')
			i += 2
			continue
		}
		if ch == ']' && i+1 < len(runes) && runes[i+1] == ']' {
			layout.WriteByte(']')
			i += 2
			continue
		}

		if ch == '[' {
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == ']' {
					end = j
					break
				}
			}
			if end < 0 {
				return "", false
			}
			component := string(runes[i+1 : end])
			mapped, ok := componentLayouts[component]
			if !ok {
				return "", false
			}
			layout.WriteString(mapped)
			i = end + 1
			continue
		}

		layout.WriteRune(ch)
		i++
	}
	return layout.String(), true
}
