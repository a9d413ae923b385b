package query

import (
	"regexp"
	"strconv"
	"strings"
)

// DateKind tags the variant of a DateExpression.
type DateKind int

const (
	// DateKindNone means no recognizable date was found in the query.
	DateKindNone DateKind = iota
	// DateKindMonthDay is a recurring month-day without a year, e.g. "1.18".
	DateKindMonthDay
	// DateKindDate is a fully qualified calendar date.
	DateKindDate
)

// DateExpression is the date constraint extracted from a raw query.
// At most one is produced per query.
type DateExpression struct {
	Kind  DateKind
	Year  int
	Month int
	Day   int
}

// None reports whether no date constraint is present.
func (d DateExpression) None() bool {
	return d.Kind == DateKindNone
}

var (
	// Full date first: 2026-01-17, 2026/1/17, 2026.1.17, 2026年1月17日.
	fullDateRe = regexp.MustCompile(`(\d{4})[年\-/.](\d{1,2})[月\-/.](\d{1,2})日?`)
	// Year-less month-day: 1.18, 1月18日.
	monthDayRe = regexp.MustCompile(`(\d{1,2})[月.](\d{1,2})日?`)
)

// fillerWords are connective words that carry no semantic constraint once a
// date has been extracted ("1.18 的照片" asks for photos on 1.18, nothing more).
var fillerWords = []string{
	"的照片", "的图片", "的相片", "照片", "图片", "相片", "拍的", "拍摄的", "的",
	"photos", "photo", "pictures", "picture", "pics", "pic", "of", "from", "on",
}

// Split extracts at most one date expression from raw user text and returns
// it together with the residual semantic text. Text without a recognizable
// date is returned verbatim with DateKindNone, so splitting already-split
// input is a no-op.
func Split(text string) (DateExpression, string) {
	if loc := fullDateRe.FindStringSubmatchIndex(text); loc != nil {
		m := fullDateRe.FindStringSubmatch(text)
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if validMonthDay(month, day) {
			return DateExpression{Kind: DateKindDate, Year: year, Month: month, Day: day},
				residual(text, loc[0], loc[1])
		}
	}

	if loc := monthDayRe.FindStringSubmatchIndex(text); loc != nil {
		m := monthDayRe.FindStringSubmatch(text)
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if validMonthDay(month, day) {
			return DateExpression{Kind: DateKindMonthDay, Month: month, Day: day},
				residual(text, loc[0], loc[1])
		}
	}

	return DateExpression{Kind: DateKindNone}, text
}

func validMonthDay(month, day int) bool {
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// residual removes the matched date substring, trims surrounding whitespace
// and punctuation, then strips leading/trailing filler words so that a pure
// date query degrades to an empty semantic constraint.
func residual(text string, start, end int) string {
	rest := strings.TrimSpace(text[:start] + " " + text[end:])
	rest = strings.Trim(rest, ",，。.;；:：!！?？、 \t")
	return stripFiller(rest)
}

func stripFiller(s string) string {
	for {
		trimmed := strings.TrimSpace(s)
		for _, w := range fillerWords {
			if rest, ok := strings.CutPrefix(trimmed, w); ok {
				trimmed = strings.TrimSpace(rest)
				continue
			}
			if rest, ok := strings.CutSuffix(trimmed, w); ok {
				trimmed = strings.TrimSpace(rest)
			}
		}
		if trimmed == s {
			return trimmed
		}
		s = trimmed
	}
}
