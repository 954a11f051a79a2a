package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Markers used on EDINET cover pages. The period line reads like
// "第145期(自 2020年1月1日 至 2020年12月31日)", with the era calendar
// variant "第145期(自 令和2年1月1日 至 令和2年12月31日)".
const (
	termOpenMarker  = "第"
	termCloseMarker = "期"
	fromMarker      = "自"
	toMarker        = "至"
	dateSuffix      = "日"
)

// ReportingPeriod is the canonical form of a scraped period string.
type ReportingPeriod struct {
	Term string // e.g. "第145期"
	From time.Time
	To   time.Time
}

// Japanese eras by start of gregorian year offset: era year 1 maps to
// base+1. Ordered newest first so 令和 wins over substring accidents.
var eras = []struct {
	name string
	base int
}{
	{"令和", 2018},
	{"平成", 1988},
	{"昭和", 1925},
	{"大正", 1911},
	{"明治", 1867},
}

var (
	eraDateRe      = regexp.MustCompile(`^(元|\d{1,2})年(\d{1,2})月(\d{1,2})日$`)
	calendarDateRe = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日$`)
)

// ParsePeriod normalizes a scraped period fragment to NFKC and cuts out
// the term label, the "from" date and the "to" date. The "to" span runs
// to the last date suffix in the string so that date-like text inside
// the label does not truncate it.
func ParsePeriod(raw string) (*ReportingPeriod, error) {
	s := norm.NFKC.String(raw)

	termStart := strings.Index(s, termOpenMarker)
	termEnd := strings.Index(s, termCloseMarker)
	if termStart < 0 || termEnd < termStart {
		return nil, fmt.Errorf("%w: term markers not found in %q", ErrMalformedPeriodText, raw)
	}
	term := s[termStart : termEnd+len(termCloseMarker)]

	fromIdx := strings.Index(s, fromMarker)
	if fromIdx < 0 {
		return nil, fmt.Errorf("%w: from marker not found in %q", ErrMalformedPeriodText, raw)
	}
	rest := s[fromIdx+len(fromMarker):]
	fromEnd := strings.Index(rest, dateSuffix)
	if fromEnd < 0 {
		return nil, fmt.Errorf("%w: from date suffix not found in %q", ErrMalformedPeriodText, raw)
	}
	fromText := strings.TrimSpace(rest[:fromEnd+len(dateSuffix)])

	toIdx := strings.Index(s, toMarker)
	toEnd := strings.LastIndex(s, dateSuffix)
	if toIdx < 0 || toEnd < toIdx {
		return nil, fmt.Errorf("%w: to marker not found in %q", ErrMalformedPeriodText, raw)
	}
	toText := strings.TrimSpace(s[toIdx+len(toMarker) : toEnd+len(dateSuffix)])

	from, err := ParseWarekiDate(fromText)
	if err != nil {
		return nil, err
	}
	to, err := ParseWarekiDate(toText)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: period runs backwards (%s > %s)", ErrMalformedPeriodText, fromText, toText)
	}

	return &ReportingPeriod{Term: term, From: from, To: to}, nil
}

// ParseWarekiDate parses "平成31年4月1日" style era dates, falling back
// to the plain "2019年4月1日" form. Era year 元 is year 1.
func ParseWarekiDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, era := range eras {
		if !strings.HasPrefix(s, era.name) {
			continue
		}
		m := eraDateRe.FindStringSubmatch(strings.TrimPrefix(s, era.name))
		if m == nil {
			break
		}
		year := 1
		if m[1] != "元" {
			year, _ = strconv.Atoi(m[1])
		}
		return makeDate(era.base+year, m[2], m[3], s)
	}

	if m := calendarDateRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		return makeDate(year, m[2], m[3], s)
	}

	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrMalformedPeriodText, s)
}

func makeDate(year int, monthStr, dayStr, original string) (time.Time, error) {
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. 2月30日), which means the
	// input was not a real calendar date.
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, fmt.Errorf("%w: invalid calendar date %q", ErrMalformedPeriodText, original)
	}
	return d, nil
}

// FormatWarekiDate renders a date back into the era form accepted by
// ParseWarekiDate.
func FormatWarekiDate(d time.Time) string {
	var name string
	var base int
	switch {
	case !d.Before(time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)):
		name, base = "令和", 2018
	case !d.Before(time.Date(1989, 1, 8, 0, 0, 0, 0, time.UTC)):
		name, base = "平成", 1988
	case !d.Before(time.Date(1926, 12, 25, 0, 0, 0, 0, time.UTC)):
		name, base = "昭和", 1925
	case !d.Before(time.Date(1912, 7, 30, 0, 0, 0, 0, time.UTC)):
		name, base = "大正", 1911
	default:
		name, base = "明治", 1867
	}
	return fmt.Sprintf("%s%d年%d月%d日", name, d.Year()-base, int(d.Month()), d.Day())
}
