// Package datekey turns the free-form date strings found in club news
// ("14.1.26 TAR", "Qui 13 Jan NTE") into sortable keys.
//
// Two dialects are recognized:
//
//	numeric    D.M.YY[YY] [PERIOD]
//	tokenized  [WEEKDAY] DAY MONTH [YY] [PERIOD]
//
// Month and period abbreviations are accepted in Portuguese and English.
// Anything else parses to nil, which callers must treat as "unparseable"
// rather than as a very old date.
package datekey

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Placeholder is the display value used for items without a date.
const Placeholder = "—"

// NoPeriod is the rank given to a missing or unrecognized time-of-day token.
// Both cases share the rank on purpose; nothing downstream tells them apart.
const NoPeriod = -1

// Period ranks, ordered morning < afternoon < night.
const (
	PeriodMorning   = 0
	PeriodAfternoon = 1
	PeriodNight     = 2
)

// Key is a (year, month, day, period) tuple ordered lexicographically.
type Key struct {
	Year   int
	Month  int
	Day    int
	Period int
}

// String renders the key as YYYY-MM-DD/p.
func (k Key) String() string {
	return fmt.Sprintf("%04d-%02d-%02d/%d", k.Year, k.Month, k.Day, k.Period)
}

// Compare returns -1, 0 or +1 comparing a and b lexicographically.
func Compare(a, b Key) int {
	switch {
	case a.Year != b.Year:
		return cmpInt(a.Year, b.Year)
	case a.Month != b.Month:
		return cmpInt(a.Month, b.Month)
	case a.Day != b.Day:
		return cmpInt(a.Day, b.Day)
	default:
		return cmpInt(a.Period, b.Period)
	}
}

// Less reports whether a sorts strictly before b.
func Less(a, b Key) bool {
	return Compare(a, b) < 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// months maps upper-cased abbreviations (pt and en) to month numbers.
var months = map[string]int{
	"JAN": 1, "JANEIRO": 1, "JANUARY": 1,
	"FEV": 2, "FEB": 2, "FEVEREIRO": 2, "FEBRUARY": 2,
	"MAR": 3, "MARÇO": 3, "MARCO": 3, "MARCH": 3,
	"ABR": 4, "APR": 4, "ABRIL": 4, "APRIL": 4,
	"MAI": 5, "MAY": 5, "MAIO": 5,
	"JUN": 6, "JUNE": 6, "JUNHO": 6,
	"JUL": 7, "JULY": 7, "JULHO": 7,
	"AGO": 8, "AUG": 8, "AGOSTO": 8, "AUGUST": 8,
	"SET": 9, "SEP": 9, "SEPT": 9, "SETEMBRO": 9, "SEPTEMBER": 9,
	"OUT": 10, "OCT": 10, "OUTUBRO": 10, "OCTOBER": 10,
	"NOV": 11, "NOVEMBRO": 11, "NOVEMBER": 11,
	"DEZ": 12, "DEC": 12, "DEZEMBRO": 12, "DECEMBER": 12,
}

// periods maps upper-cased time-of-day tokens to their rank.
var periods = map[string]int{
	"MAN": PeriodMorning, "MANHÃ": PeriodMorning, "MANHA": PeriodMorning, "MORNING": PeriodMorning, "AM": PeriodMorning,
	"TAR": PeriodAfternoon, "TARDE": PeriodAfternoon, "AFT": PeriodAfternoon, "AFTERNOON": PeriodAfternoon, "PM": PeriodAfternoon,
	"NTE": PeriodNight, "NOI": PeriodNight, "NOITE": PeriodNight, "NIGHT": PeriodNight, "EVE": PeriodNight,
}

// PeriodRank returns the rank of a time-of-day token, or NoPeriod.
func PeriodRank(tok string) int {
	if r, ok := periods[normalizeToken(tok)]; ok {
		return r
	}
	return NoPeriod
}

// MonthNumber returns the month for an abbreviation, or 0 if unknown.
func MonthNumber(tok string) int {
	return months[normalizeToken(tok)]
}

func normalizeToken(tok string) string {
	return strings.ToUpper(strings.Trim(tok, ".,;:"))
}

// ExpandYear applies the two-digit year rule: 00-79 are 2000s, 80-99 are
// 1900s. Values of three or more digits are taken as-is.
func ExpandYear(y int) int {
	switch {
	case y < 0:
		return y
	case y <= 79:
		return 2000 + y
	case y <= 99:
		return 1900 + y
	default:
		return y
	}
}

// Parse converts raw into a Key. now supplies the year for the tokenized
// dialect when the string carries none. Returns nil when no day and month
// can be resolved, or when raw is empty or the placeholder.
func Parse(raw string, now time.Time) *Key {
	s := strings.TrimSpace(raw)
	if s == "" || s == Placeholder {
		return nil
	}

	fields := strings.Fields(s)
	if k, ok := parseNumeric(fields); ok {
		return &k
	}
	if k, ok := parseTokenized(s, now); ok {
		return &k
	}
	return nil
}

// parseNumeric looks for the first D.M.Y field and takes the field after it
// as the period token.
func parseNumeric(fields []string) (Key, bool) {
	for i, f := range fields {
		if !strings.Contains(f, ".") {
			continue
		}
		parts := strings.Split(strings.Trim(f, "."), ".")
		if len(parts) < 3 {
			continue
		}
		d, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		y, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		if !validDay(d) || m < 1 || m > 12 {
			continue
		}
		period := NoPeriod
		if i+1 < len(fields) {
			period = PeriodRank(fields[i+1])
		}
		return Key{Year: ExpandYear(y), Month: m, Day: d, Period: period}, true
	}
	return Key{}, false
}

// parseTokenized handles "[weekday] DAY MONTH [YY] [PERIOD]". The weekday is
// skipped because only the first all-digit token is read as the day.
func parseTokenized(s string, now time.Time) (Key, bool) {
	tokens := strings.Fields(strings.ReplaceAll(s, "-", " "))
	day, month, year := 0, 0, 0

	for i, tok := range tokens {
		if !isDigits(tok) {
			continue
		}
		day, _ = strconv.Atoi(tok)
		if i+1 < len(tokens) {
			month = MonthNumber(tokens[i+1])
		}
		if month != 0 && i+2 < len(tokens) && isDigits(tokens[i+2]) {
			y, _ := strconv.Atoi(tokens[i+2])
			year = ExpandYear(y)
		}
		break
	}

	if !validDay(day) || month == 0 {
		return Key{}, false
	}
	if year == 0 {
		year = now.Year()
	}

	period := NoPeriod
	if len(tokens) > 0 {
		period = PeriodRank(tokens[len(tokens)-1])
	}
	return Key{Year: year, Month: month, Day: day, Period: period}, true
}

func validDay(d int) bool {
	return d >= 1 && d <= 31
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
