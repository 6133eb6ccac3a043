// Package normalize holds the pure cleaning and validation helpers used by the
// ingestion pipeline. Inbound values arrive as loosely formatted spreadsheet
// strings ("$298.00", "107.44%", "FALSE") and are converted to canonical
// numeric or cleaned-string form here, before any business logic sees them.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	HorseNumberMin = 1
	HorseNumberMax = 16
	RaceNumberMax  = 15

	// DefaultFutureWindow is how many years into the future a two-digit year
	// may land before it is assumed to belong to the previous century.
	DefaultFutureWindow = 10
)

// ErrInvalidDateFormat is returned for dates that are neither M-D-YY nor
// YYYY-MM-DD.
var ErrInvalidDateFormat = errors.New("invalid date format")

// Sentinel strings that mean "no value" in the spreadsheet exports.
var sentinels = map[string]struct{}{
	"":        {},
	"SC":      {},
	"N/A":     {},
	"NA":      {},
	"#VALUE!": {},
	"#DIV/0!": {},
	"FALSE":   {},
}

var (
	currencyRe   = regexp.MustCompile(`^\$?\s*\d{1,3}(,\d{3})*(\.\d+)?$|^\$?\s*\d+(\.\d+)?$`)
	percentageRe = regexp.MustCompile(`^\d+(\.\d+)?\s*%$`)
)

// ConvertDateFormat converts M-D-YY or YYYY-MM-DD input to YYYY-MM-DD using
// the default century window.
func ConvertDateFormat(s string) (string, error) {
	return ConvertDateFormatWindow(s, DefaultFutureWindow)
}

// ConvertDateFormatWindow is ConvertDateFormat with an explicit future window
// for two-digit-year century inference.
func ConvertDateFormatWindow(s string, futureWindow int) (string, error) {
	return convertDateAt(s, time.Now(), futureWindow)
}

func convertDateAt(s string, now time.Time, futureWindow int) (string, error) {
	s = strings.TrimSpace(s)

	// Already ISO.
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02"), nil
	}

	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}

	month, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	yy, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || len(parts[2]) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}

	// Century inference: assume the current century, roll back one century if
	// that would put the date more than futureWindow years ahead of today.
	year := now.Year() - now.Year()%100 + yy
	if year > now.Year()+futureWindow {
		year -= 100
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(t.Month()) != month || t.Day() != day {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}

	return t.Format("2006-01-02"), nil
}

// GenerateRaceID builds the deterministic race key TRACKCODE_YYYYMMDD_NN.
func GenerateRaceID(trackCode, date string, raceNumber int) (string, error) {
	iso, err := ConvertDateFormat(date)
	if err != nil {
		return "", err
	}
	compact := strings.ReplaceAll(iso, "-", "")
	return fmt.Sprintf("%s_%s_%02d", strings.ToUpper(trackCode), compact, raceNumber), nil
}

// Numeric strips currency/grouping characters and parses a float. Sentinel
// strings and anything unparseable come back nil.
func Numeric(v string) *float64 {
	cleaned := strings.TrimSpace(v)
	if _, ok := sentinels[strings.ToUpper(cleaned)]; ok {
		return nil
	}
	cleaned = strings.NewReplacer("$", "", ",", "", " ", "").Replace(cleaned)
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Currency passes through values that look like a dollar amount, preserving
// the display form. Reports show these verbatim, so they are not parsed.
func Currency(v string) *string {
	cleaned := strings.TrimSpace(v)
	if _, ok := sentinels[strings.ToUpper(cleaned)]; ok {
		return nil
	}
	if !currencyRe.MatchString(cleaned) {
		return nil
	}
	return &cleaned
}

// Percentage passes through values that look like a percentage, preserving
// the display form.
func Percentage(v string) *string {
	cleaned := strings.TrimSpace(v)
	if _, ok := sentinels[strings.ToUpper(cleaned)]; ok {
		return nil
	}
	if !percentageRe.MatchString(cleaned) {
		return nil
	}
	return &cleaned
}

// CleanString trims whitespace and maps empty or sentinel input to nil.
func CleanString(v string) *string {
	cleaned := strings.TrimSpace(v)
	if _, ok := sentinels[strings.ToUpper(cleaned)]; ok {
		return nil
	}
	return &cleaned
}

// HorseNumber numeric-normalizes then range-checks a horse number, nil when
// outside [HorseNumberMin, HorseNumberMax] or not a whole number.
func HorseNumber(v string) *int {
	return rangedInt(v, HorseNumberMin, HorseNumberMax)
}

// RaceNumber numeric-normalizes then range-checks a race number against the
// configured minimum (1 or 3 depending on policy) and the fixed maximum of 15.
func RaceNumber(v string, min int) *int {
	return rangedInt(v, min, RaceNumberMax)
}

func rangedInt(v string, min, max int) *int {
	f := Numeric(v)
	if f == nil {
		return nil
	}
	n := int(*f)
	if float64(n) != *f || n < min || n > max {
		return nil
	}
	return &n
}
