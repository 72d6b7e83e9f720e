package crawler

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrBadDate is returned when a publication date is in no known format.
var ErrBadDate = errors.New("unrecognised date format")

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006, 15:04",
	"02.01.2006",
}

var russianMonths = map[string]time.Month{
	"январь": time.January, "января": time.January, "янв": time.January,
	"февраль": time.February, "февраля": time.February, "фев": time.February,
	"март": time.March, "марта": time.March, "мар": time.March,
	"апрель": time.April, "апреля": time.April, "апр": time.April,
	"май": time.May, "мая": time.May,
	"июнь": time.June, "июня": time.June, "июн": time.June,
	"июль": time.July, "июля": time.July, "июл": time.July,
	"август": time.August, "августа": time.August, "авг": time.August,
	"сентябрь": time.September, "сентября": time.September, "сен": time.September, "сент": time.September,
	"октябрь": time.October, "октября": time.October, "окт": time.October,
	"ноябрь": time.November, "ноября": time.November, "ноя": time.November,
	"декабрь": time.December, "декабря": time.December, "дек": time.December,
}

var (
	// 12 апреля 2023, 14:30 / 12 апреля 2023 г. в 14:30 / 12 апреля, 14:30
	monthNamePattern = regexp.MustCompile(
		`^(\d{1,2})\s+([а-яё]+)\.?(?:\s+(\d{4}))?(?:\s*г\.?)?(?:,?\s*(?:в\s+)?(\d{1,2}):(\d{2}))?$`)
	// сегодня, 14:30 / вчера в 09:05
	relativePattern = regexp.MustCompile(`^(сегодня|вчера),?\s*(?:в\s+)?(\d{1,2}):(\d{2})$`)
)

// UnifyDate converts a raw publication date to a time. Dates without a year
// or relative dates are resolved against now.
func UnifyDate(raw string, now time.Time) (time.Time, error) {
	value := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrBadDate)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}

		if t, err := time.Parse(layout, strings.ToUpper(value)); err == nil {
			return t, nil
		}
	}

	if m := relativePattern.FindStringSubmatch(value); m != nil {
		day := now
		if m[1] == "вчера" {
			day = now.AddDate(0, 0, -1)
		}

		return clock(day.Year(), day.Month(), day.Day(), m[2], m[3], now.Location(), raw)
	}

	if m := monthNamePattern.FindStringSubmatch(value); m != nil {
		month, ok := russianMonths[m[2]]
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, raw)
		}

		day, _ := strconv.Atoi(m[1])

		year := now.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}

		hour, minute := "0", "0"
		if m[4] != "" {
			hour, minute = m[4], m[5]
		}

		return clock(year, month, day, hour, minute, now.Location(), raw)
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, raw)
}

func clock(year int, month time.Month, day int, hour, minute string, loc *time.Location, raw string) (time.Time, error) {
	h, _ := strconv.Atoi(hour)
	m, _ := strconv.Atoi(minute)

	if day < 1 || day > 31 || h > 23 || m > 59 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, raw)
	}

	t := time.Date(year, month, day, h, m, 0, 0, loc)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, raw)
	}

	return t, nil
}
