package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dateRegex     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	relativeRegex = regexp.MustCompile(`^(\d+)\s+(hour|hours|day|days|week|weeks)$`)
)

// ParseDeadline parses the deadline formats accepted by the task form:
// dd/mm/yyyy, "X hours", "X days" or "X weeks". Empty input means no
// deadline.
func ParseDeadline(input string) (*time.Time, error) {
	if input == "" {
		return nil, nil
	}

	input = strings.TrimSpace(input)

	if deadline, err := parseDateFormat(input); err == nil {
		return deadline, nil
	}
	if deadline, err := parseRelativeTime(input); err == nil {
		return deadline, nil
	}
	return nil, fmt.Errorf("invalid date format. Use: dd/mm/yyyy, X days, X hours, or X weeks")
}

// parseDateFormat parses dd/mm/yyyy, pinned to end of day
func parseDateFormat(input string) (*time.Time, error) {
	matches := dateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	if day < 1 || day > 31 {
		return nil, fmt.Errorf("day must be between 1 and 31")
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12")
	}

	deadline := time.Date(year, time.Month(month), day, 23, 59, 59, 0, time.Local)

	// Check if date is valid (handles leap years, etc.)
	if deadline.Day() != day || deadline.Month() != time.Month(month) || deadline.Year() != year {
		return nil, fmt.Errorf("invalid date")
	}
	return &deadline, nil
}

// parseRelativeTime parses "3 days", "24 hours", "2 weeks"
func parseRelativeTime(input string) (*time.Time, error) {
	matches := relativeRegex.FindStringSubmatch(strings.ToLower(input))
	if len(matches) != 3 {
		return nil, fmt.Errorf("invalid relative time format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil || amount < 1 {
		return nil, fmt.Errorf("invalid number")
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := 23*time.Hour + 59*time.Minute + 59*time.Second

	switch matches[2] {
	case "hour", "hours":
		deadline := now.Add(time.Duration(amount) * time.Hour)
		return &deadline, nil
	case "day", "days":
		deadline := today.AddDate(0, 0, amount).Add(endOfDay)
		return &deadline, nil
	case "week", "weeks":
		deadline := today.AddDate(0, 0, amount*7).Add(endOfDay)
		return &deadline, nil
	default:
		return nil, fmt.Errorf("unsupported time unit")
	}
}

// FormatDeadline formats a deadline for display
func FormatDeadline(deadline *time.Time) string {
	if deadline == nil {
		return ""
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, deadline.Location())
	daysDiff := int(dueDay.Sub(today).Hours() / 24)

	dateStr := deadline.Format("02/01/2006")

	switch {
	case daysDiff < 0:
		return fmt.Sprintf("overdue (%s)", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("due %s", dateStr)
	}
}
