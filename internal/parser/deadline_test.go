package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeadlineEmpty(t *testing.T) {
	deadline, err := ParseDeadline("")
	require.NoError(t, err)
	assert.Nil(t, deadline)
}

func TestParseDeadlineDate(t *testing.T) {
	deadline, err := ParseDeadline("15/03/2030")
	require.NoError(t, err)
	require.NotNil(t, deadline)
	assert.Equal(t, 2030, deadline.Year())
	assert.Equal(t, time.March, deadline.Month())
	assert.Equal(t, 15, deadline.Day())
	assert.Equal(t, 23, deadline.Hour())
	assert.Equal(t, 59, deadline.Minute())
}

func TestParseDeadlineInvalidDate(t *testing.T) {
	for _, input := range []string{"31/02/2025", "00/01/2025", "12/13/2025", "tomorrow", "15-03-2030"} {
		_, err := ParseDeadline(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseDeadlineRelative(t *testing.T) {
	deadline, err := ParseDeadline("3 days")
	require.NoError(t, err)
	require.NotNil(t, deadline)
	wantDay := time.Now().AddDate(0, 0, 3)
	assert.Equal(t, wantDay.Day(), deadline.Day())
	assert.Equal(t, 23, deadline.Hour())

	deadline, err = ParseDeadline("2 weeks")
	require.NoError(t, err)
	require.NotNil(t, deadline)
	assert.Equal(t, time.Now().AddDate(0, 0, 14).Day(), deadline.Day())

	deadline, err = ParseDeadline("2 hours")
	require.NoError(t, err)
	require.NotNil(t, deadline)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), *deadline, time.Minute)

	_, err = ParseDeadline("0 days")
	assert.Error(t, err)
}

func TestFormatDeadline(t *testing.T) {
	assert.Equal(t, "", FormatDeadline(nil))

	today := time.Now()
	assert.Contains(t, FormatDeadline(&today), "due today")

	tomorrow := time.Now().AddDate(0, 0, 1)
	assert.Contains(t, FormatDeadline(&tomorrow), "due tomorrow")

	yesterday := time.Now().AddDate(0, 0, -1)
	assert.Contains(t, FormatDeadline(&yesterday), "overdue")

	nextMonth := time.Now().AddDate(0, 1, 0)
	assert.Contains(t, FormatDeadline(&nextMonth), "due "+nextMonth.Format("02/01/2006"))
}
