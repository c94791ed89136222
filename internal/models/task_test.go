package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAdvance(t *testing.T) {
	assert.Equal(t, StatusInProgress, StatusTodo.Advance())
	assert.Equal(t, StatusCompleted, StatusInProgress.Advance())
	assert.Equal(t, StatusCompleted, StatusCompleted.Advance())
}

func TestCountByStatusAlwaysHasAllKeys(t *testing.T) {
	counts := Project{}.CountByStatus()
	assert.Equal(t, map[Status]int{
		StatusTodo:       0,
		StatusInProgress: 0,
		StatusCompleted:  0,
	}, counts)

	p := Project{Tasks: []Task{
		{Status: StatusTodo},
		{Status: StatusInProgress},
		{Status: StatusInProgress},
	}}
	counts = p.CountByStatus()
	assert.Equal(t, 1, counts[StatusTodo])
	assert.Equal(t, 2, counts[StatusInProgress])
	assert.Equal(t, 0, counts[StatusCompleted])
}
