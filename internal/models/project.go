package models

import "time"

// Project groups tasks and members. Owner, Users and Tasks are fully resolved
// views over the persisted foreign ids.
type Project struct {
	ID        string
	Owner     User
	Users     []User
	Tasks     []Task
	Name      string
	CreatedAt time.Time
}

// CountByStatus returns the number of tasks per status. Every status has an
// entry even when the count is zero.
func (p Project) CountByStatus() map[Status]int {
	counts := map[Status]int{
		StatusTodo:       0,
		StatusInProgress: 0,
		StatusCompleted:  0,
	}
	for _, t := range p.Tasks {
		counts[t.Status]++
	}
	return counts
}
