package data

import (
	"time"

	"github.com/taskdeck/taskdeck/internal/models"
)

// Persisted document shapes. Field names are part of the store contract and
// never change with the domain types.

type projectDTO struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Users     []string  `json:"users"`
	TasksIDs  []string  `json:"tasksIds"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type taskDTO struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	Tags        []string   `json:"tags"`
	AssignedTo  []string   `json:"assignedTo"`
}

func taskToDTO(t models.Task) taskDTO {
	assigned := make([]string, 0, len(t.AssignedTo))
	for _, u := range t.AssignedTo {
		if u.ID != "" {
			assigned = append(assigned, u.ID)
		}
	}
	return taskDTO{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		UserID:      t.Owner.ID,
		Title:       t.Title,
		Description: t.Description,
		StartDate:   t.StartDate,
		Deadline:    t.Deadline,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Tags:        dedupeStrings(t.Tags),
		AssignedTo:  dedupeStrings(assigned),
	}
}

func (d taskDTO) toDomain(owner models.User, assigned []models.User) models.Task {
	status := models.Status(d.Status)
	if status == "" {
		status = models.StatusTodo
	}
	priority := models.Priority(d.Priority)
	if priority == "" {
		priority = models.PriorityNone
	}
	return models.Task{
		ID:          d.ID,
		ProjectID:   d.ProjectID,
		Owner:       owner,
		Title:       d.Title,
		Description: d.Description,
		StartDate:   d.StartDate,
		Deadline:    d.Deadline,
		Status:      status,
		Priority:    priority,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Tags:        d.Tags,
		AssignedTo:  assigned,
	}
}

func projectToDTO(p models.Project) projectDTO {
	users := make([]string, 0, len(p.Users))
	for _, u := range p.Users {
		if u.ID != "" {
			users = append(users, u.ID)
		}
	}
	taskIDs := make([]string, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		if t.ID != "" {
			taskIDs = append(taskIDs, t.ID)
		}
	}
	return projectDTO{
		ID:        p.ID,
		OwnerID:   p.Owner.ID,
		Users:     dedupeStrings(users),
		TasksIDs:  dedupeStrings(taskIDs),
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}

func (d projectDTO) toDomain(owner models.User, users []models.User, tasks []models.Task) models.Project {
	return models.Project{
		ID:        d.ID,
		Owner:     owner,
		Users:     users,
		Tasks:     tasks,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	}
}

// dedupeStrings keeps first occurrences, preserving order. Comparison is
// case-sensitive.
func dedupeStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// chunkIDs splits ids into slices of at most size elements
func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
