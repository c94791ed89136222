package data

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/store"
)

// Repo is the task/project repository: mutations that keep a project's
// task-id list and its task documents consistent, plus the read pipeline
// that joins foreign keys into fully resolved projects.
type Repo struct {
	store    store.Store
	resolver *UserResolver
}

func NewRepo(st store.Store) *Repo {
	return &Repo{
		store:    st,
		resolver: NewUserResolver(st),
	}
}

// CreateProject persists a new project owned by owner and returns its id.
func (r *Repo) CreateProject(ctx context.Context, owner models.User, name string, members []models.User) (string, error) {
	project := models.Project{
		ID:        uuid.NewString(),
		Owner:     owner,
		Users:     members,
		Name:      name,
		CreatedAt: time.Now(),
	}
	dto := projectToDTO(project)
	if err := r.store.Set(ctx, store.CollectionProjects, dto.ID, dto); err != nil {
		return "", fmt.Errorf("create project: %w", err)
	}
	return dto.ID, nil
}

// AddTask creates the task document and appends its id to the project's
// task-id list in one transaction. No partial state is observable.
func (r *Repo) AddTask(ctx context.Context, projectID string, t models.Task) (string, error) {
	t.ID = uuid.NewString()
	t.ProjectID = projectID
	t.CreatedAt = time.Now()
	if t.Status == "" {
		t.Status = models.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = models.PriorityNone
	}
	dto := taskToDTO(t)

	err := r.store.Transaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(store.CollectionProjects, projectID)
		if err != nil {
			return err
		}
		var project projectDTO
		if err := doc.Decode(&project); err != nil {
			return err
		}

		if err := tx.Set(store.CollectionTasks, dto.ID, dto); err != nil {
			return err
		}
		project.TasksIDs = dedupeStrings(append(project.TasksIDs, dto.ID))
		return tx.Set(store.CollectionProjects, projectID, project)
	})
	if err != nil {
		return "", fmt.Errorf("add task: %w", err)
	}
	return dto.ID, nil
}

// RemoveTask removes the task id from the project's list and deletes the
// task document in one transaction. A missing task aborts the transaction
// with not-found and leaves the project untouched.
func (r *Repo) RemoveTask(ctx context.Context, projectID, taskID string) error {
	err := r.store.Transaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(store.CollectionProjects, projectID)
		if err != nil {
			return err
		}
		var project projectDTO
		if err := doc.Decode(&project); err != nil {
			return err
		}

		if _, err := tx.Get(store.CollectionTasks, taskID); err != nil {
			return err
		}

		kept := make([]string, 0, len(project.TasksIDs))
		for _, id := range project.TasksIDs {
			if id != taskID {
				kept = append(kept, id)
			}
		}
		project.TasksIDs = kept

		if err := tx.Set(store.CollectionProjects, projectID, project); err != nil {
			return err
		}
		return tx.Delete(store.CollectionTasks, taskID)
	})
	if err != nil {
		return fmt.Errorf("remove task: %w", err)
	}
	return nil
}

// UpdateTask overwrites the whole task document. Last writer wins; there is
// no concurrency token and no merge of concurrent edits.
func (r *Repo) UpdateTask(ctx context.Context, t models.Task) error {
	if t.ID == "" {
		return fmt.Errorf("update task: %w", store.ErrNotFound)
	}
	now := time.Now()
	t.UpdatedAt = &now
	dto := taskToDTO(t)
	if err := r.store.Set(ctx, store.CollectionTasks, dto.ID, dto); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// UpdateProject overwrites the whole project document, last writer wins.
func (r *Repo) UpdateProject(ctx context.Context, p models.Project) error {
	if p.ID == "" {
		return fmt.Errorf("update project: %w", store.ErrNotFound)
	}
	dto := projectToDTO(p)
	if err := r.store.Set(ctx, store.CollectionProjects, dto.ID, dto); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// DeleteProject deletes every task of the project and the project document
// in one batched write. The read of the task set is a separate step: a task
// created between the read and the commit survives as an orphan.
func (r *Repo) DeleteProject(ctx context.Context, projectID string) error {
	taskDocs, err := r.store.Query(ctx, store.CollectionTasks, store.Filter{
		Field: "projectId", Op: store.OpEqual, Value: projectID,
	})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	writes := make([]store.Write, 0, len(taskDocs)+1)
	for _, doc := range taskDocs {
		writes = append(writes, store.Write{
			Kind:       store.WriteDelete,
			Collection: store.CollectionTasks,
			ID:         doc.ID,
		})
	}
	writes = append(writes, store.Write{
		Kind:       store.WriteDelete,
		Collection: store.CollectionProjects,
		ID:         projectID,
	})

	if err := r.store.BatchWrite(ctx, writes); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// UserByEmail finds a user profile by exact email
func (r *Repo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	docs, err := r.store.Query(ctx, store.CollectionUsers, store.Filter{
		Field: "email", Op: store.OpEqual, Value: email,
	})
	if err != nil {
		return nil, fmt.Errorf("user by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("user %s: %w", email, store.ErrNotFound)
	}
	var user models.User
	if err := docs[0].Decode(&user); err != nil {
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return &user, nil
}

// TaskByID returns one fully resolved task
func (r *Repo) TaskByID(ctx context.Context, taskID string) (*models.Task, error) {
	doc, err := r.store.Get(ctx, store.CollectionTasks, taskID)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", taskID, err)
	}
	var dto taskDTO
	if err := doc.Decode(&dto); err != nil {
		return nil, fmt.Errorf("task %s: %w", taskID, err)
	}

	ids := append([]string{dto.UserID}, dto.AssignedTo...)
	users, err := r.resolver.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	owner, ok := users[dto.UserID]
	if !ok {
		return nil, fmt.Errorf("task %s owner %s: %w", taskID, dto.UserID, store.ErrNotFound)
	}
	task := dto.toDomain(owner, pickUsers(users, dto.AssignedTo))
	return &task, nil
}

// ProjectByID returns one fully resolved project with its tasks joined in
func (r *Repo) ProjectByID(ctx context.Context, projectID string) (models.Project, error) {
	projects, err := r.ProjectsByIDs(ctx, []string{projectID})
	if err != nil {
		return models.Project{}, err
	}
	if len(projects) == 0 {
		return models.Project{}, fmt.Errorf("project %s: %w", projectID, store.ErrNotFound)
	}
	return projects[0], nil
}

// ProjectsByIDs resolves the given project ids into complete projects:
// owner, members and every task with its own owner and assignees. Ids that
// no longer exist are dropped from the result.
func (r *Repo) ProjectsByIDs(ctx context.Context, projectIDs []string) ([]models.Project, error) {
	projectIDs = dedupeStrings(projectIDs)
	if len(projectIDs) == 0 {
		return []models.Project{}, nil
	}

	projectDocs, err := r.fetchDocs(ctx, store.CollectionProjects, projectIDs)
	if err != nil {
		return nil, err
	}
	projectDTOs := make([]projectDTO, 0, len(projectDocs))
	taskIDs := make([]string, 0)
	for _, doc := range projectDocs {
		var dto projectDTO
		if err := doc.Decode(&dto); err != nil {
			return nil, fmt.Errorf("decode project %s: %w", doc.ID, err)
		}
		projectDTOs = append(projectDTOs, dto)
		taskIDs = append(taskIDs, dto.TasksIDs...)
	}

	taskDocs, err := r.fetchDocs(ctx, store.CollectionTasks, dedupeStrings(taskIDs))
	if err != nil {
		return nil, err
	}
	taskDTOs := make([]taskDTO, 0, len(taskDocs))
	userIDs := make([]string, 0)
	for _, doc := range taskDocs {
		var dto taskDTO
		if err := doc.Decode(&dto); err != nil {
			return nil, fmt.Errorf("decode task %s: %w", doc.ID, err)
		}
		taskDTOs = append(taskDTOs, dto)
		userIDs = append(userIDs, dto.UserID)
		userIDs = append(userIDs, dto.AssignedTo...)
	}
	for _, dto := range projectDTOs {
		userIDs = append(userIDs, dto.OwnerID)
		userIDs = append(userIDs, dto.Users...)
	}

	users, err := r.resolver.Resolve(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	tasksByProject := make(map[string][]models.Task)
	for _, dto := range taskDTOs {
		owner, ok := users[dto.UserID]
		if !ok {
			// Dangling owner reference: drop the task rather than fail the view.
			continue
		}
		task := dto.toDomain(owner, pickUsers(users, dto.AssignedTo))
		tasksByProject[dto.ProjectID] = append(tasksByProject[dto.ProjectID], task)
	}

	projects := make([]models.Project, 0, len(projectDTOs))
	for _, dto := range projectDTOs {
		owner, ok := users[dto.OwnerID]
		if !ok {
			return nil, fmt.Errorf("project %s owner %s: %w", dto.ID, dto.OwnerID, store.ErrNotFound)
		}
		projects = append(projects, dto.toDomain(owner, pickUsers(users, dto.Users), tasksByProject[dto.ID]))
	}
	return projects, nil
}

// fetchDocs batch-fetches ids in chunks of store.ChunkLimit, concurrently
func (r *Repo) fetchDocs(ctx context.Context, collection string, ids []string) ([]store.Doc, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	chunks := chunkIDs(ids, store.ChunkLimit)
	results := make([][]store.Doc, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			docs, err := r.store.QueryIn(gctx, collection, chunk)
			if err != nil {
				return err
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", collection, err)
	}

	var docs []store.Doc
	for _, part := range results {
		docs = append(docs, part...)
	}
	return docs, nil
}

func pickUsers(users map[string]models.User, ids []string) []models.User {
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, u)
		}
	}
	return out
}
