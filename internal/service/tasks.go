package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/authz"
	"github.com/untibullet/hours-ledger/internal/models"
)

const (
	maxTaskTitle       = 200
	maxTaskDescription = 1000
)

// TaskInput поля задачи; при обновлении nil означает "не менять"
type TaskInput struct {
	Title          *string              `json:"title"`
	Description    *string              `json:"description"`
	ProjectID      *string              `json:"project"`
	AssignedTo     *[]string            `json:"assignedTo"`
	Status         *models.TaskStatus   `json:"status"`
	Priority       *models.TaskPriority `json:"priority"`
	EstimatedHours *float64             `json:"estimatedHours"`
	StartDate      *string              `json:"startDate"`
	DueDate        *string              `json:"dueDate"`
}

// onlyStatus сообщает, что кроме статуса ничего не передано
func (in TaskInput) onlyStatus() bool {
	return in.Title == nil && in.Description == nil && in.ProjectID == nil && in.AssignedTo == nil &&
		in.Priority == nil && in.EstimatedHours == nil && in.StartDate == nil && in.DueDate == nil
}

func applyTask(in TaskInput, t *models.Task) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return apperr.Validation("", "Task title is required")
		}
		if len([]rune(title)) > maxTaskTitle {
			return apperr.Validation("", "Task title cannot exceed 200 characters")
		}
		t.Title = title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if len([]rune(description)) > maxTaskDescription {
			return apperr.Validation("", "Description cannot exceed 1000 characters")
		}
		t.Description = description
	}
	if in.AssignedTo != nil {
		t.AssignedTo = uniqueIDs(*in.AssignedTo)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return apperr.Validation("", "Invalid task status")
		}
		t.Status = *in.Status
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return apperr.Validation("", "Invalid task priority")
		}
		t.Priority = *in.Priority
	}
	if in.EstimatedHours != nil {
		if *in.EstimatedHours < 0 {
			return apperr.Validation("", "Estimated hours cannot be negative")
		}
		t.EstimatedHours = *in.EstimatedHours
	}
	if in.StartDate != nil {
		start, err := parseOptionalDate(in.StartDate, "Start date")
		if err != nil {
			return err
		}
		t.StartDate = start
	}
	if in.DueDate != nil {
		due, err := parseOptionalDate(in.DueDate, "Due date")
		if err != nil {
			return err
		}
		t.DueDate = due
	}
	return nil
}

// projectClients возвращает клиента для каждого проекта из набора задач
func (s *Service) projectClients(ctx context.Context, tasks []models.Task) (map[string]string, error) {
	clients := map[string]string{}
	for _, t := range tasks {
		if _, ok := clients[t.ProjectID]; ok {
			continue
		}
		p, err := s.store.GetProject(ctx, t.ProjectID)
		if err != nil {
			return nil, fromStore(err, "Project not found", "get project")
		}
		clients[p.ID] = p.ClientID
	}
	return clients, nil
}

func (s *Service) taskViews(ctx context.Context, tasks []models.Task) ([]models.TaskView, error) {
	ids := make([]string, 0, len(tasks))
	refIDs := []string{}
	for _, t := range tasks {
		ids = append(ids, t.ID)
		refIDs = append(refIDs, t.ProjectID)
		refIDs = append(refIDs, t.AssignedTo...)
	}
	refs, err := s.resolveRefs(ctx, refIDs)
	if err != nil {
		return nil, err
	}
	clients, err := s.projectClients(ctx, tasks)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.TaskLogTotals(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("failed to count task hours", err)
	}

	views := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, models.TaskView{
			Task:      t,
			Project:   ref(refs, t.ProjectID),
			ClientID:  clients[t.ProjectID],
			Assignees: refList(refs, t.AssignedTo),
			LogTotal:  totals[t.ID],
		})
	}
	return views, nil
}

func (s *Service) taskView(ctx context.Context, t *models.Task) (*models.TaskView, error) {
	views, err := s.taskViews(ctx, []models.Task{*t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// CreateTask создает задачу; исполнители должны входить в состав проекта
func (s *Service) CreateTask(ctx context.Context, actor authz.Actor, in TaskInput) (*models.TaskView, error) {
	if _, err := s.engine.Authorize(actor, authz.ActionCreate, authz.ResourceTask); err != nil {
		return nil, err
	}
	if in.Title == nil {
		return nil, apperr.Validation("", "Task title is required")
	}
	if in.ProjectID == nil || strings.TrimSpace(*in.ProjectID) == "" {
		return nil, apperr.Validation("", "Project is required")
	}

	t := &models.Task{
		ID:         uuid.NewString(),
		ProjectID:  strings.TrimSpace(*in.ProjectID),
		AssignedTo: []string{},
		Status:     models.TaskTodo,
		Priority:   models.PriorityMedium,
		CreatedBy:  actor.ID,
	}
	if err := applyTask(in, t); err != nil {
		return nil, err
	}
	project, err := s.store.GetProject(ctx, t.ProjectID)
	if err != nil {
		return nil, fromStore(err, "Project not found", "get project")
	}
	if err := s.validator.ValidateTaskAssignees(project, t.AssignedTo); err != nil {
		return nil, err
	}

	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, fromStore(err, "Project not found", "create task")
	}
	return s.taskView(ctx, t)
}

// ListTasks возвращает задачи в области видимости действующего лица
func (s *Service) ListTasks(ctx context.Context, actor authz.Actor, f models.TaskFilter) ([]models.TaskView, models.Pagination, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceTask)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, models.Pagination{}, apperr.Validation("", "Invalid task status")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, models.Pagination{}, apperr.Validation("", "Invalid task priority")
	}
	grant.Scope.ApplyToTasks(&f)

	tasks, total, err := s.store.ListTasks(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, apperr.Internal("failed to list tasks", err)
	}
	views, err := s.taskViews(ctx, tasks)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return views, models.NewPagination(f.Page, total), nil
}

// TasksByProject возвращает задачи проекта; клиент видит только свои проекты,
// разработчик только назначенные ему задачи
func (s *Service) TasksByProject(ctx context.Context, actor authz.Actor, projectID string) ([]models.TaskView, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceTask)
	if err != nil {
		return nil, err
	}
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fromStore(err, "Project not found", "get project")
	}
	if grant.Scope.ClientID != "" && project.ClientID != grant.Scope.ClientID {
		return nil, apperr.Forbidden("Access denied")
	}

	f := models.TaskFilter{ProjectID: project.ID}
	grant.Scope.ApplyToTasks(&f)
	tasks, _, err := s.store.ListTasks(ctx, f)
	if err != nil {
		return nil, apperr.Internal("failed to list tasks", err)
	}
	return s.taskViews(ctx, tasks)
}

// GetTask возвращает задачу; задача вне области видимости дает Forbidden
func (s *Service) GetTask(ctx context.Context, actor authz.Actor, id string) (*models.TaskView, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceTask)
	if err != nil {
		return nil, err
	}
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Task not found", "get task")
	}
	view, err := s.taskView(ctx, t)
	if err != nil {
		return nil, err
	}
	if !grant.Scope.PermitsTask(t, view.ClientID) {
		return nil, apperr.Forbidden("Access denied")
	}
	return view, nil
}

// UpdateTask меняет задачу. Администратор меняет любые поля, разработчик
// только статус назначенной ему задачи.
func (s *Service) UpdateTask(ctx context.Context, actor authz.Actor, id string, in TaskInput) (*models.TaskView, error) {
	if actor.Role == models.RoleDeveloper {
		return s.updateTaskStatus(ctx, actor, id, in)
	}
	if _, err := s.engine.Authorize(actor, authz.ActionUpdate, authz.ResourceTask); err != nil {
		return nil, err
	}
	if in.ProjectID != nil {
		return nil, apperr.Validation("", "Task project cannot be changed")
	}

	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Task not found", "get task")
	}
	if err := applyTask(in, t); err != nil {
		return nil, err
	}
	if in.AssignedTo != nil {
		project, err := s.store.GetProject(ctx, t.ProjectID)
		if err != nil {
			return nil, fromStore(err, "Project not found", "get project")
		}
		if err := s.validator.ValidateTaskAssignees(project, t.AssignedTo); err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, fromStore(err, "Task not found", "update task")
	}
	return s.taskView(ctx, t)
}

func (s *Service) updateTaskStatus(ctx context.Context, actor authz.Actor, id string, in TaskInput) (*models.TaskView, error) {
	if _, err := s.engine.Authorize(actor, authz.ActionUpdateStatus, authz.ResourceTask); err != nil {
		return nil, err
	}
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Task not found", "get task")
	}
	if !t.IsAssigned(actor.ID) {
		return nil, apperr.Forbidden("You can only update tasks assigned to you")
	}
	if !in.onlyStatus() || in.Status == nil {
		return nil, apperr.Forbidden("Developers can only update task status")
	}
	if !in.Status.Valid() {
		return nil, apperr.Validation("", "Invalid task status")
	}

	if err := s.store.UpdateTaskStatus(ctx, t.ID, *in.Status); err != nil {
		return nil, fromStore(err, "Task not found", "update task status")
	}
	t.Status = *in.Status
	return s.taskView(ctx, t)
}

func (s *Service) DeleteTask(ctx context.Context, actor authz.Actor, id string) error {
	if _, err := s.engine.Authorize(actor, authz.ActionDelete, authz.ResourceTask); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return fromStore(err, "Task not found", "delete task")
	}
	return nil
}
