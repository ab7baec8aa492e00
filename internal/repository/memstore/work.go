package memstore

import (
	"context"
	"sort"

	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/repository"
)

func copyProject(p *models.Project) models.Project {
	cp := *p
	cp.DeveloperIDs = cloneStrings(p.DeveloperIDs)
	return cp
}

func copyTask(t *models.Task) models.Task {
	cp := *t
	cp.AssignedTo = cloneStrings(t.AssignedTo)
	return cp
}

func (s *Store) projectNameTaken(name, clientID, exceptID string) bool {
	for id, p := range s.projects {
		if id != exceptID && p.Name == name && p.ClientID == clientID {
			return true
		}
	}
	return false
}

func (s *Store) hasLogs(match func(l *models.HourLog) bool) bool {
	for i := range s.logs {
		if match(&s.logs[i]) {
			return true
		}
	}
	return false
}

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectNameTaken(p.Name, p.ClientID, "") {
		return repository.ErrAlreadyExists
	}
	if p.DeveloperIDs == nil {
		p.DeveloperIDs = []string{}
	}
	p.ActualHours = 0
	p.CreatedAt, p.UpdatedAt = s.now(), s.now()
	cp := copyProject(p)
	s.projects[p.ID] = &cp
	s.touch(p.ID)
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := copyProject(p)
	return &cp, nil
}

func (s *Store) filterProjects(f models.ProjectFilter) []string {
	ids := []string{}
	for id, p := range s.projects {
		if f.ClientID != "" && p.ClientID != f.ClientID {
			continue
		}
		if f.DeveloperID != "" && !p.HasDeveloper(f.DeveloperID) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		ids = append(ids, id)
	}
	s.newerFirst(ids)
	return ids
}

func (s *Store) ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.filterProjects(f)
	out := []models.Project{}
	for _, id := range paginate(ids, f.Page) {
		out = append(out, copyProject(s.projects[id]))
	}
	return out, len(ids), nil
}

func (s *Store) UpdateProject(ctx context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.projects[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if s.projectNameTaken(p.Name, p.ClientID, p.ID) {
		return repository.ErrAlreadyExists
	}
	next := copyProject(p)
	next.ActualHours = cur.ActualHours
	next.CreatedBy, next.CreatedAt = cur.CreatedBy, cur.CreatedAt
	next.UpdatedAt = s.now()
	s.projects[p.ID] = &next
	p.ActualHours, p.UpdatedAt = next.ActualHours, next.UpdatedAt

	// исполнители задач остаются подмножеством состава проекта
	for _, t := range s.tasks {
		if t.ProjectID != p.ID {
			continue
		}
		kept := t.AssignedTo[:0:0]
		for _, id := range t.AssignedTo {
			if next.HasDeveloper(id) {
				kept = append(kept, id)
			}
		}
		if len(kept) != len(t.AssignedTo) {
			t.AssignedTo = kept
			t.UpdatedAt = next.UpdatedAt
		}
	}
	return nil
}

// DeleteProject удаляет проект вместе с задачами, если на них нет записей о часах
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return repository.ErrNotFound
	}
	if s.hasLogs(func(l *models.HourLog) bool { return l.ProjectID == id }) {
		return repository.ErrHasDependents
	}
	for taskID, t := range s.tasks {
		if t.ProjectID == id {
			delete(s.tasks, taskID)
		}
	}
	delete(s.projects, id)
	return nil
}

func (s *Store) ProjectStats(ctx context.Context, f models.ProjectFilter) ([]models.ProjectStatusStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byStatus := map[models.ProjectStatus]*models.ProjectStatusStat{}
	for _, id := range s.filterProjects(f) {
		p := s.projects[id]
		st, ok := byStatus[p.Status]
		if !ok {
			st = &models.ProjectStatusStat{Status: p.Status}
			byStatus[p.Status] = st
		}
		st.Count++
		st.TotalEstimated += p.EstimatedHours
		st.TotalActual += p.ActualHours
	}
	stats := []models.ProjectStatusStat{}
	for _, st := range byStatus {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Status < stats[j].Status })
	return stats, nil
}

func (s *Store) UpsertImportProject(ctx context.Context, u models.ProjectUpsert) (*models.Project, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.Name == u.Name && p.ClientID == u.ClientID {
			if !p.HasDeveloper(u.DeveloperID) {
				p.DeveloperIDs = append(p.DeveloperIDs, u.DeveloperID)
			}
			p.UpdatedAt = s.now()
			cp := copyProject(p)
			return &cp, false, nil
		}
	}
	p := &models.Project{
		ID:           u.ID,
		Name:         u.Name,
		ClientID:     u.ClientID,
		DeveloperIDs: []string{u.DeveloperID},
		Status:       models.ProjectActive,
		BillingType:  models.BillingHourly,
		CreatedBy:    u.CreatedBy,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}
	s.projects[p.ID] = p
	s.touch(p.ID)
	cp := copyProject(p)
	return &cp, true, nil
}

func (s *Store) logTotals(ids []string, key func(l *models.HourLog) string) map[string]models.LogTotal {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	totals := make(map[string]models.LogTotal, len(ids))
	for i := range s.logs {
		k := key(&s.logs[i])
		if k == "" || !want[k] {
			continue
		}
		t := totals[k]
		t.Hours += s.logs[i].Hours
		t.Count++
		totals[k] = t
	}
	return totals
}

func (s *Store) ProjectLogTotals(ctx context.Context, ids []string) (map[string]models.LogTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logTotals(ids, func(l *models.HourLog) string { return l.ProjectID }), nil
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[t.ProjectID]; !ok {
		return repository.ErrNotFound
	}
	if t.AssignedTo == nil {
		t.AssignedTo = []string{}
	}
	t.ActualHours = 0
	t.CreatedAt, t.UpdatedAt = s.now(), s.now()
	cp := copyTask(t)
	s.tasks[t.ID] = &cp
	s.touch(t.ID)
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := copyTask(t)
	return &cp, nil
}

func (s *Store) ListTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	for id, t := range s.tasks {
		if f.ClientID != "" {
			p, ok := s.projects[t.ProjectID]
			if !ok || p.ClientID != f.ClientID {
				continue
			}
		}
		if f.DeveloperID != "" && !t.IsAssigned(f.DeveloperID) {
			continue
		}
		if f.ProjectID != "" && t.ProjectID != f.ProjectID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		ids = append(ids, id)
	}
	s.newerFirst(ids)
	out := []models.Task{}
	for _, id := range paginate(ids, f.Page) {
		out = append(out, copyTask(s.tasks[id]))
	}
	return out, len(ids), nil
}

func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tasks[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	next := copyTask(t)
	next.ProjectID = cur.ProjectID
	next.ActualHours = cur.ActualHours
	next.CreatedBy, next.CreatedAt = cur.CreatedBy, cur.CreatedAt
	next.UpdatedAt = s.now()
	s.tasks[t.ID] = &next
	t.ActualHours, t.UpdatedAt = next.ActualHours, next.UpdatedAt
	return nil
}

func (s *Store) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status, t.UpdatedAt = status, s.now()
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	if s.hasLogs(func(l *models.HourLog) bool { return l.TaskID == id }) {
		return repository.ErrHasDependents
	}
	delete(s.tasks, id)
	return nil
}

func (s *Store) TaskLogTotals(ctx context.Context, ids []string) (map[string]models.LogTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logTotals(ids, func(l *models.HourLog) string { return l.TaskID }), nil
}

// CreateHourLog добавляет запись и увеличивает счетчики под одной блокировкой
func (s *Store) CreateHourLog(ctx context.Context, l *models.HourLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[l.ProjectID]
	if !ok {
		return repository.ErrNotFound
	}
	var t *models.Task
	if l.TaskID != "" {
		if t, ok = s.tasks[l.TaskID]; !ok {
			return repository.ErrNotFound
		}
	}

	l.CreatedAt = s.now()
	s.logs = append(s.logs, *l)
	s.touch(l.ID)

	p.ActualHours += l.Hours
	p.UpdatedAt = l.CreatedAt
	if t != nil {
		t.ActualHours += l.Hours
		t.UpdatedAt = l.CreatedAt
	}
	return nil
}

func (s *Store) ListHourLogs(ctx context.Context, f models.HourLogFilter) ([]models.HourLog, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := []models.HourLog{}
	for _, l := range s.logs {
		if f.ClientID != "" && l.ClientID != f.ClientID {
			continue
		}
		if f.DeveloperID != "" && l.DeveloperID != f.DeveloperID {
			continue
		}
		if f.ProjectID != "" && l.ProjectID != f.ProjectID {
			continue
		}
		if f.TaskID != "" && l.TaskID != f.TaskID {
			continue
		}
		if f.From != nil && l.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && l.Date.After(*f.To) {
			continue
		}
		matched = append(matched, l)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return s.order[matched[i].ID] > s.order[matched[j].ID]
	})
	return paginate(matched, f.Page), len(matched), nil
}
