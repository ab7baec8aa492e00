// Package memstore хранилище в памяти процесса с тем же контрактом, что и
// PostgreSQL-репозиторий. Используется тестами и драйвером database.driver=memory.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/repository"
)

type Store struct {
	mu         sync.RWMutex
	seq        int64
	order      map[string]int64
	bas        map[string]*models.BAUser
	clients    map[string]*models.Client
	developers map[string]*models.Developer
	projects   map[string]*models.Project
	tasks      map[string]*models.Task
	logs       []models.HourLog
	now        func() time.Time
}

func New() *Store {
	return &Store{
		order:      make(map[string]int64),
		bas:        make(map[string]*models.BAUser),
		clients:    make(map[string]*models.Client),
		developers: make(map[string]*models.Developer),
		projects:   make(map[string]*models.Project),
		tasks:      make(map[string]*models.Task),
		now:        time.Now,
	}
}

// WithClock подменяет источник времени для меток created_at/updated_at
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) touch(id string) {
	s.seq++
	s.order[id] = s.seq
}

// newerFirst сортирует ID по убыванию порядка вставки
func (s *Store) newerFirst(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return s.order[ids[i]] > s.order[ids[j]] })
}

func paginate[T any](items []T, p models.Page) []T {
	if p.Limit <= 0 {
		return items
	}
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func (s *Store) emailTaken(email, exceptID string) bool {
	for id, u := range s.bas {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	for id, c := range s.clients {
		if id != exceptID && c.Email == email {
			return true
		}
	}
	for id, d := range s.developers {
		if id != exceptID && d.Email == email {
			return true
		}
	}
	return false
}

func (s *Store) CountActiveUsers(ctx context.Context, role models.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	switch role {
	case models.RoleClient:
		for _, c := range s.clients {
			if c.Status == models.StatusActive {
				n++
			}
		}
	case models.RoleDeveloper:
		for _, d := range s.developers {
			if d.Status == models.StatusActive {
				n++
			}
		}
	case models.RoleBA:
		n = len(s.bas)
	}
	return n, nil
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emailTaken(email, ""), nil
}

// CreateFirstBA создает администратора, пока хранилище пустое
func (s *Store) CreateFirstBA(ctx context.Context, u *models.BAUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bas)+len(s.clients)+len(s.developers) > 0 {
		return repository.ErrRegistrationClosed
	}
	if s.emailTaken(u.Email, "") {
		return repository.ErrAlreadyExists
	}
	u.Role = models.RoleBA
	u.CreatedAt, u.UpdatedAt = s.now(), s.now()
	cp := *u
	s.bas[u.ID] = &cp
	s.touch(u.ID)
	return nil
}

func (s *Store) CreateClient(ctx context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(c.Email, "") {
		return repository.ErrAlreadyExists
	}
	c.Role = models.RoleClient
	c.CreatedAt, c.UpdatedAt = s.now(), s.now()
	cp := *c
	s.clients[c.ID] = &cp
	s.touch(c.ID)
	return nil
}

func (s *Store) CreateDeveloper(ctx context.Context, d *models.Developer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(d.Email, "") {
		return repository.ErrAlreadyExists
	}
	d.Role = models.RoleDeveloper
	d.CreatedAt, d.UpdatedAt = s.now(), s.now()
	cp := *d
	s.developers[d.ID] = &cp
	s.touch(d.ID)
	return nil
}

func (s *Store) identity(id string) (*models.Identity, bool) {
	if u, ok := s.bas[id]; ok {
		cp := u.Identity
		return &cp, true
	}
	if c, ok := s.clients[id]; ok {
		cp := c.Identity
		return &cp, true
	}
	if d, ok := s.developers[id]; ok {
		cp := d.Identity
		return &cp, true
	}
	return nil, false
}

func (s *Store) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.identity(id); ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.order {
		if u, ok := s.identity(id); ok && u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetClient(ctx context.Context, id string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) GetDeveloper(ctx context.Context, id string) (*models.Developer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.developers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

// FindClientByName возвращает самого раннего клиента с точным совпадением имени
func (s *Store) FindClientByName(ctx context.Context, name string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.Client
	for id, c := range s.clients {
		if c.Name == name && (found == nil || s.order[id] < s.order[found.ID]) {
			found = c
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (s *Store) FindDeveloperByName(ctx context.Context, name string) (*models.Developer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.Developer
	for id, d := range s.developers {
		if d.Name == name && (found == nil || s.order[id] < s.order[found.ID]) {
			found = d
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func matchesUser(name string, status models.UserStatus, f models.UserFilter) bool {
	if f.Status != "" && status != f.Status {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func (s *Store) ListClients(ctx context.Context, f models.UserFilter) ([]models.Client, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	for id, c := range s.clients {
		if matchesUser(c.Name, c.Status, f) {
			ids = append(ids, id)
		}
	}
	s.newerFirst(ids)
	out := []models.Client{}
	for _, id := range paginate(ids, f.Page) {
		out = append(out, *s.clients[id])
	}
	return out, len(ids), nil
}

func (s *Store) ListDevelopers(ctx context.Context, f models.UserFilter) ([]models.Developer, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	for id, d := range s.developers {
		if matchesUser(d.Name, d.Status, f) {
			ids = append(ids, id)
		}
	}
	s.newerFirst(ids)
	out := []models.Developer{}
	for _, id := range paginate(ids, f.Page) {
		out = append(out, *s.developers[id])
	}
	return out, len(ids), nil
}

func (s *Store) UpdateClient(ctx context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.clients[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if s.emailTaken(c.Email, c.ID) {
		return repository.ErrAlreadyExists
	}
	cur.Name, cur.Email, cur.BillingType, cur.Status = c.Name, c.Email, c.BillingType, c.Status
	cur.UpdatedAt = s.now()
	c.UpdatedAt = cur.UpdatedAt
	return nil
}

func (s *Store) UpdateDeveloper(ctx context.Context, d *models.Developer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.developers[d.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if s.emailTaken(d.Email, d.ID) {
		return repository.ErrAlreadyExists
	}
	cur.Name, cur.Email, cur.HourlyRate, cur.DeveloperRole, cur.Status = d.Name, d.Email, d.HourlyRate, d.DeveloperRole, d.Status
	cur.UpdatedAt = s.now()
	d.UpdatedAt = cur.UpdatedAt
	return nil
}

func (s *Store) SetUserStatus(ctx context.Context, id string, role models.Role, status models.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch role {
	case models.RoleClient:
		if c, ok := s.clients[id]; ok {
			c.Status, c.UpdatedAt = status, s.now()
			return nil
		}
	case models.RoleDeveloper:
		if d, ok := s.developers[id]; ok {
			d.Status, d.UpdatedAt = status, s.now()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *Store) GetRefs(ctx context.Context, ids []string) (map[string]models.Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make(map[string]models.Ref, len(ids))
	for _, id := range ids {
		if d, ok := s.developers[id]; ok {
			refs[id] = models.Ref{ID: id, Name: d.Name, Email: d.Email, HourlyRate: d.HourlyRate}
			continue
		}
		if u, ok := s.identity(id); ok {
			refs[id] = models.Ref{ID: id, Name: u.Name, Email: u.Email}
			continue
		}
		if p, ok := s.projects[id]; ok {
			refs[id] = models.Ref{ID: id, Name: p.Name}
			continue
		}
		if t, ok := s.tasks[id]; ok {
			refs[id] = models.Ref{ID: id, Name: t.Title}
		}
	}
	return refs, nil
}
