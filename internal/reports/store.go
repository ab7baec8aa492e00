// Package reports хранит эфемерные отчеты и генерирует их в фоне.
// Отчеты живут только в памяти процесса и теряются при перезапуске.
package reports

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/untibullet/hours-ledger/internal/models"
)

var ErrNotFound = errors.New("report not found")

// Store хранилище отчетов; реализация может быть заменена на долговременную
type Store interface {
	Create(ctx context.Context, r *models.Report) error
	Get(ctx context.Context, id string) (*models.Report, error)
	Update(ctx context.Context, r *models.Report) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f models.ReportFilter) ([]models.Report, int, error)
	Stats(ctx context.Context, createdBy string, now time.Time) (models.ReportStats, error)
}

// MemoryStore отчеты в памяти процесса
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*models.Report
	order   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]*models.Report)}
}

func copyReport(r *models.Report) *models.Report {
	cp := *r
	if r.ReportData != nil {
		data := *r.ReportData
		cp.ReportData = &data
	}
	return &cp
}

func (s *MemoryStore) Create(ctx context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = copyReport(r)
	s.order = append(s.order, r.ID)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyReport(r), nil
}

// Update заменяет запись; удаленный во время генерации отчет не восстанавливается
func (s *MemoryStore) Update(ctx context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[r.ID]; !ok {
		return ErrNotFound
	}
	s.reports[r.ID] = copyReport(r)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return ErrNotFound
	}
	delete(s.reports, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List возвращает отчеты от новых к старым
func (s *MemoryStore) List(ctx context.Context, f models.ReportFilter) ([]models.Report, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := []models.Report{}
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.reports[s.order[i]]
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.CreatedBy != "" && r.CreatedBy != f.CreatedBy {
			continue
		}
		matched = append(matched, *copyReport(r))
	}

	total := len(matched)
	if f.Page.Limit > 0 {
		start := f.Page.Offset()
		if start > total {
			start = total
		}
		end := start + f.Page.Limit
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

// Stats считает отчеты по статусам; неделя начинается в воскресенье 00:00 UTC
func (s *MemoryStore) Stats(ctx context.Context, createdBy string, now time.Time) (models.ReportStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now = now.UTC()
	weekStart := time.Date(now.Year(), now.Month(), now.Day()-int(now.Weekday()), 0, 0, 0, 0, time.UTC)

	var st models.ReportStats
	for _, r := range s.reports {
		if createdBy != "" && r.CreatedBy != createdBy {
			continue
		}
		st.TotalReports++
		switch r.Status {
		case models.ReportCompleted:
			st.CompletedReports++
		case models.ReportGenerating:
			st.GeneratingReports++
		case models.ReportFailed:
			st.FailedReports++
		}
		if !r.CreatedAt.Before(weekStart) {
			st.ThisWeekReports++
		}
	}
	return st, nil
}
