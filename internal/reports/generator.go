package reports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/reporting"
	"go.uber.org/zap"
)

var ErrGeneratorStopped = errors.New("report generator is not running")

// Job задание на расчет одного отчета
type Job struct {
	ReportID string
	Range    reporting.Range
	// Params передаются вычислителю как есть (например, область видимости)
	Params any
}

// ComputeFunc считает содержимое отчета
type ComputeFunc func(ctx context.Context, job Job) (*models.ReportData, reporting.ReportTotals, error)

type Options struct {
	Workers   int
	Delay     time.Duration
	QueueSize int
}

type queued struct {
	job  Job
	done chan models.Report
}

// Generator пул воркеров, доводящий отчеты из generating до completed или failed
type Generator struct {
	store   Store
	compute ComputeFunc
	opts    Options
	logger  *zap.Logger
	now     func() time.Time

	jobs    chan queued
	mu      sync.RWMutex
	running bool
	stop    <-chan struct{}
	wg      sync.WaitGroup
}

func NewGenerator(store Store, compute ComputeFunc, opts Options, logger *zap.Logger) *Generator {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	return &Generator{
		store:   store,
		compute: compute,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		jobs:    make(chan queued, opts.QueueSize),
	}
}

// Start запускает воркеров. После отмены ctx новые задания не принимаются,
// а оставшиеся в очереди отчеты помечаются failed.
func (g *Generator) Start(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return
	}
	g.running = true
	g.stop = ctx.Done()

	for i := 0; i < g.opts.Workers; i++ {
		g.wg.Add(1)
		go func() {
			defer g.wg.Done()
			g.work(ctx)
		}()
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		<-ctx.Done()
		// после захвата блокировки ни один Submit уже не кладет задания в очередь
		g.mu.Lock()
		g.running = false
		g.mu.Unlock()
		g.drain(ctx.Err())
	}()
}

// Wait ждет завершения воркеров и разбора очереди после отмены контекста
func (g *Generator) Wait() {
	g.wg.Wait()
}

// Submit сохраняет отчет со статусом generating и ставит задание в очередь.
// Канал done получает итоговое состояние отчета и закрывается.
func (g *Generator) Submit(ctx context.Context, r *models.Report, job Job) (<-chan models.Report, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.running {
		return nil, ErrGeneratorStopped
	}

	now := g.now()
	r.Status = models.ReportGenerating
	r.CreatedAt, r.UpdatedAt = now, now
	if err := g.store.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	job.ReportID = r.ID
	done := make(chan models.Report, 1)
	select {
	case g.jobs <- queued{job: job, done: done}:
		return done, nil
	case <-g.stop:
		g.fail(context.Background(), job.ReportID, ErrGeneratorStopped)
		return nil, ErrGeneratorStopped
	case <-ctx.Done():
		g.fail(context.Background(), job.ReportID, ctx.Err())
		return nil, ctx.Err()
	}
}

func (g *Generator) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case q := <-g.jobs:
			if err := ctx.Err(); err != nil {
				g.abort(q, err)
				return
			}
			g.run(ctx, q)
		}
	}
}

// drain помечает failed все задания, оставшиеся в очереди
func (g *Generator) drain(cause error) {
	for {
		select {
		case q := <-g.jobs:
			g.abort(q, cause)
		default:
			return
		}
	}
}

// abort завершает задание без расчета
func (g *Generator) abort(q queued, cause error) {
	defer close(q.done)
	g.logger.Info("report generation cancelled", zap.String("report_id", q.job.ReportID))
	if r := g.fail(context.Background(), q.job.ReportID, cause); r != nil {
		q.done <- *r
	}
}

func (g *Generator) run(ctx context.Context, q queued) {
	defer close(q.done)

	if g.opts.Delay > 0 {
		timer := time.NewTimer(g.opts.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			if r := g.fail(context.Background(), q.job.ReportID, ctx.Err()); r != nil {
				q.done <- *r
			}
			return
		case <-timer.C:
		}
	}

	data, totals, err := g.compute(ctx, q.job)
	if err != nil {
		g.logger.Warn("report generation failed", zap.String("report_id", q.job.ReportID), zap.Error(err))
		if r := g.fail(context.Background(), q.job.ReportID, err); r != nil {
			q.done <- *r
		}
		return
	}

	r, err := g.store.Get(ctx, q.job.ReportID)
	if err != nil {
		g.logger.Info("report removed before completion", zap.String("report_id", q.job.ReportID))
		return
	}
	r.Status = models.ReportCompleted
	r.TotalHours = totals.TotalHours
	r.TotalClients = totals.TotalClients
	r.TotalDevelopers = totals.TotalDevelopers
	r.ReportData = data
	r.UpdatedAt = g.now()
	if err := g.store.Update(ctx, r); err != nil {
		g.logger.Info("report removed before completion", zap.String("report_id", q.job.ReportID))
		return
	}
	g.logger.Info("report generated", zap.String("report_id", r.ID), zap.Float64("total_hours", r.TotalHours))
	q.done <- *r
}

// fail переводит отчет в failed с текстом ошибки
func (g *Generator) fail(ctx context.Context, id string, cause error) *models.Report {
	r, err := g.store.Get(ctx, id)
	if err != nil {
		return nil
	}
	r.Status = models.ReportFailed
	r.Error = cause.Error()
	r.UpdatedAt = g.now()
	if err := g.store.Update(ctx, r); err != nil {
		return nil
	}
	return r
}
