package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kone/bibliotheque/internal/config"
	"github.com/kone/bibliotheque/internal/database/loans"
	"github.com/kone/bibliotheque/internal/tasks"
)

// OverdueLister provides the loans that need a reminder.
type OverdueLister interface {
	ListOverdue() ([]loans.OverdueLoan, error)
}

// ReminderQueue enqueues reminder emails for asynchronous delivery.
type ReminderQueue interface {
	EnqueueOverdueReminder(task tasks.OverdueReminderTask) error
}

// OverdueScanScheduler periodically scans for overdue loans and queues
// a reminder email per loan.
type OverdueScanScheduler struct {
	store OverdueLister
	queue ReminderQueue
	cfg   config.Notify

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewOverdueScanScheduler(store OverdueLister, queue ReminderQueue, cfg config.Notify) *OverdueScanScheduler {
	return &OverdueScanScheduler{
		store: store,
		queue: queue,
		cfg:   cfg,
		cron:  cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if overdue notifications are enabled.
func (s *OverdueScanScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Overdue scan scheduler: disabled")
		return nil
	}
	if s.queue == nil {
		log.Printf("Overdue scan scheduler: task queue not configured, skipping")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.runScan()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Overdue scan scheduler: started with schedule '%s'", s.cfg.Schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running scan to finish, then halts the scheduler.
func (s *OverdueScanScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Overdue scan scheduler: stopped")
}

// RunNow triggers an immediate scan.
func (s *OverdueScanScheduler) RunNow() {
	go s.runScan()
}

// IsRunning returns whether the scheduler is active.
func (s *OverdueScanScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next scan will occur.
func (s *OverdueScanScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *OverdueScanScheduler) runScan() {
	start := time.Now()

	overdue, err := s.store.ListOverdue()
	if err != nil {
		log.Printf("Overdue scan: failed to list overdue loans: %v", err)
		return
	}
	if len(overdue) == 0 {
		log.Printf("Overdue scan: no overdue loans")
		return
	}

	queued := 0
	for _, loan := range overdue {
		err := s.queue.EnqueueOverdueReminder(tasks.OverdueReminderTask{
			LoanID:           loan.LoanID,
			Email:            loan.Email,
			Nom:              loan.Nom,
			Prenom:           loan.Prenom,
			Titre:            loan.Titre,
			DateRetourPrevue: loan.DateRetourPrevue,
		})
		if err != nil {
			log.Printf("Overdue scan: failed to queue reminder for loan %d: %v", loan.LoanID, err)
			continue
		}
		queued++
	}

	log.Printf("Overdue scan: queued %d/%d reminders in %v",
		queued, len(overdue), time.Since(start).Round(time.Millisecond))
}
