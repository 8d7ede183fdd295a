package scheduler

import (
	"fmt"
	"time"

	"rental-portal/internal/billing"
	"rental-portal/internal/config"
	"rental-portal/internal/lease"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler fires the daily lease lifecycle sweep and billing cycle.
type Scheduler struct {
	cron      *cron.Cron
	lifecycle *lease.Service
	cycle     *billing.Cycle
	config    *config.Config
	log       *logrus.Logger
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(lifecycle *lease.Service, cycle *billing.Cycle, cfg *config.Config, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		lifecycle: lifecycle,
		cycle:     cycle,
		config:    cfg,
		log:       log,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Billing.DailyRunEnabled {
		s.log.Info("Scheduler: daily billing run is disabled in configuration")
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.Billing.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		s.log.Info("Scheduler: starting daily run...")
		s.runDaily()
		s.log.Info("Scheduler: daily run completed")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	s.log.Infof("Scheduler: started with daily run at %s (cron: %s)", s.config.Billing.DailyRunTime, cronSpec)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		s.log.Info("Scheduler: stopped")
	}
}

// runDaily advances lease lifecycles first so billing never generates
// invoices for leases that terminated today, then runs the billing cycle.
// Neither stage lets an error escape.
func (s *Scheduler) runDaily() {
	now := time.Now()
	s.lifecycle.RunDailySweep(now)
	s.cycle.RunAsOf(now)
}

// RunNow immediately executes the daily run (for manual trigger)
func (s *Scheduler) RunNow() billing.CycleResult {
	s.log.Info("Scheduler: manual trigger - starting daily run...")
	now := time.Now()
	s.lifecycle.RunDailySweep(now)
	return s.cycle.RunAsOf(now)
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:00" -> "0 2 * * *" (run at 2:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	// Default to 2:00 AM if parsing fails
	s.log.Warnf("Scheduler: failed to parse time '%s', using default 02:00", timeStr)
	return "0 2 * * *"
}
