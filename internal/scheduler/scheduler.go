package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/config"
)

const jobTimeout = 2 * time.Minute

// Refresher reloads the catalog from the system of record.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ReportGenerator builds the daily stock report.
type ReportGenerator interface {
	GenerateDailyReport(now time.Time) (string, error)
}

// Sender delivers the report.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	reports   ReportGenerator
	sender    Sender
	cfg       config.Config
	location  *time.Location
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance. Jobs run in the configured timezone.
func NewScheduler(cfg config.Config, refresher Refresher, reports ReportGenerator, sender Sender, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Reporting.Timezone, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		refresher: refresher,
		reports:   reports,
		sender:    sender,
		cfg:       cfg,
		location:  loc,
		logger:    logger,
	}, nil
}

// Start registers the refresh and report jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("sync_schedule", s.cfg.Sync.CronSchedule),
		zap.String("report_schedule", s.cfg.Reporting.CronSchedule),
		zap.String("timezone", s.location.String()),
	)

	if _, err := s.cron.AddFunc(s.cfg.Sync.CronSchedule, s.refreshCatalog); err != nil {
		return fmt.Errorf("schedule catalog refresh: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.sendDailyReport); err != nil {
		return fmt.Errorf("schedule daily report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refreshCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Warn("scheduled refresh failed", zap.Error(err))
	}
}

func (s *Scheduler) sendDailyReport() {
	s.logger.Info("generating daily report")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.reports.GenerateDailyReport(time.Now().In(s.location))
	if err != nil {
		s.logger.Error("failed to generate daily report", zap.Error(err))
		return
	}

	if err := s.sender.Send(ctx, report); err != nil {
		s.logger.Error("failed to send daily report", zap.Error(err))
	} else {
		s.logger.Info("daily report sent successfully")
	}
}
