// Package scheduler runs the system-triggered notification jobs on cron
// schedules: membership expiry reminders and the low-stock inventory
// scan. Both jobs use service-role storage access since no end-user
// session exists on these paths.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/almaluz/backend/internal/accounts"
	"github.com/almaluz/backend/internal/catalog"
	"github.com/almaluz/backend/internal/notifier"
	"github.com/almaluz/backend/internal/settings"
)

const defaultLowStockThreshold = 5

// Config holds the cron schedules.
type Config struct {
	Enabled bool `env:"SCHEDULER_ENABLED" envDefault:"true"`

	// Standard 5-field cron expressions.
	MembershipReminderCron string `env:"MEMBERSHIP_REMINDER_CRON" envDefault:"0 9 * * *"`
	LowStockCron           string `env:"LOW_STOCK_CRON" envDefault:"0 8 * * 1"`

	// ReminderWindow is how far ahead the membership scan looks.
	ReminderWindow time.Duration `env:"MEMBERSHIP_REMINDER_WINDOW" envDefault:"168h"`
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cfg      Config
	cron     *cron.Cron
	notify   *notifier.Service
	profiles *accounts.Repository
	products *catalog.Repository
	settings *settings.Repository
	log      *slog.Logger
}

// New creates the scheduler. Call Start to register and run the jobs.
func New(cfg Config, notify *notifier.Service, profiles *accounts.Repository,
	products *catalog.Repository, sets *settings.Repository, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		cron:     cron.New(),
		notify:   notify,
		profiles: profiles,
		products: products,
		settings: sets,
		log:      log,
	}
}

// Start registers the jobs and launches the cron runner.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.log.Info("scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.MembershipReminderCron, s.runMembershipReminders); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.LowStockCron, s.runLowStockScan); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("scheduler started",
		slog.String("membership_reminders", s.cfg.MembershipReminderCron),
		slog.String("low_stock_scan", s.cfg.LowStockCron),
	)
	return nil
}

// Stop halts the cron runner and waits for running jobs up to the
// context deadline.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runMembershipReminders sends an expiry reminder to every profile whose
// membership ends within the configured window. Each send is isolated;
// a failed reminder is logged and the scan continues.
func (s *Scheduler) runMembershipReminders() {
	ctx := context.Background()

	profiles, err := s.profiles.ExpiringMemberships(ctx, s.cfg.ReminderWindow)
	if err != nil {
		s.log.Error("membership reminder scan failed", slog.String("error", err.Error()))
		return
	}

	var sent, failed int
	for _, p := range profiles {
		if p.MembershipExpires == nil {
			continue
		}
		res := s.notify.MembershipReminder(ctx,
			notifier.Customer{Email: p.Email, Name: p.FullName},
			p.MembershipPlan, *p.MembershipExpires)
		if res.Success {
			sent++
		} else {
			failed++
		}
	}
	if sent+failed > 0 {
		s.log.Info("membership reminders finished",
			slog.Int("sent", sent), slog.Int("failed", failed))
	}
}

// runLowStockScan alerts the admins about every active product at or
// below the stock threshold.
func (s *Scheduler) runLowStockScan() {
	ctx := context.Background()

	threshold := s.settings.GetInt(ctx, settings.KeyLowStockThreshold, defaultLowStockThreshold)
	recipients := s.settings.GetStrings(ctx, settings.KeyLowStockRecipients, nil)

	products, err := s.products.LowStock(ctx, threshold)
	if err != nil {
		s.log.Error("low stock scan failed", slog.String("error", err.Error()))
		return
	}

	for _, p := range products {
		agg := s.notify.LowStockAlert(ctx, p, threshold, recipients)
		if !agg.Success {
			s.log.Warn("low stock alert failed for product",
				slog.String("sku", p.SKU),
				slog.Int("failed_recipients", agg.Failed),
			)
		}
	}
}
