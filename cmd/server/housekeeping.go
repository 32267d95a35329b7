package main

import (
	"context"

	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// startHousekeeping runs the nightly ledger audit and expired-stock scan.
// It returns the scheduler, whose job history the system endpoint serves, and
// a function that stops both. When the scheduler is disabled the scheduler is
// nil and the stop function does nothing.
func startHousekeeping(
	ctx context.Context,
	cfg config.SchedulerConfig,
	suppliers *partnerapp.SupplierService,
	inventory *inventoryapp.InventoryService,
	log *zap.Logger,
) (*scheduler.Scheduler, func(context.Context)) {
	if !cfg.Enabled {
		return nil, func(context.Context) {}
	}

	schedCfg := scheduler.DefaultConfig()
	schedCfg.Workers = cfg.Workers
	schedCfg.JobTimeout = cfg.JobTimeout
	schedCfg.RetryAttempts = cfg.RetryAttempts
	schedCfg.RetryDelay = cfg.RetryDelay
	sched, err := scheduler.NewScheduler(schedCfg, log.Named("scheduler"))
	if err != nil {
		log.Fatal("Failed to create scheduler", zap.Error(err))
	}

	audit := scheduler.NewTask("supplier-ledger-audit", func(ctx context.Context) error {
		_, err := suppliers.AuditBalances(ctx)
		return err
	})
	expiry := scheduler.NewTask("expiring-lots", func(ctx context.Context) error {
		lots, err := inventory.Expired(ctx)
		if err != nil {
			return err
		}
		if len(lots) > 0 {
			log.Warn("Active stock lots past expiry", zap.Int("count", len(lots)))
		}
		return nil
	})

	sched.Start(ctx)
	trigger := scheduler.NewDailyTrigger(scheduler.DailyTriggerConfig{
		Hour:          cfg.DailyHour,
		Minute:        cfg.DailyMinute,
		CheckInterval: cfg.CheckInterval,
	}, sched, log.Named("scheduler"), audit, expiry)
	trigger.Start(ctx)

	return sched, func(ctx context.Context) {
		trigger.Stop()
		if err := sched.Stop(ctx); err != nil {
			log.Warn("Error stopping scheduler", zap.Error(err))
		}
	}
}
