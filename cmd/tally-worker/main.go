package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"tally/internal/amqp"
	"tally/internal/cli"
	"tally/internal/log"
	"tally/internal/services"
	gsheet "tally/internal/sheets/google"
	"tally/internal/store"
	"tally/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting tally-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	be := cli.OpenBackend(logger, cfg)

	st := store.New(be.KV, logger)
	st.Load(context.Background())

	// AMQP feeds the mirror with change events. Without it the mirror
	// still converges through periodic reconciliation.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to connect to AMQP, continuing without events", log.FieldError, err)
			amqpClient = nil
		} else {
			logger.Info("AMQP client initialized",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled")
	}

	expenseService := services.NewExpenseService(st.Expenses, amqpClient)
	processor := services.NewRecurringProcessor(st.Recurring, expenseService, logger)

	var mirrorWorker *worker.MirrorWorker
	if cfg.MirrorEnabled() {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		mirrorWorker = worker.NewMirrorWorker(st.Expenses, sheetsClient, logger)
		logger.Info("Google Sheets mirroring enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets mirroring disabled, only recurring expenses will run")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := expenseService.Close(); err != nil {
			logger.Error("Service close error", log.FieldError, err)
		}
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runRecurring(gctx, logger, st, processor, cfg.RecurringInterval)
	})

	if mirrorWorker != nil {
		g.Go(func() error {
			return runReconcile(gctx, logger, mirrorWorker, cfg.ReconcileInterval)
		})

		if amqpClient != nil {
			g.Go(func() error {
				return amqpClient.ConsumeExpenseEvents(gctx, func(msg *amqp.ExpenseEventMessage) error {
					return mirrorWorker.HandleEvent(gctx, msg)
				})
			})
		} else {
			logger.Warn("No AMQP connection, mirror relies on reconciliation only")
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

// runRecurring materializes due recurring expenses once at startup and
// then on every interval tick.
func runRecurring(ctx context.Context, logger *log.Logger, st *store.Store, processor *services.RecurringProcessor, interval time.Duration) error {
	process := func(now time.Time) {
		// The API process owns the store between ticks; reload so the
		// appended expenses build on its latest write.
		st.Expenses.Load(ctx)
		st.Recurring.Load(ctx)

		count, err := processor.ProcessDue(ctx, now)
		if err != nil {
			logger.Error("Recurring processing failed", log.FieldError, err)
			return
		}
		if count > 0 {
			logger.Info("Recurring processing complete",
				"expenses_created", count,
				"next_check", now.Add(interval).Format("15:04:05"))
		}
	}

	process(time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			process(now)
		}
	}
}

// runReconcile repairs the mirror once at startup and then on every
// interval tick, catching rows that lost their change event.
func runReconcile(ctx context.Context, logger *log.Logger, mirrorWorker *worker.MirrorWorker, interval time.Duration) error {
	if err := mirrorWorker.Reconcile(ctx); err != nil {
		logger.Error("Startup reconciliation failed", log.FieldError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := mirrorWorker.Reconcile(ctx); err != nil {
				logger.Error("Reconciliation failed", log.FieldError, err)
			}
		}
	}
}
