package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/backend"
	"tally/internal/bulk"
	"tally/internal/cli"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/store"
	"tally/internal/transfer"
)

func main() {
	cli.LoadEnvFile()

	// Diagnostics go to stderr so stdout stays clean for exports.
	// Quiet by default; LOG_LEVEL overrides.
	level := slog.LevelWarn
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level = log.ParseLevel(v)
	}
	logger := log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	})
	log.SetDefault(logger)

	root := &cobra.Command{
		Use:   "tally-admin",
		Short: "Offline administration for the tally data store",
		Long: "tally-admin operates directly on the configured data backend.\n" +
			"Run it while the API server is stopped: both processes rewrite\n" +
			"whole collections, and the last writer wins.",
		SilenceUsage: true,
	}
	root.AddCommand(
		newImportCmd(logger),
		newExportCmd(logger),
		newBackupCmd(logger),
		newRestoreCmd(logger),
		newRecurringCmd(logger),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// adminEnv is the opened store every subcommand works against.
type adminEnv struct {
	logger *log.Logger
	store  *store.Store
	be     *backend.Result
}

func openEnv(ctx context.Context, logger *log.Logger) *adminEnv {
	cfg := cli.LoadAndValidateConfig(logger)
	be := cli.OpenBackend(logger, cfg)
	st := store.New(be.KV, logger)
	st.Load(ctx)
	return &adminEnv{logger: logger, store: st, be: be}
}

func (e *adminEnv) close() {
	if err := e.be.Cleanup(); err != nil {
		e.logger.Error("Backend cleanup error", log.FieldError, err)
	}
}

func newImportCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import expenses from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			rows, err := transfer.ParseCSV(string(data))
			if err != nil {
				return err
			}

			env := openEnv(cmd.Context(), logger)
			defer env.close()

			// No AMQP from the admin tool; the mirror catches up on its
			// next reconciliation.
			coordinator := bulk.NewCoordinator(
				services.NewExpenseService(env.store.Expenses, nil),
				env.store.Rules,
				logger,
			)
			res := coordinator.ImportRows(cmd.Context(), rows)
			fmt.Printf("Imported %d expenses, %d failed\n", res.Success, res.Failed)
			for _, msg := range res.Errors {
				fmt.Printf("  %s\n", msg)
			}
			return nil
		},
	}
}

func newExportCmd(logger *log.Logger) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all expenses as CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := openEnv(cmd.Context(), logger)
			defer env.close()

			expenses := env.store.Expenses.List(cmd.Context())

			var data []byte
			switch strings.ToLower(format) {
			case "csv":
				data = transfer.ExportCSV(expenses)
			case "json":
				var err error
				data, err = transfer.ExportJSON(expenses)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}

			if out == "" || out == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %d expenses to %s\n", len(expenses), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newBackupCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <file.json>",
		Short: "Write a full backup of every collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := openEnv(cmd.Context(), logger)
			defer env.close()

			data, err := transfer.EncodeBackup(env.store.Snapshot(cmd.Context()))
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Saved backup to %s\n", args[0])
			return nil
		},
	}
}

func newRestoreCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file.json>",
		Short: "Replace every collection with a backup's contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			b, err := transfer.DecodeBackup(data)
			if err != nil {
				return err
			}

			env := openEnv(cmd.Context(), logger)
			defer env.close()

			env.store.Restore(cmd.Context(), b)
			fmt.Printf("Restored %d expenses, %d budgets, %d categories, %d templates\n",
				len(b.Expenses), len(b.Budgets), len(b.CustomCategories), len(b.BudgetTemplates))
			return nil
		},
	}
}

func newRecurringCmd(logger *log.Logger) *cobra.Command {
	recurring := &cobra.Command{
		Use:   "recurring",
		Short: "Work with recurring expense definitions",
	}
	recurring.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Materialize all due recurring expenses now",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := openEnv(cmd.Context(), logger)
			defer env.close()

			processor := services.NewRecurringProcessor(
				env.store.Recurring,
				services.NewExpenseService(env.store.Expenses, nil),
				logger,
			)
			count, err := processor.ProcessDue(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("Created %d expenses\n", count)
			return nil
		},
	})
	return recurring
}
