package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fleet-reporting-service/internal/auth"
	"fleet-reporting-service/internal/config"
	"fleet-reporting-service/internal/db"
	httphandler "fleet-reporting-service/internal/http"
	"fleet-reporting-service/internal/http/middleware"
	"fleet-reporting-service/internal/logger"
	"fleet-reporting-service/internal/model"
	"fleet-reporting-service/internal/repository"
	"fleet-reporting-service/internal/service"
	"fleet-reporting-service/internal/timeutil"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "fleet-reporting-service",
		Short:         "Fleet telemetry reporting API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	reports *service.ReportService
	close   func() error
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	reportRepo := repository.NewReportRepository(repository.NewGormExecutor(database))
	catalogRepo := repository.NewCatalogRepository(database)
	reportService := service.NewReportService(reportRepo, catalogRepo, cfg.Report.DefaultPageSize, cfg.Report.MaxPageSize)

	return &app{
		cfg:     cfg,
		log:     appLogger,
		reports: reportService,
		close:   func() error { return db.Close(database) },
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			tokenParser := auth.NewParser(a.cfg.Auth.AccessSecret)

			handler := httphandler.NewHandler(a.reports, a.log, a.cfg.IsDevelopment())
			authMiddleware := middleware.Auth(tokenParser)
			router := httphandler.NewRouter(handler, authMiddleware, httphandler.RouterOptions{
				Environment:    a.cfg.Environment,
				AllowedOrigins: a.cfg.HTTP.CORSAllowedOrigins,
			})

			addr := fmt.Sprintf("%s:%d", a.cfg.HTTP.Host, a.cfg.HTTP.Port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", addr).Msg("starting fleet reporting service")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					a.log.Error().Err(err).Msg("failed to start server")
				}
				return err
			case <-ctx.Done():
			}

			a.log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			appLogger := logger.New(cfg.Environment)

			database, err := db.Open(cfg, appLogger)
			if err != nil {
				return err
			}
			defer db.Close(database)

			return db.Migrate(database, appLogger)
		},
	}
}

type reportFlags struct {
	dateFrom string
	dateTo   string
	vehicle  int64
	groupID  int64
	weekDays []int
	groupBy  string
}

func (f reportFlags) criteria() (model.FilterCriteria, error) {
	var c model.FilterCriteria
	if f.dateFrom != "" {
		from, err := timeutil.ParseDay(f.dateFrom)
		if err != nil {
			return c, fmt.Errorf("--from: %w", err)
		}
		c.DateFrom = &from
	}
	if f.dateTo != "" {
		to, err := timeutil.ParseDay(f.dateTo)
		if err != nil {
			return c, fmt.Errorf("--to: %w", err)
		}
		c.DateTo = &to
	}
	if f.vehicle > 0 {
		c.Vehicle = model.SingleVehicle(f.vehicle)
	}
	if f.groupID > 0 {
		groupID := f.groupID
		c.GroupID = &groupID
	}
	c.WeekDays = f.weekDays
	return c, nil
}

func reportCmd() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a dashboard as JSON",
	}
	cmd.PersistentFlags().StringVar(&flags.dateFrom, "from", "", "first day (YYYY-MM-DD)")
	cmd.PersistentFlags().StringVar(&flags.dateTo, "to", "", "last day (YYYY-MM-DD)")
	cmd.PersistentFlags().Int64Var(&flags.vehicle, "vehicle", 0, "vehicle id")
	cmd.PersistentFlags().Int64Var(&flags.groupID, "group", 0, "vehicle group id")
	cmd.PersistentFlags().IntSliceVar(&flags.weekDays, "weekdays", nil, "ISO week days of the current week (1=Monday)")
	cmd.PersistentFlags().StringVar(&flags.groupBy, "group-by", "", "day, week or month")

	run := func(fetch func(context.Context, *service.ReportService, model.FilterCriteria, model.GroupBy) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			criteria, err := flags.criteria()
			if err != nil {
				return err
			}
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			result, err := fetch(cmd.Context(), a.reports, criteria, model.GroupBy(flags.groupBy))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "engine-usage",
		Short: "Engine usage dashboard",
		RunE: run(func(ctx context.Context, s *service.ReportService, c model.FilterCriteria, g model.GroupBy) (any, error) {
			return s.EngineDashboard(ctx, c, g)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "exceptions",
		Short: "Exception dashboard",
		RunE: run(func(ctx context.Context, s *service.ReportService, c model.FilterCriteria, g model.GroupBy) (any, error) {
			return s.ExceptionDashboard(ctx, c, g)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "transits",
		Short: "Transit sub-reports",
		RunE: run(func(ctx context.Context, s *service.ReportService, c model.FilterCriteria, _ model.GroupBy) (any, error) {
			return s.TransitReport(ctx, c)
		}),
	})

	return cmd
}
