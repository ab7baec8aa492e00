package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/untibullet/hours-ledger/internal/auth"
	"github.com/untibullet/hours-ledger/internal/config"
	"github.com/untibullet/hours-ledger/internal/importer"
	"github.com/untibullet/hours-ledger/internal/reports"
	"github.com/untibullet/hours-ledger/internal/repository"
	"github.com/untibullet/hours-ledger/internal/service"
	"go.uber.org/zap"
)

type importOptions struct {
	file   string
	as     string
	dryRun bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newImportCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "importer",
		Short: "Import hour logs from a CSV file",
		Long: "Reads rows with columns project,client,developer,hours,date[,description] " +
			"and records them on behalf of a BA user. Missing projects are created.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "CSV file to import (required)")
	cmd.Flags().StringVar(&opts.as, "as", "", "Email of the BA user recorded as author (required)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Parse the file and print the rows without writing")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("as")

	return cmd
}

func runImport(ctx context.Context, opts importOptions) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", opts.file, err)
	}
	defer f.Close()

	rows, err := importer.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", opts.file, err)
	}
	if opts.dryRun {
		fmt.Printf("parsed %d rows from %s\n", len(rows), opts.file)
		return printJSON(rows)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("import requires database.driver=%s", config.DriverPostgres)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	pool, err := pgxpool.New(ctx, cfg.Database.GetDSN())
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	svc := service.New(repository.New(pool), auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		reports.NewMemoryStore(), service.Config{ReportWorkers: 1}, logger)

	actor, err := svc.ActorByEmail(ctx, opts.as)
	if err != nil {
		return fmt.Errorf("failed to resolve --as %s: %w", opts.as, err)
	}

	res, err := svc.ImportHourLogs(ctx, actor, rows)
	if err != nil {
		return err
	}
	logger.Info("import finished",
		zap.String("file", opts.file),
		zap.Int("imported", res.Imported),
		zap.Int("failed", res.Failed),
		zap.Int("created_projects", res.CreatedProjects))

	if err := printJSON(res); err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d rows failed", res.Failed, len(rows))
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
