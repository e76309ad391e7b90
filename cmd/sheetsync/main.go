package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vip7612-maker/monglemongle/internal/bootstrap"
	"github.com/vip7612-maker/monglemongle/internal/domain"
	"github.com/vip7612-maker/monglemongle/internal/infra"
	"github.com/vip7612-maker/monglemongle/internal/providers/sheets"
)

// sheetsync pushes the current submissions to the configured Google Sheet
// once and exits. It is meant for cron jobs and manual recovery.
func main() {
	var opts options
	flag.StringVar(&opts.sheet, "sheet", "", "Spreadsheet id (fallbacks to GOOGLE_SHEET_ID)")
	flag.StringVar(&opts.view, "view", "all", "Rows to print with -dry-run: all, active, commitment, one-time or trash")
	flag.DurationVar(&opts.timeout, "timeout", time.Minute, "Overall deadline")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Print the rows instead of writing the sheet")
	flag.Parse()

	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "sheetsync: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	sheet   string
	view    string
	timeout time.Duration
	dryRun  bool
}

// errPartialExport rejects replacing the sheet with a filtered subset.
var errPartialExport = errors.New("-view other than all is only allowed with -dry-run")

func (o options) parseView() (domain.View, error) {
	view, ok := domain.ParseView(o.view)
	if !ok {
		return "", fmt.Errorf("unsupported view %q", o.view)
	}
	if view != domain.ViewAll && !o.dryRun {
		return "", errPartialExport
	}
	return view, nil
}

func run(opts options, out io.Writer) error {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if s := strings.TrimSpace(opts.sheet); s != "" {
		cfg.GoogleSheetID = s
	}
	view, err := opts.parseView()
	if err != nil {
		return err
	}
	if cfg.DBDriver == infra.DriverNone || cfg.DBDriver == infra.DriverMemory {
		return errors.New("DATABASE_URL or SQLITE_PATH is required")
	}

	logger := infra.NewLogger("cli", cfg.LogLevel).With().Str("cmd", "sheetsync").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	list, err := store.ListDescending(ctx)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}

	if opts.dryRun {
		for _, row := range sheets.Rows(domain.Filter(list, view)) {
			fmt.Fprintln(out, row...)
		}
		return nil
	}

	exporter := bootstrap.NewExporter(cfg, logger)
	if err := exporter.Export(ctx, list); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(out, "exported %d submissions to sheet %s\n", len(list), cfg.GoogleSheetID)
	return nil
}
