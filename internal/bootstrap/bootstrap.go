// Package bootstrap builds the configured store, notifier and exporter for
// the binaries under cmd/.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/vip7612-maker/monglemongle/internal/adapter/repo"
	"github.com/vip7612-maker/monglemongle/internal/domain"
	"github.com/vip7612-maker/monglemongle/internal/infra"
	"github.com/vip7612-maker/monglemongle/internal/infra/google"
	"github.com/vip7612-maker/monglemongle/internal/providers/sheets"
	"github.com/vip7612-maker/monglemongle/internal/providers/thanks"
)

// OpenStore migrates and opens the store selected by cfg.DBDriver. It
// returns a nil store when no database is configured.
func OpenStore(ctx context.Context, cfg *infra.Config, logger infra.Logger) (domain.SubmissionStore, error) {
	switch cfg.DBDriver {
	case infra.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case infra.DriverSQLite:
		db, err := infra.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := infra.Migrate(ctx, db, infra.DriverSQLite); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("sqlite store ready")
		return repo.NewSubmissionRepositorySQLite(db, logger), nil
	case infra.DriverMemory:
		logger.Warn().Msg("using in-memory store, submissions are lost on restart")
		return repo.NewSubmissionRepositoryMemory(), nil
	case infra.DriverNone:
		logger.Warn().Msg("no database configured, submissions are disabled")
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
}

func openPostgres(ctx context.Context, cfg *infra.Config, logger infra.Logger) (domain.SubmissionStore, error) {
	migrateDB, err := infra.OpenPostgresSQL(cfg)
	if err != nil {
		return nil, err
	}
	err = infra.Migrate(ctx, migrateDB, infra.DriverPostgres)
	_ = migrateDB.Close()
	if err != nil {
		return nil, err
	}

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("max_conns", cfg.DBMaxConns).Msg("postgres store ready")
	return repo.NewSubmissionRepositoryPG(infra.NewSQLRunner(pool, logger), pool.Close), nil
}

// NewNotifier returns the configured AI notifier, or the static one when the
// selected provider has no key.
func NewNotifier(cfg *infra.Config, logger infra.Logger) thanks.Notifier {
	hook := func(provider, reason string, err error) {
		logger.Warn().Err(err).Str("provider", provider).Str("reason", reason).Msg("ai thank-you failed")
	}

	var (
		n   thanks.Notifier
		err error
	)
	switch cfg.AIProvider {
	case infra.ProviderOpenAI:
		n, err = thanks.NewOpenAINotifier(thanks.OpenAIOptions{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			BaseURL:    cfg.OpenAIBaseURL,
			OnFallback: hook,
		})
	default:
		n, err = thanks.NewGeminiNotifier(thanks.GeminiOptions{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			OnFallback: hook,
		})
	}
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.AIProvider).Msg("ai provider not configured, using static thank-you messages")
		return thanks.NewStaticNotifier()
	}
	logger.Info().Str("provider", cfg.AIProvider).Msg("ai thank-you messages enabled")
	return n
}

// NewExporter returns a Sheets exporter. When the sheet id or credentials
// are missing the exporter is returned unconfigured and Export reports
// sheets.ErrNotConfigured.
func NewExporter(cfg *infra.Config, logger infra.Logger) *sheets.Exporter {
	opts := sheets.Options{SheetID: cfg.GoogleSheetID, Logger: logger}
	if cfg.GoogleSheetID == "" {
		logger.Warn().Msg("GOOGLE_SHEET_ID not set, sheets export disabled")
		return sheets.NewExporter(opts)
	}
	sa, err := google.LoadServiceAccount(cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountMail, cfg.GooglePrivateKey)
	if err != nil {
		logger.Warn().Err(err).Msg("google service account not loaded, sheets export disabled")
		return sheets.NewExporter(opts)
	}
	tokens, err := google.NewTokenSource(sa, google.TokenSourceOptions{})
	if err != nil {
		logger.Warn().Err(err).Msg("google private key invalid, sheets export disabled")
		return sheets.NewExporter(opts)
	}
	opts.Tokens = tokens
	logger.Info().Str("sheet_id", cfg.GoogleSheetID).Str("account", sa.ClientEmail).Msg("sheets export enabled")
	return sheets.NewExporter(opts)
}
