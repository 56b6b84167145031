package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/comodofi/perps/app"
	"github.com/comodofi/perps/config"
	"github.com/comodofi/perps/journal"
	"github.com/comodofi/perps/ledger"
	"github.com/comodofi/perps/registry"
	"github.com/comodofi/perps/risk"
	"github.com/comodofi/perps/series"
	"github.com/comodofi/perps/session"
)

// newLogger builds the process logger. LOG_FORMAT=text switches off JSON.
func newLogger() *slog.Logger {
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

// buildApp assembles the registry, series cache, and session store from a
// loaded config.
func buildApp(cfg *config.Config, logger *slog.Logger) (*app.App, error) {
	reg, err := registry.LoadFile(cfg.IndicesFile)
	if err != nil {
		return nil, fmt.Errorf("load indices: %w", err)
	}

	ttl, err := cfg.Series.CacheTTLDuration()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.Series.FetchTimeoutDuration()
	if err != nil {
		return nil, err
	}

	cache := series.NewCache(series.NewLoader(timeout), ttl, logger)

	params := risk.Params{
		FeeBps:                 cfg.Trading.FeeBps,
		MaintenanceMarginRatio: cfg.Trading.MaintenanceMarginRatio,
		MinNotional:            cfg.Trading.MinNotional,
		MaxLeverage:            cfg.Trading.MaxLeverage,
	}

	sessions := session.NewManager(func(id string) *ledger.Ledger {
		return ledger.New(cfg.Account.StartingBalance, params, newJournal(cfg, id, logger))
	})

	return app.New(reg, cache, sessions, app.FundingParams{
		Lookback:   cfg.Funding.Lookback,
		K:          cfg.Funding.K,
		ScaleHours: cfg.Funding.ScaleHours,
	}), nil
}

// newJournal builds the per-session activity log. SQLite journals get one
// database file per session so session isolation carries over to disk; a
// failed open falls back to memory so the session still works.
func newJournal(cfg *config.Config, sessionID string, logger *slog.Logger) journal.Log {
	if cfg.Journal.Type != "sqlite" {
		return journal.NewMemory()
	}

	path := sessionDBPath(cfg.Journal.DBPath, sessionID)
	j, err := journal.NewSQLite(path)
	if err != nil {
		logger.Warn("sqlite journal unavailable, using memory",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return journal.NewMemory()
	}
	return j
}

func sessionDBPath(base, sessionID string) string {
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i] + "-" + sessionID + base[i:]
	}
	return base + "-" + sessionID
}
