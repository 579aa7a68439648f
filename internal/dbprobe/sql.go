package dbprobe

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// sqlProber probes any database/sql driver: open, ping, read the version.
type sqlProber struct {
	logger       *slog.Logger
	driver       string
	versionQuery string
	dsn          func(Target) (string, error)
	open         func(driver, dsn string) (*sql.DB, error)
}

func newSQLProber(logger *slog.Logger, driver, versionQuery string, dsn func(Target) (string, error)) *sqlProber {
	return &sqlProber{
		logger:       logger,
		driver:       driver,
		versionQuery: versionQuery,
		dsn:          dsn,
		open:         sql.Open,
	}
}

func (p *sqlProber) Probe(ctx context.Context, t Target) (*Result, error) {
	dsn, err := p.dsn(t)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("probing database", slog.String("driver", p.driver), slog.String("host", t.Host), slog.String("database", t.Database))

	db, err := p.open(p.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", p.driver, err)
	}
	defer func() { _ = db.Close() }()

	start := time.Now()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", p.driver, err)
	}
	latency := time.Since(start)

	var version string
	if err := db.QueryRowContext(ctx, p.versionQuery).Scan(&version); err != nil {
		return nil, fmt.Errorf("failed to read %s version: %w", p.driver, err)
	}

	return &Result{Version: version, Latency: latency}, nil
}
