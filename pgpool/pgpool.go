// Package pgpool opens the pooled connection a Bind uses to introspect a
// relation and export a snapshot. Workers do not use this pool — each
// worker owns a dedicated unpooled connection for its COPY stream, per
// spec; pgpool exists only for the short-lived bind-time queries.
package pgpool

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/danthegoodman1/pgscan/gologger"
	"github.com/danthegoodman1/pgscan/utils"
)

var logger = gologger.NewLogger()

// Connect opens a small pooled connection to dsn, sized for bind-time
// catalog queries rather than sustained throughput.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	logger.Debug().Str("dsn", utils.RedactDSN(dsn)).Msg("connecting for bind")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.HealthCheckPeriod = 5 * time.Second
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	logger.Debug().Msg("bind pool connected")
	return pool, nil
}
