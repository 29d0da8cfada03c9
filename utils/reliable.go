package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/UltimateTournament/backoff/v4"
	"github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgx"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

// ReliableExec acquires a pooled connection and runs f, retrying with
// exponential backoff until f succeeds, returns a permanent error, or
// maxElapsed has passed.
func ReliableExec(ctx context.Context, pool *pgxpool.Pool, maxElapsed time.Duration, f func(ctx context.Context, conn *pgxpool.Conn) error) error {
	if pool == nil {
		return PermError("no database pool configured")
	}
	return retry(ctx, maxElapsed, func() error {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("error in pool.Acquire: %w", err)
		}
		defer conn.Release()
		return f(ctx, conn)
	})
}

// ReliableExecInTx is ReliableExec with f wrapped in a transaction that
// cockroach-go restarts on serialization failures.
func ReliableExecInTx(ctx context.Context, pool *pgxpool.Pool, maxElapsed time.Duration, f func(ctx context.Context, tx pgx.Tx) error) error {
	return ReliableExec(ctx, pool, maxElapsed, func(ctx context.Context, conn *pgxpool.Conn) error {
		return crdbpgx.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
			return f(ctx, tx)
		})
	})
}

func retry(ctx context.Context, maxElapsed time.Duration, f func() error) error {
	logger := zerolog.Ctx(ctx)
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxElapsed
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := f()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		logger.Warn().Err(err).Int("attempt", attempt).Msg("retrying database operation")
		return err
	}, backoff.WithContext(b, ctx))
}

func isRetryable(err error) bool {
	if IsPermanent(err) || errors.Is(err, context.Canceled) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization failures and connection exceptions
		return pgErr.Code == "40001" || pgErr.Code == "40P01" || (len(pgErr.Code) == 5 && pgErr.Code[:2] == "08")
	}
	return pgconn.Timeout(err) || errors.Is(err, pgx.ErrTxClosed) || isConnectError(err)
}

// isConnectError matches dial and socket failures. pgconn wraps them
// without exporting its connect error type.
func isConnectError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
