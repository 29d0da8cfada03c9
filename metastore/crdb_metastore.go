package metastore

import (
	"context"
	"fmt"
	"time"

	"github.com/danthegoodman1/icescore/part"
	"github.com/danthegoodman1/icescore/utils"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

type (
	CRDBMetaStore struct {
		pool       *pgxpool.Pool
		maxElapsed time.Duration
	}
)

func NewCRDBMetaStore(pool *pgxpool.Pool) *CRDBMetaStore {
	return &CRDBMetaStore{pool: pool, maxElapsed: 10 * time.Second}
}

func (cms *CRDBMetaStore) RecordParts(ctx context.Context, parts []part.Part) error {
	logger := zerolog.Ctx(ctx)
	for _, p := range parts {
		if p.Namespace == "" {
			return fmt.Errorf("%w: %s", ErrNoNamespace, p.ID)
		}
	}
	err := utils.ReliableExecInTx(ctx, cms.pool, cms.maxElapsed, func(ctx context.Context, tx pgx.Tx) error {
		for _, p := range parts {
			_, err := tx.Exec(ctx, `
				INSERT INTO parts (namespace, id, execution_id, engine, partition_path, path, row_count, columns)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, p.Namespace, p.ID, p.ExecutionID, p.Engine, p.Partition, p.Path, p.RowCount, p.Columns)
			if err != nil {
				return fmt.Errorf("error inserting part %s: %w", p.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error in ReliableExecInTx: %w", err)
	}
	logger.Debug().Int("parts", len(parts)).Msg("recorded parts")
	return nil
}

func (cms *CRDBMetaStore) ListParts(ctx context.Context, namespace string) ([]part.Part, error) {
	var parts []part.Part
	err := utils.ReliableExec(ctx, cms.pool, cms.maxElapsed, func(ctx context.Context, conn *pgxpool.Conn) error {
		parts = nil
		rows, err := conn.Query(ctx, `
			SELECT id, execution_id, engine, partition_path, path, row_count, columns, created_at
			FROM parts
			WHERE namespace = $1
			ORDER BY created_at, id
		`, namespace)
		if err != nil {
			return fmt.Errorf("error in Query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			p := part.Part{Namespace: namespace}
			var cols pgtype.TextArray
			var createdAt pgtype.Timestamptz
			if err := rows.Scan(&p.ID, &p.ExecutionID, &p.Engine, &p.Partition, &p.Path, &p.RowCount, &cols, &createdAt); err != nil {
				return fmt.Errorf("error in Scan: %w", err)
			}
			if err := cols.AssignTo(&p.Columns); err != nil {
				return fmt.Errorf("error assigning columns: %w", err)
			}
			p.CreatedAt = createdAt.Time
			parts = append(parts, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("error in ReliableExec: %w", err)
	}
	return parts, nil
}

func (cms *CRDBMetaStore) Shutdown(context.Context) error {
	cms.pool.Close()
	return nil
}
