package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/models"
)

type sqlCollection struct {
	q     queryer
	table string
	err   error
}

func newCollection(q queryer, table string, err error) *sqlCollection {
	return &sqlCollection{q: q, table: table, err: err}
}

func (c *sqlCollection) GetAll(ctx context.Context) ([]models.Record, error) {
	if c.err != nil {
		return nil, c.err
	}
	log := logger.FromContext(ctx)

	query, args, err := buildSelectAllQuery(c.table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "sqlCollection.GetAll").
			Str("collection", c.table).
			Msg("failed to query collection")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0)
	for rows.Next() {
		var record models.Record
		if err := rows.Scan(&record.ID, &record.Data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return records, nil
}

func (c *sqlCollection) Get(ctx context.Context, id string) (models.Record, error) {
	if c.err != nil {
		return models.Record{}, c.err
	}

	query, args, err := buildSelectOneQuery(c.table, id)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var record models.Record
	err = c.q.QueryRowContext(ctx, query, args...).Scan(&record.ID, &record.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, c.table, id)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sqlCollection.Get").
			Str("collection", c.table).
			Str("id", id).
			Msg("failed to scan record")
		return models.Record{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return record, nil
}

func (c *sqlCollection) Put(ctx context.Context, record models.Record) error {
	if c.err != nil {
		return c.err
	}

	query, args, err := buildUpsertQuery(c.table, record)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := c.q.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sqlCollection.Put").
			Str("collection", c.table).
			Str("id", record.ID).
			Msg("failed to upsert record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (c *sqlCollection) Delete(ctx context.Context, id string) error {
	if c.err != nil {
		return c.err
	}

	query, args, err := buildDeleteQuery(c.table, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := c.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (c *sqlCollection) Clear(ctx context.Context) error {
	if c.err != nil {
		return c.err
	}

	query, args, err := buildClearQuery(c.table)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := c.q.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sqlCollection.Clear").
			Str("collection", c.table).
			Msg("failed to clear collection")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// copyFrom appends every row of src into this collection.
func (c *sqlCollection) copyFrom(ctx context.Context, src *sqlCollection) error {
	if c.err != nil {
		return c.err
	}
	if src.err != nil {
		return src.err
	}

	query, args, err := buildCopyQuery(c.table, src.table)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := c.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
