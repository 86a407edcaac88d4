package sqlquery

import (
	"context"
	"fmt"

	"searchq/internal/db"
	"searchq/internal/logger"
	"searchq/internal/search"
)

// Result is the materialized (countQuery, pagedQuery) pair.
type Result struct {
	TotalCount int64            `json:"total_count"`
	Items      []map[string]any `json:"items"`
}

// MaterializeCount executes only the counting derivative.
func MaterializeCount(ctx context.Context, countQuery search.Queryable) (int64, error) {
	countQ, ok := countQuery.(*Query)
	if !ok {
		return 0, fmt.Errorf("materialize: countQuery is not a sqlquery.Query")
	}
	countSQL, countArgs, err := countQ.CountSQL()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	logger.Debug("sql", map[string]any{"count_sql": countSQL})

	var total int64
	if err := db.Pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	return total, nil
}

// Materialize executes both query derivatives against the shared pool.
// It is the convenience wrapper around the engine output; the engine
// itself never executes anything.
func Materialize(ctx context.Context, countQuery, pagedQuery search.Queryable) (*Result, error) {
	countQ, ok := countQuery.(*Query)
	if !ok {
		return nil, fmt.Errorf("materialize: countQuery is not a sqlquery.Query")
	}
	pagedQ, ok := pagedQuery.(*Query)
	if !ok {
		return nil, fmt.Errorf("materialize: pagedQuery is not a sqlquery.Query")
	}

	countSQL, countArgs, err := countQ.CountSQL()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}
	selectSQL, selectArgs, err := pagedQ.SelectSQL()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}
	logger.Debug("sql", map[string]any{
		"count_sql":   countSQL,
		"select_sql":  selectSQL,
		"select_args": selectArgs,
	})

	result := &Result{Items: []map[string]any{}}
	if err := db.Pool.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return nil, fmt.Errorf("count query: %w", err)
	}

	rows, err := db.Pool.Query(ctx, selectSQL, selectArgs...)
	if err != nil {
		return nil, fmt.Errorf("select query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		item := make(map[string]any, len(fields))
		for i, fd := range fields {
			item[fd.Name] = values[i]
		}
		result.Items = append(result.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}
