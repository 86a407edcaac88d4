package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

func InitPostgres(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("empty Postgres DSN")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return fmt.Errorf("connect pgx: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return fmt.Errorf("ping pgx: %w", err)
	}

	Pool = pool
	return nil
}

func ClosePostgres() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
