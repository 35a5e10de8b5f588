// Package warehouse owns the Snowflake session used by the console. Every
// remote procedure is reached through this single session; the warehouse is
// the system of record and nothing is cached on this side.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/config"
)

// Querier is the narrow surface the gateway needs. Rows come back as generic
// maps keyed by column name (Snowflake upper-cases unquoted identifiers).
type Querier interface {
	Query(ctx context.Context, query string) ([]map[string]any, error)
}

// Session wraps the database/sql handle opened through the gosnowflake driver.
type Session struct {
	db *sql.DB
}

func Connect(cfg config.Config) (*Session, error) {
	dsn, err := sf.DSN(&sf.Config{
		Account:   cfg.SnowflakeAccount,
		User:      cfg.SnowflakeUser,
		Password:  cfg.SnowflakePassword,
		Database:  cfg.SnowflakeDatabase,
		Schema:    cfg.SnowflakeSchema,
		Warehouse: cfg.SnowflakeWarehouse,
		Role:      cfg.SnowflakeRole,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to build Snowflake DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open Snowflake session: %w", err)
	}

	maxRetries := 10
	retryDelay := time.Second * 10

	for i := 0; i < maxRetries; i++ {
		err = db.Ping()
		if err == nil {
			log.Println("Successfully connected to the warehouse")
			return &Session{db: db}, nil
		}

		log.Printf("Failed to connect to the warehouse (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	db.Close()
	return nil, fmt.Errorf("failed to connect to the warehouse after %d attempts: %w", maxRetries, err)
}

func (s *Session) Close() error {
	return s.db.Close()
}

func (s *Session) Query(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		result = append(result, row)
	}

	return result, rows.Err()
}
