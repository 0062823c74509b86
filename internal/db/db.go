// Package db is the document store: JSONB documents in PostgreSQL.
package db

import (
	"context"
	"crypto/md5"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/slothpixel/sloth/internal/util/slothlog"
)

var logger = slothlog.SubLogger("db")

type Config struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	UserName string `json:"user_name" split_words:"true"`
	Password string `json:"password"`
	Database string `json:"database"`
	Sslmode  string `json:"sslmode"`

	// -1 sets it to infinite
	MaxOpenConns int `json:"max_open_conns" split_words:"true"`
}

const ddlHashKeyName = "ddl_hash"

type md5Hash [md5.Size]byte

// Setup connects and brings the tables up to date. The caller owns the returned pool.
func Setup(ctx context.Context, config *Config) (*sql.DB, error) {
	sslmode := config.Sslmode
	if sslmode == "" {
		sslmode = "disable"
	}
	dbObj, err := sql.Open("pgx",
		fmt.Sprintf("user=%s dbname=%s sslmode=%s password=%s host=%s port=%d",
			config.UserName, config.Database, sslmode,
			config.Password, config.Host, config.Port))
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL client instantiation: %w", err)
	}

	dbObj.SetMaxOpenConns(config.MaxOpenConns)

	if err := dbObj.PingContext(ctx); err != nil {
		dbObj.Close()
		return nil, fmt.Errorf("PostgreSQL unreachable: %w", err)
	}

	if err := UpdateDDLIfNeeded(ctx, dbObj); err != nil {
		dbObj.Close()
		return nil, err
	}
	return dbObj, nil
}

func UpdateDDLIfNeeded(ctx context.Context, dbObj *sql.DB) error {
	ddl := Ddl()

	fileDdlHash := md5.Sum([]byte(ddl))
	currentDdlHash, err := liveDDLHash(ctx, dbObj)
	if err != nil {
		return err
	}

	if fileDdlHash == currentDdlHash {
		return nil
	}
	logger.InfoF("DDL hash mismatch, stored value is %x, ddl.sql is %x", currentDdlHash, fileDdlHash)
	if _, err := dbObj.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("PostgreSQL ddl setup: %w", err)
	}
	_, err = dbObj.ExecContext(ctx,
		`INSERT INTO constants (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		ddlHashKeyName, fileDdlHash[:])
	if err != nil {
		return fmt.Errorf("PostgreSQL ddl hash update: %w", err)
	}
	logger.Info("Successfully applied new db schema")
	return nil
}

// Returns current file md5 hash stored in table or an empty hash if either constants table
// does not exist or ddl_hash key is not found.
func liveDDLHash(ctx context.Context, dbObj *sql.DB) (ret md5Hash, err error) {
	tableExists := true
	err = dbObj.QueryRowContext(ctx, `SELECT EXISTS (
		SELECT * FROM pg_tables WHERE tablename = 'constants' AND schemaname = current_schema()
	)`).Scan(&tableExists)
	if err != nil {
		return ret, fmt.Errorf("PostgreSQL ddl check: %w", err)
	}
	if !tableExists {
		return ret, nil
	}

	value := []byte{}
	err = dbObj.QueryRowContext(ctx,
		`SELECT value FROM constants WHERE key = $1`, ddlHashKeyName).Scan(&value)
	if err != nil && err != sql.ErrNoRows {
		return ret, fmt.Errorf("PostgreSQL ddl check: %w", err)
	}
	if len(ret) != len(value) {
		return ret, nil
	}
	copy(ret[:], value)
	return ret, nil
}

// Helper function to join posibbly empty filters for a WHERE clause.
// Empty strings are discarded.
func Where(filters ...string) string {
	actualFilters := []string{}
	for _, filter := range filters {
		if filter != "" {
			actualFilters = append(actualFilters, filter)
		}
	}
	if len(actualFilters) == 0 {
		return ""
	}
	return "WHERE (" + strings.Join(actualFilters, ") AND (") + ")"
}
