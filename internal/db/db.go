package db

import (
	"database/sql"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Connect opens and pings a Postgres connection.
func Connect(dsn string, log *zap.Logger) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	log.Info("database connected")
	return conn, nil
}
