package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type ConnectionInfo struct {
	Host         string
	Port         int
	Username     string
	DBName       string
	SSLMode      string
	Password     string
	MaxOpenConns int
}

func (info ConnectionInfo) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s password=%s",
		info.Host,
		info.Port,
		info.Username,
		info.DBName,
		info.SSLMode,
		info.Password,
	)
}

func NewPostgresConnection(info ConnectionInfo) (*sql.DB, error) {
	db, err := sql.Open("pgx", info.DSN())
	if err != nil {
		return nil, err
	}

	if info.MaxOpenConns > 0 {
		db.SetMaxOpenConns(info.MaxOpenConns)
		db.SetMaxIdleConns(info.MaxOpenConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func Close(db *sql.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Printf("postgres close error: %s", err)
	}
}
