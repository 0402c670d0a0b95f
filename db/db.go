package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/campus-hub/campus-services/internal/events"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// CampusDB wraps the relational backend holding users, courses, presentation
// groups and security incidents.
type CampusDB struct {
	DB     *sql.DB
	Events events.Notifier
	Log    *zerolog.Logger
}

// NewCampusDB is a constructor that initializes CampusDB with DB and Log
func NewCampusDB(driver, source string, notifier events.Notifier, log *zerolog.Logger) (*CampusDB, error) {
	if source == "" {
		log.Error().Msg("database source is not configured")
		return nil, fmt.Errorf("database source is not configured")
	}

	// Open the database connection
	db, err := sql.Open(driver, source)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	// Check we are actually connected
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Database connection failed during ping")
		return nil, err
	}

	return &CampusDB{
		DB:     db,
		Events: notifier,
		Log:    log,
	}, nil
}

func (c *CampusDB) Close() error {
	if err := c.DB.Close(); err != nil {
		return err
	}
	c.Log.Info().Msg("database connection closed")

	if c.Events != nil {
		c.Events.Close()
		c.Log.Info().Msg("event publisher closed")
	}

	return nil
}

// Ping checks database reachability within the caller's deadline. The health
// reporter bounds this with a short timeout.
func (c *CampusDB) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Migrate runs the embedded goose migrations.
func (c *CampusDB) Migrate() error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("error setting goose dialect: %w", err)
	}

	if err := goose.Up(c.DB, "migrations"); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	c.Log.Info().Msg("migrations applied")
	return nil
}

func (c *CampusDB) execQuery(tx *sql.Tx, query string, args ...interface{}) error {
	if c.DB == nil {
		return fmt.Errorf("database connection is not established")
	}

	_, err := tx.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}
