package db

import (
	"database/sql"
	"fmt"
	"log"

	"AutoDJ/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
func InitDB() error {
	if err := createTracksTable(); err != nil {
		return err
	}
	if err := createMixesTable(); err != nil {
		return err
	}
	log.Println("Database initialization completed.")
	return nil
}

func createTracksTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS tracks (
		id VARCHAR(36) PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		artist VARCHAR(255),
		genre VARCHAR(100),
		source_url VARCHAR(767) NOT NULL,
		local_path VARCHAR(767),
		duration DOUBLE NOT NULL DEFAULT 0,
		envelope MEDIUMTEXT,
		highlights TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_tracks_genre (genre)
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create tracks table: %w", err)
	}
	log.Println("Tracks table initialized successfully (or already exists).")
	return nil
}

func createMixesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS mixes (
		id VARCHAR(36) PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		genre VARCHAR(100),
		track_ids TEXT,
		duration DOUBLE NOT NULL DEFAULT 0,
		file_path VARCHAR(767),
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_mixes_genre (genre)
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create mixes table: %w", err)
	}
	log.Println("Mixes table initialized successfully (or already exists).")
	return nil
}
