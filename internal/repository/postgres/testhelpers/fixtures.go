package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LoadFixtures loads SQL fixture files into the database
func LoadFixtures(db *sql.DB, fixturesPath string, files []string) error {
	for _, file := range files {
		path := filepath.Join(fixturesPath, file)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read fixture %s: %w", file, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("load fixture %s: %w", file, err)
		}
		fmt.Printf("Loaded fixture: %s\n", file)
	}

	return nil
}

// InsertDream inserts a minimal dream row created at the given time
func InsertDream(db *sql.DB, id, name, origin, destination string, createdAt time.Time) error {
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO dreams (id, dreamer_name, origin_station, destination_city, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, name, origin, destination, createdAt, createdAt.Add(30*24*time.Hour))
	if err != nil {
		return fmt.Errorf("insert dream %s: %w", id, err)
	}
	return nil
}
