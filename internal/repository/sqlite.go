package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/m8keys/internal/dataset"
)

// Repository writes resolved datasets to SQLite for offline consumers
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS screens (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			img TEXT,
			media_folder TEXT,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS screen_aliases (
			screen_id TEXT NOT NULL,
			alias TEXT NOT NULL,
			FOREIGN KEY (screen_id) REFERENCES screens(id) ON DELETE CASCADE,
			UNIQUE(screen_id, alias)
		)`,
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			template_id TEXT NOT NULL,
			screen_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			level INTEGER,
			video TEXT,
			events_url TEXT,
			keypress TEXT NOT NULL,
			FOREIGN KEY (screen_id) REFERENCES screens(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS activity_categories (
			activity_id TEXT NOT NULL,
			category_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_screen ON activities(screen_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_categories_category ON activity_categories(category_id)`,
	}

	for _, m := range migrations {
		if _, err := r.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// clearOrder deletes children before parents
var clearOrder = []string{"activity_categories", "activities", "screen_aliases", "screens", "categories"}

// Export replaces the stored dataset with ds in a single transaction
func (r *Repository) Export(ctx context.Context, ds *dataset.Dataset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range clearOrder {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, c := range ds.Categories {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO categories (id, name, position) VALUES (?, ?, ?)",
			c.ID, c.Name, i); err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}

	for i, s := range ds.Screens {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO screens (id, name, description, img, media_folder, position) VALUES (?, ?, ?, ?, ?, ?)",
			s.ID, s.Name, s.Description, s.Img, s.MediaFolder, i); err != nil {
			return fmt.Errorf("insert screen %s: %w", s.ID, err)
		}
		for _, alias := range s.Aliases {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO screen_aliases (screen_id, alias) VALUES (?, ?)",
				s.ID, alias); err != nil {
				return fmt.Errorf("insert alias %s: %w", alias, err)
			}
		}
	}

	// A repeated reference keeps only its last occurrence, matching the
	// dataset's id index. Position is the index within the owning screen's list.
	last := make(map[string]int, len(ds.Activities))
	for i, a := range ds.Activities {
		last[a.ID] = i
	}
	positions := make(map[string]int)
	for i, a := range ds.Activities {
		pos := positions[a.ScreenID]
		positions[a.ScreenID]++
		if last[a.ID] != i {
			continue
		}

		keys, err := json.Marshal(a.Keypress)
		if err != nil {
			return fmt.Errorf("encode keypress of %s: %w", a.ID, err)
		}
		var level sql.NullInt64
		if a.Level.Valid() {
			level = sql.NullInt64{Int64: int64(a.Level), Valid: true}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO activities
				(id, template_id, screen_id, position, name, description, level, video, events_url, keypress)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.TemplateID, a.ScreenID, pos, a.Name, a.Description, level,
			a.Media.Video, a.Media.EventsURL, string(keys)); err != nil {
			return fmt.Errorf("insert activity %s: %w", a.ID, err)
		}
		for j, cid := range a.CategoryIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO activity_categories (activity_id, category_id, position) VALUES (?, ?, ?)",
				a.ID, cid, j); err != nil {
				return fmt.Errorf("insert activity category %s: %w", cid, err)
			}
		}
	}

	return tx.Commit()
}

// CountActivities returns the number of stored activities
func (r *Repository) CountActivities(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&n)
	return n, err
}

// ActivityIDsForScreen returns a screen's activity ids ordered by position.
// An unknown screen returns ErrNotFound.
func (r *Repository) ActivityIDsForScreen(ctx context.Context, screenID string) ([]string, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM screens WHERE id = ?", screenID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM activities WHERE screen_id = ? ORDER BY position", screenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
