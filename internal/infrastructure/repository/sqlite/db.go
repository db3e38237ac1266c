// Package sqlite persists extracted rolls in an embedded SQLite database.
// Referential integrity is enforced in the schema: deleting a roll cascades
// through sections, voters and summary rows, so no orphaned child rows can
// survive a parent delete.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

func OpenDB(path string) (*sql.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

type RollRepository struct {
	db *sql.DB
}

func NewRollRepository(db *sql.DB) *RollRepository {
	return &RollRepository{db: db}
}

func (r *RollRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
CREATE TABLE IF NOT EXISTS rolls (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_name TEXT NOT NULL UNIQUE,
	assembly_constituency TEXT NOT NULL DEFAULT '',
	part_number INTEGER NOT NULL DEFAULT 0,
	publication_date TEXT NOT NULL DEFAULT '',
	total_voters_count INTEGER NOT NULL DEFAULT 0,
	pages_total INTEGER NOT NULL DEFAULT 0,
	pages_succeeded INTEGER NOT NULL DEFAULT 0,
	processed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	roll_id INTEGER NOT NULL,
	section_name TEXT NOT NULL,
	FOREIGN KEY (roll_id) REFERENCES rolls(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS voters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	section_id INTEGER NOT NULL,
	idcard_no TEXT NOT NULL UNIQUE,
	voter_name TEXT NOT NULL DEFAULT '',
	relative_name TEXT NOT NULL DEFAULT '',
	relation_type TEXT NOT NULL DEFAULT 'O',
	house_no TEXT NOT NULL DEFAULT '',
	age INTEGER NOT NULL DEFAULT 0,
	gender TEXT NOT NULL DEFAULT '',
	serial_no INTEGER NOT NULL DEFAULT 0,
	box_no_on_page INTEGER NOT NULL DEFAULT 0,
	page_no INTEGER NOT NULL DEFAULT 0 CHECK (page_no >= 0),
	status_type TEXT NOT NULL DEFAULT 'N',
	all_text TEXT NOT NULL DEFAULT '',
	FOREIGN KEY (section_id) REFERENCES sections(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS summary_stats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	roll_id INTEGER NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	male_count INTEGER NOT NULL DEFAULT 0,
	female_count INTEGER NOT NULL DEFAULT 0,
	other_gender_count INTEGER NOT NULL DEFAULT 0,
	total_count INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (roll_id) REFERENCES rolls(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sections_roll_id ON sections(roll_id);
CREATE INDEX IF NOT EXISTS idx_voters_section_id ON voters(section_id);
CREATE INDEX IF NOT EXISTS idx_summary_stats_roll_id ON summary_stats(roll_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
