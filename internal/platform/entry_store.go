package platform

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// EntryStore defines the interface for config-entry persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type EntryStore interface {
	// Get retrieves a config entry by its unique identifier.
	// Returns ErrEntryNotFound if the entry does not exist.
	Get(ctx context.Context, entryID string) (*ConfigEntry, error)

	// Entries retrieves all config entries belonging to a domain.
	Entries(ctx context.Context, domain string) ([]ConfigEntry, error)

	// Create inserts a new config entry.
	// Returns ErrEntryExists if an entry with the same ID already exists.
	Create(ctx context.Context, entry *ConfigEntry) error

	// UpdateEntry replaces the persisted data payload of an entry.
	// Returns ErrEntryNotFound if the entry does not exist.
	UpdateEntry(ctx context.Context, entryID string, data EntryData) error

	// Remove deletes a config entry by ID.
	// Returns ErrEntryNotFound if the entry does not exist.
	Remove(ctx context.Context, entryID string) error
}

// SQLiteEntryStore implements EntryStore using SQLite.
// Entry data is stored as a JSON payload in the config_entries table.
type SQLiteEntryStore struct {
	db *sql.DB
}

// NewSQLiteEntryStore creates a new SQLite-backed entry store.
// The db parameter should be an open SQLite connection.
func NewSQLiteEntryStore(db *sql.DB) *SQLiteEntryStore {
	return &SQLiteEntryStore{db: db}
}

// Get retrieves a config entry by its unique identifier.
func (s *SQLiteEntryStore) Get(ctx context.Context, entryID string) (*ConfigEntry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT entry_id, domain, title, data FROM config_entries WHERE entry_id = ?",
		entryID,
	)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("querying entry by id: %w", err)
	}
	return entry, nil
}

// Entries retrieves all config entries belonging to a domain, ordered by title.
func (s *SQLiteEntryStore) Entries(ctx context.Context, domain string) ([]ConfigEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT entry_id, domain, title, data FROM config_entries WHERE domain = ? ORDER BY title",
		domain,
	)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []ConfigEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

// Create inserts a new config entry.
func (s *SQLiteEntryStore) Create(ctx context.Context, entry *ConfigEntry) error {
	dataJSON, err := json.Marshal(entry.Data)
	if err != nil {
		return fmt.Errorf("marshalling entry data: %w", err)
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM config_entries WHERE entry_id = ?", entry.EntryID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking entry existence: %w", err)
	}
	if exists > 0 {
		return ErrEntryExists
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO config_entries (entry_id, domain, title, data) VALUES (?, ?, ?, ?)",
		entry.EntryID, entry.Domain, entry.Title, string(dataJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}
	return nil
}

// UpdateEntry replaces the persisted data payload of an entry.
func (s *SQLiteEntryStore) UpdateEntry(ctx context.Context, entryID string, data EntryData) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshalling entry data: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE config_entries
		 SET data = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		 WHERE entry_id = ?`,
		string(dataJSON), entryID,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Remove deletes a config entry by ID.
func (s *SQLiteEntryStore) Remove(ctx context.Context, entryID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM config_entries WHERE entry_id = ?", entryID,
	)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry scans a config entry row, decoding the JSON data payload.
func scanEntry(row rowScanner) (*ConfigEntry, error) {
	var entry ConfigEntry
	var dataJSON string

	if err := row.Scan(&entry.EntryID, &entry.Domain, &entry.Title, &dataJSON); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(dataJSON), &entry.Data); err != nil {
		return nil, fmt.Errorf("unmarshalling entry data: %w", err)
	}
	return &entry, nil
}
