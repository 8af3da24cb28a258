package platform

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// EntityRegistry defines the interface for entity lookup and removal.
type EntityRegistry interface {
	// Get retrieves an entity by its platform entity ID.
	// Returns ErrEntityNotFound if the entity does not exist.
	Get(ctx context.Context, entityID string) (*EntityEntry, error)

	// EntriesForDevice retrieves all entities owned by a device.
	// Disabled entities are included only when includeDisabled is true.
	EntriesForDevice(ctx context.Context, deviceID string, includeDisabled bool) ([]EntityEntry, error)

	// EntriesForEntry retrieves all entities owned by a config entry,
	// across all its devices. Disabled entities are included.
	EntriesForEntry(ctx context.Context, entryID string) ([]EntityEntry, error)

	// Ensure inserts the entity if it is not already registered.
	// Existing entities are left untouched (setup is re-runnable).
	Ensure(ctx context.Context, entity *EntityEntry) error

	// Remove detaches an entity from the registry by entity ID.
	// Returns ErrEntityNotFound if the entity does not exist.
	Remove(ctx context.Context, entityID string) error
}

// SQLiteEntityRegistry implements EntityRegistry using SQLite.
type SQLiteEntityRegistry struct {
	db *sql.DB
}

// NewSQLiteEntityRegistry creates a new SQLite-backed entity registry.
func NewSQLiteEntityRegistry(db *sql.DB) *SQLiteEntityRegistry {
	return &SQLiteEntityRegistry{db: db}
}

// Get retrieves an entity by its platform entity ID.
func (r *SQLiteEntityRegistry) Get(ctx context.Context, entityID string) (*EntityEntry, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT entity_id, unique_id, device_id, entry_id, disabled FROM entities WHERE entity_id = ?",
		entityID,
	)

	entity, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntityNotFound
		}
		return nil, fmt.Errorf("querying entity by id: %w", err)
	}
	return entity, nil
}

// EntriesForDevice retrieves all entities owned by a device.
func (r *SQLiteEntityRegistry) EntriesForDevice(ctx context.Context, deviceID string, includeDisabled bool) ([]EntityEntry, error) {
	query := "SELECT entity_id, unique_id, device_id, entry_id, disabled FROM entities WHERE device_id = ?"
	if !includeDisabled {
		query += " AND disabled = 0"
	}
	query += " ORDER BY entity_id"

	return r.queryEntities(ctx, query, deviceID)
}

// EntriesForEntry retrieves all entities owned by a config entry.
func (r *SQLiteEntityRegistry) EntriesForEntry(ctx context.Context, entryID string) ([]EntityEntry, error) {
	return r.queryEntities(ctx,
		"SELECT entity_id, unique_id, device_id, entry_id, disabled FROM entities WHERE entry_id = ? ORDER BY entity_id",
		entryID,
	)
}

// Ensure inserts the entity if it is not already registered.
func (r *SQLiteEntityRegistry) Ensure(ctx context.Context, entity *EntityEntry) error {
	disabled := 0
	if entity.Disabled {
		disabled = 1
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO entities (entity_id, unique_id, device_id, entry_id, disabled)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(entity_id) DO NOTHING`,
		entity.EntityID, entity.UniqueID, entity.DeviceID, entity.EntryID, disabled,
	)
	if err != nil {
		return fmt.Errorf("inserting entity: %w", err)
	}
	return nil
}

// Remove detaches an entity from the registry by entity ID.
func (r *SQLiteEntityRegistry) Remove(ctx context.Context, entityID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM entities WHERE entity_id = ?", entityID)
	if err != nil {
		return fmt.Errorf("deleting entity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrEntityNotFound
	}
	return nil
}

// queryEntities runs an entity query and scans all rows.
func (r *SQLiteEntityRegistry) queryEntities(ctx context.Context, query string, args ...any) ([]EntityEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var entities []EntityEntry
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		entities = append(entities, *entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return entities, nil
}

// scanEntity scans an entity row.
func scanEntity(row rowScanner) (*EntityEntry, error) {
	var entity EntityEntry
	var disabled int

	if err := row.Scan(&entity.EntityID, &entity.UniqueID, &entity.DeviceID, &entity.EntryID, &disabled); err != nil {
		return nil, err
	}
	entity.Disabled = disabled != 0
	return &entity, nil
}
