package platform

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// DeviceRegistry defines the interface for device lookup and removal.
type DeviceRegistry interface {
	// Get retrieves a device by its registry identifier.
	// Returns ErrDeviceNotFound if the device does not exist.
	Get(ctx context.Context, deviceID string) (*DeviceEntry, error)

	// ListForEntry retrieves all devices owned by a config entry.
	ListForEntry(ctx context.Context, entryID string) ([]DeviceEntry, error)

	// Ensure inserts the device if it is not already registered.
	// Existing devices are left untouched (setup is re-runnable).
	Ensure(ctx context.Context, device *DeviceEntry) error

	// Remove deletes a device by ID.
	// Returns ErrDeviceNotFound if the device does not exist.
	Remove(ctx context.Context, deviceID string) error
}

// SQLiteDeviceRegistry implements DeviceRegistry using SQLite.
// Composite identifiers are stored as a JSON array.
type SQLiteDeviceRegistry struct {
	db *sql.DB
}

// NewSQLiteDeviceRegistry creates a new SQLite-backed device registry.
func NewSQLiteDeviceRegistry(db *sql.DB) *SQLiteDeviceRegistry {
	return &SQLiteDeviceRegistry{db: db}
}

// Get retrieves a device by its registry identifier.
func (r *SQLiteDeviceRegistry) Get(ctx context.Context, deviceID string) (*DeviceEntry, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, entry_id, name, identifiers FROM devices WHERE id = ?",
		deviceID,
	)

	device, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return device, nil
}

// ListForEntry retrieves all devices owned by a config entry, ordered by name.
func (r *SQLiteDeviceRegistry) ListForEntry(ctx context.Context, entryID string) ([]DeviceEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, entry_id, name, identifiers FROM devices WHERE entry_id = ? ORDER BY name",
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []DeviceEntry
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// Ensure inserts the device if it is not already registered.
func (r *SQLiteDeviceRegistry) Ensure(ctx context.Context, device *DeviceEntry) error {
	identifiersJSON, err := json.Marshal(device.Identifiers)
	if err != nil {
		return fmt.Errorf("marshalling identifiers: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO devices (id, entry_id, name, identifiers)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		device.ID, device.EntryID, device.Name, string(identifiersJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting device: %w", err)
	}
	return nil
}

// Remove deletes a device by ID.
func (r *SQLiteDeviceRegistry) Remove(ctx context.Context, deviceID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", deviceID)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// scanDevice scans a device row, decoding the JSON identifiers.
func scanDevice(row rowScanner) (*DeviceEntry, error) {
	var device DeviceEntry
	var identifiersJSON string

	if err := row.Scan(&device.ID, &device.EntryID, &device.Name, &identifiersJSON); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(identifiersJSON), &device.Identifiers); err != nil {
		return nil, fmt.Errorf("unmarshalling identifiers: %w", err)
	}
	return &device, nil
}
