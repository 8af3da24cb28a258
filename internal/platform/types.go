package platform

import "strconv"

// ConfigEntry represents one authenticated utility-account connection.
//
// The entry owns one device per electricity account and, transitively,
// the sensor entities scoped to those devices. Entry data is persisted
// as JSON by the entry store; the registries are the source of truth
// for devices and entities.
type ConfigEntry struct {
	// EntryID is the unique identifier for this entry.
	EntryID string `json:"entry_id"`

	// Domain is the integration domain tag that owns the entry.
	Domain string `json:"domain"`

	// Title is the human-readable entry name (typically the username).
	Title string `json:"title"`

	// Data is the persisted entry payload.
	Data EntryData `json:"data"`
}

// EntryData is the persisted payload of a config entry.
type EntryData struct {
	// Username is the utility-account login name.
	Username string `json:"username"`

	// AuthToken is the stored session token for the remote client.
	AuthToken string `json:"auth_token"`

	// LoginType records how the session was established (phone_code, password).
	LoginType string `json:"login_type"`

	// Settings is the per-entry settings bag.
	Settings EntrySettings `json:"settings"`

	// Accounts maps electricity account numbers to account metadata.
	// Keys are unique and correspond 1:1 with registered devices.
	Accounts map[string]Account `json:"accounts"`

	// UpdatedAt is the last modification time in epoch milliseconds,
	// stored as a string.
	UpdatedAt string `json:"updated_at"`
}

// EntrySettings holds per-entry user settings.
type EntrySettings struct {
	// DeleteEntityDataOnRemoval controls whether recorded history is
	// purged when an account or the whole entry is removed.
	DeleteEntityDataOnRemoval bool `json:"delete_entity_data_on_removal"`
}

// Account holds metadata for a single electricity account.
type Account struct {
	// Number is the electricity account number.
	Number string `json:"number"`

	// Name is the account holder or premise name.
	Name string `json:"name"`

	// MeteringPoint is the utility's metering point identifier.
	MeteringPoint string `json:"metering_point"`
}

// Clone creates an independent copy of the EntryData.
// The Accounts map is copied so modifications to the clone do not
// affect the original.
func (d EntryData) Clone() EntryData {
	cpy := d
	if d.Accounts != nil {
		cpy.Accounts = make(map[string]Account, len(d.Accounts))
		for k, v := range d.Accounts {
			cpy.Accounts[k] = v
		}
	}
	return cpy
}

// UpdatedAtMillis parses UpdatedAt into epoch milliseconds.
// Returns 0 if the field is empty or malformed.
func (d EntryData) UpdatedAtMillis() int64 {
	ms, err := strconv.ParseInt(d.UpdatedAt, 10, 64)
	if err != nil {
		return 0
	}
	return ms
}

// Identifier is one component of a device's composite identity:
// a (domain tag, account number) pair.
type Identifier struct {
	Domain string `json:"domain"`
	ID     string `json:"id"`
}

// DeviceEntry represents one electricity account within an entry.
// Devices are owned by exactly one config entry.
type DeviceEntry struct {
	// ID is the registry-assigned device identifier.
	ID string `json:"id"`

	// EntryID is the owning config entry.
	EntryID string `json:"entry_id"`

	// Name is the human-readable device name.
	Name string `json:"name"`

	// Identifiers is the composite identity. The first identifier's ID
	// component is the electricity account number.
	Identifiers []Identifier `json:"identifiers"`
}

// AccountNumber returns the account number from the device's composite
// identifiers, or "" if the device has none.
func (d DeviceEntry) AccountNumber() string {
	if len(d.Identifiers) == 0 {
		return ""
	}
	return d.Identifiers[0].ID
}

// EntityEntry represents one measurable sensor scoped to a device.
//
// The unique ID contains the account number as a substring; removal
// workflows rely on this for filtering.
type EntityEntry struct {
	// EntityID is the platform-wide entity identifier (e.g. sensor.csg_001_energy).
	EntityID string `json:"entity_id"`

	// UniqueID is the integration-scoped stable identifier.
	UniqueID string `json:"unique_id"`

	// DeviceID is the owning device.
	DeviceID string `json:"device_id"`

	// EntryID is the owning config entry.
	EntryID string `json:"entry_id"`

	// Disabled marks entities excluded from normal operation but still
	// present in the registry.
	Disabled bool `json:"disabled"`
}
