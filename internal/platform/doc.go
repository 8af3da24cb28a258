// Package platform provides the host-platform collaborators the Grid Stat
// integration runs against: the config-entry store, the device and entity
// registries, and the service bus.
//
// The integration consumes these through small interfaces so tests can
// substitute in-memory fakes; the production implementations here are
// SQLite-backed (registries, store) or purely in-memory (service bus).
//
// Ownership model: a config entry owns devices (one per electricity
// account), devices own entities (energy and cost sensors). The registries
// are the source of truth and are queried, never cached long-term, by the
// integration workflows.
package platform
