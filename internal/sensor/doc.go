// Package sensor materializes electricity accounts as devices and
// sensor entities, and keeps their readings flowing into the recorder.
//
// The Forwarder is the platform side of entry setup: one device per
// account, an energy and a cost sensor per device, and a polling
// Coordinator per entry that fetches month-to-date figures from the
// utility backend. Entity and unique IDs embed the account number;
// the removal workflows depend on that.
package sensor
