// Package integration is the lifecycle core of the grid_stat system.
//
// The Controller owns config entry setup and unload, the idempotent
// registration of the grid_stat services, and the purge and removal
// workflows that keep the registries, the entry store, and recorded
// history consistent when accounts or entries go away.
//
// Design rules the workflows follow:
//
//   - Service registration is guarded: registering when already
//     registered is a no-op, and services are unregistered only when
//     the last entry of the domain unloads.
//   - Purges are best effort. A failed history purge is logged and
//     swallowed; it never blocks a removal.
//   - Registry detachment during account removal is unconditional and
//     continues past individual failures.
//   - Entry removal purges first (when configured), then terminates the
//     remote session; logout failures do propagate.
package integration
