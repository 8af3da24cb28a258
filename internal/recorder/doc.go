// Package recorder persists sensor history to InfluxDB and deletes it
// again on request.
//
// Readings flow in through the non-blocking batched write API. Purges
// run through the delete API, one predicate per entity, and are exposed
// to the rest of the system as the recorder.purge_entities service on
// the service bus so callers never touch InfluxDB directly.
package recorder
