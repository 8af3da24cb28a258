package sensor

// Sensor kinds produced for every account.
const (
	KindEnergy = "energy"
	KindCost   = "cost"
)

// EntityID builds the platform-wide entity identifier for an account
// sensor, e.g. "sensor.csg_0123456789_energy".
func EntityID(account, kind string) string {
	return "sensor.csg_" + account + "_" + kind
}

// UniqueID builds the stable integration-scoped identifier for an
// account sensor, e.g. "csg-0123456789-energy". The account number is
// embedded as a substring; account removal filters on it.
func UniqueID(account, kind string) string {
	return "csg-" + account + "-" + kind
}

// DeviceID builds the deterministic registry identifier for an
// account's device. Deterministic IDs keep repeated entry setups
// idempotent.
func DeviceID(account string) string {
	return "csg-" + account
}
