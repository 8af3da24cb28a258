package recorder

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names used in the history bucket.
const (
	measurementEnergy = "energy_usage"
	measurementCost   = "energy_cost"
)

// WriteEnergyReading records a month-to-date consumption reading.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - entityID: The sensor entity the reading belongs to
//     (e.g., "sensor.csg_0123456789_energy")
//   - kwh: Month-to-date consumption in kWh
func (c *Client) WriteEnergyReading(entityID string, kwh float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		measurementEnergy,
		map[string]string{
			"entity_id": entityID,
		},
		map[string]interface{}{
			"kwh": kwh,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCostReading records a month-to-date cost reading.
//
// Parameters:
//   - entityID: The sensor entity the reading belongs to
//   - cost: Month-to-date cost in the account's currency
func (c *Client) WriteCostReading(entityID string, cost float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		measurementCost,
		map[string]string{
			"entity_id": entityID,
		},
		map[string]interface{}{
			"cost": cost,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
