package recorder

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-gridstat/internal/platform"
)

// Service bus names for the recorder.
const (
	// Domain is the service domain the recorder registers under.
	Domain = "recorder"

	// ServicePurgeEntities removes recorded history for a list of entities.
	ServicePurgeEntities = "purge_entities"
)

// Purger deletes recorded history for entities.
// *Client implements it; tests substitute fakes.
type Purger interface {
	PurgeEntities(ctx context.Context, entityIDs []string) error
}

// RegisterService exposes the purger as recorder.purge_entities on the
// service bus. Callers invoke it with a data payload of the form:
//
//	{"entity_ids": ["sensor.csg_0123456789_energy", ...]}
func RegisterService(bus *platform.ServiceBus, purger Purger) error {
	return bus.Register(Domain, ServicePurgeEntities,
		func(ctx context.Context, call platform.ServiceCall) error {
			ids, err := entityIDsFromCall(call)
			if err != nil {
				return err
			}
			return purger.PurgeEntities(ctx, ids)
		})
}

// entityIDsFromCall extracts the entity_ids list from a service payload.
// Both []string and []any forms are accepted; bridge transports decode
// JSON into the latter.
func entityIDsFromCall(call platform.ServiceCall) ([]string, error) {
	raw, ok := call.Data["entity_ids"]
	if !ok {
		return nil, fmt.Errorf("%w: missing entity_ids", platform.ErrInvalidServiceData)
	}

	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			id, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: entity_ids element %T is not a string", platform.ErrInvalidServiceData, item)
			}
			ids = append(ids, id)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("%w: entity_ids has type %T", platform.ErrInvalidServiceData, raw)
	}
}
