package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// purgeEpochStart is the lower bound for history deletion. InfluxDB
// deletes require an explicit time range, so purges span from the unix
// epoch to now.
var purgeEpochStart = time.Unix(0, 0)

// PurgeEntities deletes all recorded history for the given entities.
//
// Each entity is deleted with its own predicate so one failure does not
// abort the rest; failures are collected and returned joined under
// ErrPurgeFailed. Pending writes are flushed first so freshly buffered
// readings do not survive the purge.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - entityIDs: Entities whose history should be removed
func (c *Client) PurgeEntities(ctx context.Context, entityIDs []string) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.writeAPI.Flush()

	stop := time.Now().Add(time.Minute)

	var errs []error
	for _, entityID := range entityIDs {
		predicate := fmt.Sprintf(`entity_id="%s"`, entityID)
		err := c.deleteAPI.DeleteWithName(ctx, c.cfg.Org, c.cfg.Bucket, purgeEpochStart, stop, predicate)
		if err != nil {
			errs = append(errs, fmt.Errorf("entity %s: %w", entityID, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrPurgeFailed, errors.Join(errs...))
	}
	return nil
}
