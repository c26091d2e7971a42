package collector

import (
	"context"
	"fmt"
)

// Relocate points the association's future output at prefix and waits
// until the update itself reaches Success.
func (c *Collector) Relocate(ctx context.Context, associationID, prefix string) error {
	if err := c.fleet.UpdateOutputPrefix(ctx, associationID, c.config.AWS.Region, c.config.Output.Bucket, prefix); err != nil {
		return err
	}
	if err := c.WaitForAssociation(ctx, associationID); err != nil {
		return fmt.Errorf("association %s did not settle after relocation: %w", associationID, err)
	}
	return nil
}

// RelocateEnvironment relocates the environment's association and returns
// its id.
func (c *Collector) RelocateEnvironment(ctx context.Context, prefix string) (string, error) {
	id, err := c.AssociationID(ctx)
	if err != nil {
		return "", err
	}
	if err := c.Relocate(ctx, id, prefix); err != nil {
		return "", err
	}
	return id, nil
}
