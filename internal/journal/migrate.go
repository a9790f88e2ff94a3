package journal

import (
	"context"
	"fmt"
)

// Migrate creates the journal schema if it does not exist. The journal is
// append-heavy audit data, so existing rows are never dropped.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.Bun.NewCreateTable().
		Model((*Attempt)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create registration_attempts table: %w", err)
	}
	return nil
}
