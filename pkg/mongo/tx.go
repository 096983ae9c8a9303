package mongo

import (
	"context"
	"fmt"
)

// WithTransaction runs fn inside a multi-document transaction. Operations
// issued with the ctx passed to fn join the transaction; any error aborts it.
// Requires a replica set or sharded deployment.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(txCtx context.Context) (interface{}, error) {
		return nil, fn(txCtx)
	})
	return err
}
