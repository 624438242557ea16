// SPDX-License-Identifier: Apache-2.0

package releases

import (
	"context"

	"github.com/reviewdeck/reviewdeck/internal/migrate"
	"github.com/reviewdeck/reviewdeck/pkg/kvstore"
	"github.com/reviewdeck/reviewdeck/pkg/semver"
	"github.com/rs/zerolog"
)

// NewTracker assembles the full versioning pipeline over store: release
// history, procedure registry, path resolver and executor.
func NewTracker(store kvstore.Store, logger *zerolog.Logger) (*migrate.Tracker, error) {
	current, err := semver.Parse(CurrentVersion)
	if err != nil {
		return nil, err
	}

	hist := History()
	registry := NewProcedureRegistry(store, logger)
	registry.Verify(hist)
	resolver := migrate.NewResolver(hist)

	return migrate.NewTracker(
		migrate.WithStore(store),
		migrate.WithCurrentVersion(current),
		migrate.WithResolver(resolver),
		migrate.WithExecutor(migrate.NewExecutor(registry, resolver,
			migrate.WithExecutorLogger(logger))),
		migrate.WithTrackerLogger(logger),
	)
}

// InitializeVersioning runs the startup versioning check against store and
// returns its status. Errors building the tracker itself surface in the
// status as well, so callers have a single failure channel.
func InitializeVersioning(ctx context.Context, store kvstore.Store, logger *zerolog.Logger) migrate.Status {
	tracker, err := NewTracker(store, logger)
	if err != nil {
		return migrate.Status{Err: err}
	}
	return tracker.Initialize(ctx)
}
