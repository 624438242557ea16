// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"
	"sync"

	"github.com/joomcode/errorx"
	"github.com/reviewdeck/reviewdeck/pkg/kvstore"
	"github.com/reviewdeck/reviewdeck/pkg/semver"
	"github.com/rs/zerolog"
)

// MarkerKey is the store key holding the version the persisted data was last
// written by. The value is the plain version string, not JSON.
const MarkerKey = "appVersion"

// Check is the read-only comparison of the stored data version against the
// running binary's version. Updated means the binary is strictly newer than
// the stored data, i.e. an upgrade is pending; a downgrade sets IsOlder
// instead, never Updated.
type Check struct {
	FirstRun    bool
	Updated     bool
	FromVersion *semver.Version
	ToVersion   semver.Version
	IsNewer     bool
	IsOlder     bool
}

// Status is the outcome of an Initialize call. MigrationResult is nil unless
// a migration run was attempted. Updated means an upgrade was detected, not
// merely that the versions differ; a downgrade reports Downgrade with
// Updated false.
type Status struct {
	FirstRun        bool
	Updated         bool
	FromVersion     *semver.Version
	ToVersion       semver.Version
	MigrationNeeded bool
	Downgrade       bool
	MigrationResult *Summary
	Err             error
}

// Tracker owns the stored version marker and orchestrates migration on
// startup. It is safe for concurrent use, though in practice Initialize runs
// once before anything else touches the store.
type Tracker struct {
	mu       sync.Mutex
	store    kvstore.Store
	current  semver.Version
	resolver *Resolver
	executor *Executor
	logger   *zerolog.Logger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithStore sets the backing store. Required.
func WithStore(store kvstore.Store) TrackerOption {
	return func(t *Tracker) {
		t.store = store
	}
}

// WithCurrentVersion sets the version of the running binary. Required.
func WithCurrentVersion(version semver.Version) TrackerOption {
	return func(t *Tracker) {
		t.current = version
	}
}

// WithResolver sets the path resolver used to decide whether an update needs
// migration.
func WithResolver(resolver *Resolver) TrackerOption {
	return func(t *Tracker) {
		t.resolver = resolver
	}
}

// WithExecutor sets the executor that runs resolved migration paths.
func WithExecutor(executor *Executor) TrackerOption {
	return func(t *Tracker) {
		t.executor = executor
	}
}

// WithTrackerLogger sets the logger for tracker events.
func WithTrackerLogger(logger *zerolog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracker builds a Tracker from the given options. A store and a non-zero
// current version are mandatory.
func NewTracker(opts ...TrackerOption) (*Tracker, error) {
	nop := zerolog.Nop()
	t := &Tracker{logger: &nop}
	for _, opt := range opts {
		opt(t)
	}

	if t.store == nil {
		return nil, errorx.IllegalArgument.New("tracker requires a store")
	}
	if t.current.Raw() == "" {
		return nil, errorx.IllegalArgument.New("tracker requires the current version")
	}

	return t, nil
}

// StoredVersion reads and parses the version marker. A missing marker returns
// (nil, nil): the store has never been initialized.
func (t *Tracker) StoredVersion() (*semver.Version, error) {
	raw, ok, err := t.store.Get(MarkerKey)
	if err != nil {
		return nil, errorx.Decorate(err, "failed to read version marker")
	}
	if !ok {
		return nil, nil
	}

	v, err := semver.Parse(raw)
	if err != nil {
		return nil, errorx.Decorate(err, "stored version marker is malformed")
	}
	return &v, nil
}

// CheckStatus compares the stored version with the current one without
// writing anything. Safe to call from read-only tooling.
func (t *Tracker) CheckStatus() (Check, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stored, err := t.StoredVersion()
	if err != nil {
		return Check{}, err
	}

	check := Check{ToVersion: t.current}
	if stored == nil {
		check.FirstRun = true
		return check, nil
	}

	check.FromVersion = stored
	check.IsNewer = t.current.GreaterThan(*stored)
	check.IsOlder = t.current.LessThan(*stored)
	check.Updated = check.IsNewer
	return check, nil
}

// Initialize brings the stored data in line with the current binary version.
// It never returns an error; every failure mode is captured in the Status so
// the host can decide whether to continue with unmigrated data.
//
// First run persists the marker immediately. An update resolves and runs the
// migration path, persisting the marker only when every step succeeded. A
// downgrade is flagged but otherwise left alone; the older data layout is
// assumed forward-compatible until proven otherwise.
func (t *Tracker) Initialize(ctx context.Context) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := Status{ToVersion: t.current}

	stored, err := t.StoredVersion()
	if err != nil {
		status.Err = err
		t.logger.Error().Err(err).Msg("failed to determine stored version")
		return status
	}

	if stored == nil {
		status.FirstRun = true
		if err := t.persistMarker(); err != nil {
			status.Err = err
			return status
		}
		t.logger.Info().
			Str("version", t.current.Raw()).
			Msg("first run, version marker initialized")
		return status
	}

	status.FromVersion = stored

	switch {
	case t.current.Equal(*stored):
		t.logger.Debug().
			Str("version", t.current.Raw()).
			Msg("stored version is current, nothing to do")
		return status

	case t.current.LessThan(*stored):
		status.Downgrade = true
		t.logger.Warn().
			Str("stored", stored.Raw()).
			Str("current", t.current.Raw()).
			Msg("stored data was written by a newer version, leaving it untouched")
		return status
	}

	status.Updated = true

	if t.resolver == nil || t.executor == nil {
		status.Err = errorx.IllegalState.New("update detected but no migration pipeline is configured")
		t.logger.Error().Err(status.Err).Send()
		return status
	}

	path, err := t.resolver.ResolvePath(*stored, t.current)
	if err != nil {
		status.Err = err
		t.logger.Error().Err(err).
			Str("from", stored.Raw()).
			Str("to", t.current.Raw()).
			Msg("cannot resolve migration path")
		return status
	}

	if len(path) == 0 {
		if err := t.persistMarker(); err != nil {
			status.Err = err
			return status
		}
		t.logger.Info().
			Str("from", stored.Raw()).
			Str("to", t.current.Raw()).
			Msg("updated without data changes, version marker advanced")
		return status
	}

	status.MigrationNeeded = true
	summary := t.executor.Execute(ctx, *stored, t.current)
	status.MigrationResult = &summary

	if !summary.Success {
		status.Err = summary.Err
		t.logger.Error().Err(summary.Err).
			Str("from", stored.Raw()).
			Str("to", t.current.Raw()).
			Msg("migration failed, version marker left at previous version")
		return status
	}

	if err := t.persistMarker(); err != nil {
		// The data migrated but the marker did not advance, so the next start
		// will re-run the path. Procedures being idempotent-safe makes that
		// survivable, but the run still counts as failed.
		summary.Success = false
		summary.Err = err
		summary.Message = "migration succeeded but version marker could not be persisted"
		status.MigrationResult = &summary
		status.Err = err
		t.logger.Error().Err(err).Msg("failed to persist version marker after migration")
		return status
	}

	t.logger.Info().
		Str("from", stored.Raw()).
		Str("to", t.current.Raw()).
		Int("steps", len(summary.Results)).
		Msg("migration completed, version marker advanced")

	return status
}

func (t *Tracker) persistMarker() error {
	if err := t.store.Set(MarkerKey, t.current.Raw()); err != nil {
		return errorx.Decorate(err, "failed to persist version marker")
	}
	return nil
}
