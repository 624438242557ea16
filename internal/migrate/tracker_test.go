// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/reviewdeck/reviewdeck/pkg/kvstore"
	"github.com/reviewdeck/reviewdeck/pkg/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore wraps a Store and counts writes, so tests can assert that
// read-only paths really do not touch the store.
type countingStore struct {
	kvstore.Store
	writes int
}

func (c *countingStore) Set(key, value string) error {
	c.writes++
	return c.Store.Set(key, value)
}

func (c *countingStore) Remove(key string) error {
	c.writes++
	return c.Store.Remove(key)
}

func newTestTracker(t *testing.T, store kvstore.Store, current string, registry *Registry) *Tracker {
	t.Helper()
	resolver := NewResolver(testHistory(t))
	tracker, err := NewTracker(
		WithStore(store),
		WithCurrentVersion(semver.MustParse(current)),
		WithResolver(resolver),
		WithExecutor(NewExecutor(registry, resolver)),
	)
	require.NoError(t, err)
	return tracker
}

func TestNewTracker_RequiresStoreAndVersion(t *testing.T) {
	_, err := NewTracker(WithCurrentVersion(semver.MustParse("1.0.0")))
	require.Error(t, err)

	_, err = NewTracker(WithStore(kvstore.NewMemStore()))
	require.Error(t, err)
}

func TestTracker_Initialize_FirstRun(t *testing.T) {
	store := kvstore.NewMemStore()
	tracker := newTestTracker(t, store, "2.1.0", NewRegistry())

	status := tracker.Initialize(context.Background())

	require.NoError(t, status.Err)
	assert.True(t, status.FirstRun)
	assert.False(t, status.Updated)
	assert.Nil(t, status.FromVersion)

	raw, ok, err := store.Get(MarkerKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2.1.0", raw)
}

func TestTracker_Initialize_SameVersionWritesNothing(t *testing.T) {
	inner := kvstore.NewMemStore()
	require.NoError(t, inner.Set(MarkerKey, "2.1.0"))
	store := &countingStore{Store: inner}

	tracker := newTestTracker(t, store, "2.1.0", NewRegistry())
	status := tracker.Initialize(context.Background())

	require.NoError(t, status.Err)
	assert.False(t, status.FirstRun)
	assert.False(t, status.Updated)
	assert.Zero(t, store.writes)
}

func TestTracker_Initialize_UpdateRunsMigrationAndAdvancesMarker(t *testing.T) {
	store := kvstore.NewMemStore()
	require.NoError(t, store.Set(MarkerKey, "1.0.0"))

	registry := NewRegistry()
	var ran []string
	record := func(tag string) Procedure {
		return Procedure{
			Migrate: func(_ context.Context, _, _ semver.Version, _ *StepLogger) Result {
				ran = append(ran, tag)
				return SuccessResult(nil, nil)
			},
		}
	}
	registry.Register(semver.MustParse("1.1.0"), record("1.1.0"))
	registry.Register(semver.MustParse("1.2.0"), record("1.2.0"))
	registry.Register(semver.MustParse("2.0.0"), record("2.0.0"))

	tracker := newTestTracker(t, store, "2.1.0", registry)
	status := tracker.Initialize(context.Background())

	require.NoError(t, status.Err)
	assert.True(t, status.Updated)
	assert.True(t, status.MigrationNeeded)
	require.NotNil(t, status.FromVersion)
	assert.Equal(t, "1.0.0", status.FromVersion.Raw())
	require.NotNil(t, status.MigrationResult)
	assert.True(t, status.MigrationResult.Success)
	assert.Equal(t, []string{"1.1.0", "1.2.0", "2.0.0"}, ran)

	raw, _, err := store.Get(MarkerKey)
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", raw)
}

func TestTracker_Initialize_FailedMigrationKeepsOldMarker(t *testing.T) {
	store := kvstore.NewMemStore()
	require.NoError(t, store.Set(MarkerKey, "1.0.0"))

	registry := NewRegistry()
	registry.Register(semver.MustParse("1.1.0"), Procedure{
		Migrate: func(_ context.Context, _, _ semver.Version, _ *StepLogger) Result {
			return FailureResult(errors.New("disk on fire"))
		},
	})

	tracker := newTestTracker(t, store, "1.1.0", registry)
	status := tracker.Initialize(context.Background())

	require.Error(t, status.Err)
	assert.True(t, status.MigrationNeeded)
	require.NotNil(t, status.MigrationResult)
	assert.False(t, status.MigrationResult.Success)

	raw, _, err := store.Get(MarkerKey)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", raw)
}

func TestTracker_Initialize_UpdateWithoutDataChangesAdvancesMarker(t *testing.T) {
	store := kvstore.NewMemStore()
	require.NoError(t, store.Set(MarkerKey, "2.0.0"))

	tracker := newTestTracker(t, store, "2.1.0", NewRegistry())
	status := tracker.Initialize(context.Background())

	require.NoError(t, status.Err)
	assert.True(t, status.Updated)
	assert.False(t, status.MigrationNeeded)
	assert.Nil(t, status.MigrationResult)

	raw, _, err := store.Get(MarkerKey)
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", raw)
}

func TestTracker_Initialize_DowngradeIsFlaggedAndLeftAlone(t *testing.T) {
	inner := kvstore.NewMemStore()
	require.NoError(t, inner.Set(MarkerKey, "2.1.0"))
	store := &countingStore{Store: inner}

	tracker := newTestTracker(t, store, "1.3.0", NewRegistry())
	status := tracker.Initialize(context.Background())

	require.NoError(t, status.Err)
	assert.True(t, status.Downgrade)
	assert.False(t, status.Updated)
	assert.Zero(t, store.writes)

	raw, _, err := inner.Get(MarkerKey)
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", raw)
}

func TestTracker_Initialize_MalformedMarker(t *testing.T) {
	store := kvstore.NewMemStore()
	require.NoError(t, store.Set(MarkerKey, "not-a-version"))

	tracker := newTestTracker(t, store, "2.1.0", NewRegistry())
	status := tracker.Initialize(context.Background())

	require.Error(t, status.Err)
	assert.False(t, status.FirstRun)
}

func TestTracker_CheckStatus_IsReadOnly(t *testing.T) {
	inner := kvstore.NewMemStore()
	require.NoError(t, inner.Set(MarkerKey, "1.0.0"))
	store := &countingStore{Store: inner}

	tracker := newTestTracker(t, store, "2.1.0", NewRegistry())
	check, err := tracker.CheckStatus()

	require.NoError(t, err)
	assert.False(t, check.FirstRun)
	assert.True(t, check.Updated)
	assert.True(t, check.IsNewer)
	assert.False(t, check.IsOlder)
	require.NotNil(t, check.FromVersion)
	assert.Equal(t, "1.0.0", check.FromVersion.Raw())
	assert.Equal(t, "2.1.0", check.ToVersion.Raw())
	assert.Zero(t, store.writes)
}

func TestTracker_CheckStatus_FirstRun(t *testing.T) {
	tracker := newTestTracker(t, kvstore.NewMemStore(), "2.1.0", NewRegistry())

	check, err := tracker.CheckStatus()
	require.NoError(t, err)
	assert.True(t, check.FirstRun)
	assert.Nil(t, check.FromVersion)
}
