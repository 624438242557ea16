// SPDX-License-Identifier: Apache-2.0

// Package history holds the ordered, immutable catalogue of every shipped
// release and its migration metadata. The catalogue's ordering is the sole
// basis for migration path resolution.
package history

import (
	"github.com/joomcode/errorx"
	"github.com/reviewdeck/reviewdeck/pkg/semver"
)

var (
	ErrNamespace     = errorx.NewNamespace("history")
	MalformedHistory = ErrNamespace.NewType("malformed_history")
)

// Record describes one shipped release. Records are appended once per release
// and never mutated or deleted afterwards.
type Record struct {
	// Version is the release version.
	Version semver.Version

	// RequiresMigration marks releases whose data shape changed.
	RequiresMigration bool

	// MigrateFrom lists the versions this release's migration was written
	// against. Informational; path resolution uses history order only.
	MigrateFrom []semver.Version

	// AffectedKeys names the storage keys this release's migration touches.
	AffectedKeys []string

	// Changes is the ordered, human-readable change list for the release.
	Changes []string

	// Breaking marks releases that clear data instead of migrating in place.
	Breaking bool

	Notes string
}

// Registry is the release catalogue, sorted ascending by version.
type Registry struct {
	records []Record
}

// NewRegistry validates the catalogue invariant: strictly ascending by
// version, no duplicates. A violation signals a build-time defect and is
// reported as MalformedHistory.
func NewRegistry(records []Record) (*Registry, error) {
	for i := 1; i < len(records); i++ {
		prev := records[i-1].Version
		cur := records[i].Version
		if cur.Compare(prev) <= 0 {
			return nil, MalformedHistory.New(
				"release history must be strictly ascending: %s does not follow %s", cur, prev)
		}
	}

	rs := make([]Record, len(records))
	copy(rs, records)

	return &Registry{records: rs}, nil
}

// MustNewRegistry panics on a malformed catalogue. The release history is
// compiled in, so a violation can only be a programmer error.
func MustNewRegistry(records []Record) *Registry {
	r, err := NewRegistry(records)
	if err != nil {
		panic(err)
	}
	return r
}

// All returns the catalogue in ascending version order.
func (r *Registry) All() []Record {
	rs := make([]Record, len(r.records))
	copy(rs, r.records)
	return rs
}

// Find returns the record for the exact version, or nil if the version never
// shipped.
func (r *Registry) Find(v semver.Version) *Record {
	for i := range r.records {
		if r.records[i].Version.Equal(v) {
			rec := r.records[i]
			return &rec
		}
	}
	return nil
}

// Latest returns the newest record, or nil for an empty catalogue.
func (r *Registry) Latest() *Record {
	if len(r.records) == 0 {
		return nil
	}
	rec := r.records[len(r.records)-1]
	return &rec
}

func (r *Registry) Len() int {
	return len(r.records)
}
