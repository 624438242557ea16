// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"github.com/reviewdeck/reviewdeck/internal/history"
	"github.com/reviewdeck/reviewdeck/pkg/semver"
)

// Resolver computes which releases between two versions require migration.
type Resolver struct {
	history *history.Registry
}

// NewResolver builds a Resolver over the given release history.
func NewResolver(hist *history.Registry) *Resolver {
	return &Resolver{history: hist}
}

// ResolvePath returns the ordered releases in the half-open interval
// (from, to] that declare a data migration. Both endpoints must be known
// releases; an unknown endpoint means the installed data predates or
// postdates anything this build understands, and guessing would risk
// corrupting it.
//
// Equal endpoints short-circuit to an empty path before any history lookup,
// so a same-version start never fails even on an endpoint the history does
// not list.
func (r *Resolver) ResolvePath(from, to semver.Version) ([]history.Record, error) {
	if from.Equal(to) {
		return nil, nil
	}

	if r.history.Find(from) == nil {
		return nil, UnknownVersionInPath.New("version %s is not present in the release history", from.Raw())
	}
	if r.history.Find(to) == nil {
		return nil, UnknownVersionInPath.New("version %s is not present in the release history", to.Raw())
	}

	var path []history.Record
	for _, rec := range r.history.All() {
		if !rec.Version.GreaterThan(from) || rec.Version.GreaterThan(to) {
			continue
		}
		if rec.RequiresMigration {
			path = append(path, rec)
		}
	}

	return path, nil
}
