// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"

	"github.com/reviewdeck/reviewdeck/internal/history"
	"github.com/reviewdeck/reviewdeck/pkg/semver"
	"github.com/rs/zerolog"
)

// Procedure is the executable migration for one released version. Affects
// declares the store keys (or key patterns) the procedure touches; the
// executor merges it with whatever the run actually reports.
type Procedure struct {
	Affects []string
	Migrate func(ctx context.Context, from, to semver.Version, logger *StepLogger) Result
}

// Registry maps released versions to their migration procedures. Versions
// whose release carries no data change simply have no entry.
type Registry struct {
	procedures map[string]Procedure
	logger     *zerolog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for registration diagnostics.
func WithRegistryLogger(logger *zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry builds an empty procedure registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	nop := zerolog.Nop()
	r := &Registry{
		procedures: make(map[string]Procedure),
		logger:     &nop,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds proc to version, replacing any previous binding.
func (r *Registry) Register(version semver.Version, proc Procedure) {
	if _, exists := r.procedures[version.Raw()]; exists {
		r.logger.Warn().
			Str("version", version.Raw()).
			Msg("replacing previously registered migration procedure")
	}
	r.procedures[version.Raw()] = proc
}

// Find returns the procedure registered for version, if any.
func (r *Registry) Find(version semver.Version) (Procedure, bool) {
	proc, ok := r.procedures[version.Raw()]
	return proc, ok
}

// Len returns the number of registered procedures.
func (r *Registry) Len() int {
	return len(r.procedures)
}

// Verify cross-checks the registry against the release history and logs a
// warning for every record that declares a migration but has no registered
// procedure. The executor treats such steps as no-ops, so a missed
// registration degrades silently without this check.
func (r *Registry) Verify(hist *history.Registry) {
	for _, rec := range hist.All() {
		if !rec.RequiresMigration {
			continue
		}
		if _, ok := r.Find(rec.Version); !ok {
			r.logger.Warn().
				Str("version", rec.Version.Raw()).
				Msg("release history declares a migration but no procedure is registered")
		}
	}
}
