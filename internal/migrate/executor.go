// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/joomcode/errorx"
	"github.com/reviewdeck/reviewdeck/internal/history"
	"github.com/reviewdeck/reviewdeck/pkg/semver"
	"github.com/rs/zerolog"
)

// StepResult is the recorded outcome of one step in a migration run.
type StepResult struct {
	Version      semver.Version
	Success      bool
	AffectedKeys []string
	Details      string
	Metrics      map[string]int
	Err          error
}

// Summary aggregates a whole migration run. Results holds one entry per step
// attempted, in order; on failure the slice stops at the failing step.
type Summary struct {
	Success      bool
	Message      string
	AffectedKeys []string
	Results      []StepResult
	Err          error
}

// Executor resolves a migration path and runs the registered procedure for
// each step in release order.
type Executor struct {
	registry *Registry
	resolver *Resolver
	logger   *zerolog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger sets the logger used for run and step events.
func WithExecutorLogger(logger *zerolog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor builds an Executor over the given registry and resolver.
func NewExecutor(registry *Registry, resolver *Resolver, opts ...ExecutorOption) *Executor {
	nop := zerolog.Nop()
	e := &Executor{
		registry: registry,
		resolver: resolver,
		logger:   &nop,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute migrates store data from the given installed version to the target
// version, running every required step in release order and stopping at the
// first failure. The returned Summary always carries the results of the steps
// that were attempted, including the failing one.
//
// Every step receives the run's original starting version, not the version of
// the previous step. Procedures that branch on the starting version see the
// same picture regardless of how many steps precede them.
func (e *Executor) Execute(ctx context.Context, from, to semver.Version) Summary {
	runID := uuid.NewString()
	logger := e.logger.With().Str("run_id", runID).Logger()

	path, err := e.resolver.ResolvePath(from, to)
	if err != nil {
		logger.Error().Err(err).
			Str("from", from.Raw()).
			Str("to", to.Raw()).
			Msg("failed to resolve migration path")
		return Summary{
			Success: false,
			Message: fmt.Sprintf("failed to resolve migration path from %s to %s", from.Raw(), to.Raw()),
			Err:     err,
		}
	}

	if len(path) == 0 {
		logger.Info().
			Str("from", from.Raw()).
			Str("to", to.Raw()).
			Msg("no migration steps required")
		return Summary{
			Success: true,
			Message: fmt.Sprintf("no migration required from %s to %s", from.Raw(), to.Raw()),
		}
	}

	logger.Info().
		Str("from", from.Raw()).
		Str("to", to.Raw()).
		Int("steps", len(path)).
		Msg("starting migration run")

	summary := Summary{Success: true}
	affected := make(map[string]struct{})

	for _, rec := range path {
		step := e.runStep(ctx, &logger, from, rec)
		summary.Results = append(summary.Results, step)
		for _, key := range step.AffectedKeys {
			affected[key] = struct{}{}
		}

		if !step.Success {
			summary.Success = false
			summary.Err = step.Err
			summary.Message = fmt.Sprintf("migration to %s failed", rec.Version.Raw())
			break
		}
	}

	summary.AffectedKeys = sortedKeys(affected)
	if summary.Success {
		summary.Message = fmt.Sprintf("migrated from %s to %s in %d steps",
			from.Raw(), to.Raw(), len(summary.Results))
		logger.Info().
			Int("steps", len(summary.Results)).
			Strs("affected_keys", summary.AffectedKeys).
			Msg("migration run completed")
	} else {
		logger.Error().Err(summary.Err).Msg("migration run failed")
	}

	return summary
}

func (e *Executor) runStep(ctx context.Context, logger *zerolog.Logger, from semver.Version, rec history.Record) StepResult {
	version := rec.Version

	proc, ok := e.registry.Find(version)
	if !ok {
		// History says this release changed the data layout but nothing is
		// registered for it. Treat as a no-op so a forgotten registration
		// skips the step instead of wedging every update at this version.
		logger.Warn().
			Str("version", version.Raw()).
			Msg("no procedure registered for migration step, skipping")
		return StepResult{
			Version: version,
			Success: true,
			Details: "no procedure registered, skipped",
		}
	}

	logger.Info().
		Str("version", version.Raw()).
		Msg("running migration step")

	stepLogger := NewStepLogger(logger, version.Raw())
	result := e.runProcedure(ctx, proc, from, version, stepLogger)

	keys := make(map[string]struct{})
	for _, key := range proc.Affects {
		keys[key] = struct{}{}
	}
	for _, key := range result.AffectedKeys {
		keys[key] = struct{}{}
	}

	step := StepResult{
		Version:      version,
		Success:      result.Success,
		AffectedKeys: sortedKeys(keys),
		Metrics:      result.Metrics,
	}

	if !result.Success {
		err := result.Err
		if err == nil {
			err = StepExecutionFailed.New("migration to %s reported failure", version.Raw())
		} else if !errorx.IsOfType(err, StepExecutionFailed) {
			err = StepExecutionFailed.Wrap(err, "migration to %s failed", version.Raw())
		}
		step.Err = err
		step.Details = err.Error()
		stepLogger.Error("migration step failed", err)
		return step
	}

	step.Details = fmt.Sprintf("migrated to %s", version.Raw())
	stepLogger.Success("migration step completed")
	return step
}

// runProcedure invokes proc and converts a panic into a failed Result. A
// panicking procedure must not take down the host application during startup.
func (e *Executor) runProcedure(ctx context.Context, proc Procedure, from, to semver.Version, logger *StepLogger) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = FailureResult(
				StepExecutionFailed.New("migration to %s panicked: %v", to.Raw(), r))
		}
	}()
	return proc.Migrate(ctx, from, to, logger)
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
