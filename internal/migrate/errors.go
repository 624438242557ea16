// SPDX-License-Identifier: Apache-2.0

package migrate

import "github.com/joomcode/errorx"

var (
	ErrNamespace = errorx.NewNamespace("migrate")

	// UnknownVersionInPath reports a path endpoint missing from the release
	// history. Every version that ever shipped must be present in history.
	UnknownVersionInPath = ErrNamespace.NewType("unknown_version_in_path", errorx.NotFound())

	// CollectionUnreadable reports a primitive that could not read or parse its
	// top-level collection (as opposed to a single malformed entry within it).
	CollectionUnreadable = ErrNamespace.NewType("collection_unreadable")

	// StepExecutionFailed reports a migration procedure that returned failure
	// or panicked. It halts the run.
	StepExecutionFailed = ErrNamespace.NewType("step_execution_failed")
)
