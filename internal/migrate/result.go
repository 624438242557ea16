// SPDX-License-Identifier: Apache-2.0

package migrate

// Result is the outcome of a single migration procedure. It lives only in the
// in-memory status returned to the caller; only its side effects on the store
// persist.
type Result struct {
	Success      bool
	AffectedKeys []string
	Err          error
	Metrics      map[string]int
}

// SuccessResult builds a successful Result with the given affected keys and
// metrics.
func SuccessResult(affectedKeys []string, metrics map[string]int) Result {
	return Result{
		Success:      true,
		AffectedKeys: affectedKeys,
		Metrics:      metrics,
	}
}

// FailureResult builds a failed Result carrying err.
func FailureResult(err error, affectedKeys ...string) Result {
	return Result{
		Success:      false,
		AffectedKeys: affectedKeys,
		Err:          err,
	}
}

// MergeMetrics sums two metric maps, treating nil as empty.
func MergeMetrics(a, b map[string]int) map[string]int {
	if a == nil && b == nil {
		return nil
	}
	out := make(map[string]int, len(a)+len(b))
	for k, v := range a {
		out[k] += v
	}
	for k, v := range b {
		out[k] += v
	}
	return out
}

// OpResult carries the counters a store primitive reports. Only non-zero
// counters are surfaced as metrics.
type OpResult struct {
	// Processed counts the records or keys the primitive visited.
	Processed int
	// Updated counts records or entries actually rewritten.
	Updated int
	// Cleared counts entries deleted outright.
	Cleared int
	// Succeeded counts per-key handler invocations that completed.
	Succeeded int
	// Failed counts per-entry or per-key failures that were swallowed.
	Failed int
}

// Metrics converts the non-zero counters into a metrics map.
func (r OpResult) Metrics() map[string]int {
	m := make(map[string]int)
	if r.Processed > 0 {
		m["processed"] = r.Processed
	}
	if r.Updated > 0 {
		m["updated"] = r.Updated
	}
	if r.Cleared > 0 {
		m["cleared"] = r.Cleared
	}
	if r.Succeeded > 0 {
		m["succeeded"] = r.Succeeded
	}
	if r.Failed > 0 {
		m["failed"] = r.Failed
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
