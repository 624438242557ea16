// SPDX-License-Identifier: Apache-2.0

package releases

import (
	"context"

	"github.com/reviewdeck/reviewdeck/internal/migrate"
	"github.com/reviewdeck/reviewdeck/pkg/kvstore"
	"github.com/reviewdeck/reviewdeck/pkg/semver"
	"github.com/rs/zerolog"
)

// NewProcedureRegistry builds the procedure registry for every release that
// changes the data layout, bound to the given store.
func NewProcedureRegistry(store kvstore.Store, logger *zerolog.Logger) *migrate.Registry {
	registry := migrate.NewRegistry(migrate.WithRegistryLogger(logger))

	registry.Register(semver.MustParse("1.1.0"), migrate.Procedure{
		Affects: []string{KeyCompanies},
		Migrate: func(_ context.Context, _, _ semver.Version, log *migrate.StepLogger) migrate.Result {
			res, err := migrate.AddField(store, log, KeyCompanies, "industry", "Technology")
			if err != nil {
				return migrate.FailureResult(err, KeyCompanies)
			}
			return migrate.SuccessResult([]string{KeyCompanies}, res.Metrics())
		},
	})

	registry.Register(semver.MustParse("1.2.0"), migrate.Procedure{
		Affects: []string{KeyCompanies},
		Migrate: func(_ context.Context, _, _ semver.Version, log *migrate.StepLogger) migrate.Result {
			renamed, err := migrate.RenameField(store, log, KeyCompanies, "url", "website")
			if err != nil {
				return migrate.FailureResult(err, KeyCompanies)
			}
			added, err := migrate.AddField(store, log, KeyCompanies, "favorite", false)
			if err != nil {
				return migrate.FailureResult(err, KeyCompanies)
			}
			return migrate.SuccessResult([]string{KeyCompanies},
				migrate.MergeMetrics(renamed.Metrics(), added.Metrics()))
		},
	})

	registry.Register(semver.MustParse("2.0.0"), migrate.Procedure{
		Affects: []string{KeyPatternReviews, KeyChartPrefs},
		Migrate: func(_ context.Context, _, _ semver.Version, log *migrate.StepLogger) migrate.Result {
			transformed, err := migrate.TransformEntries(store, log, KeyPatternReviews,
				ReviewItemsField, normalizeReview)
			if err != nil {
				return migrate.FailureResult(err, KeyPatternReviews)
			}
			cleared, err := migrate.ClearAll(store, log, KeyChartPrefs)
			if err != nil {
				return migrate.FailureResult(err, KeyChartPrefs)
			}
			return migrate.SuccessResult([]string{KeyPatternReviews, KeyChartPrefs},
				migrate.MergeMetrics(transformed.Metrics(), cleared.Metrics()))
		},
	})

	return registry
}

// normalizeReview rescales legacy percentage ratings to the 0-5 scale used
// since 2.0.0 and fills in the source field older caches lack. Already
// normalized reviews pass through unchanged, so re-running is harmless.
func normalizeReview(item map[string]any) (map[string]any, error) {
	if rating, ok := item["rating"].(float64); ok && rating > 5 {
		item["rating"] = rating / 20
	}
	if _, ok := item["source"]; !ok {
		item["source"] = "web"
	}
	return item, nil
}
