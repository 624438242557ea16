// SPDX-License-Identifier: Apache-2.0

// Package releases holds the application's release history, the migration
// procedures attached to it, and the wiring that turns them into a ready
// version tracker.
package releases

// Store keys and key patterns used by the application's persisted data.
const (
	// KeyCompanies holds the JSON array of tracked companies.
	KeyCompanies = "companies"
	// KeySettings holds the user settings object.
	KeySettings = "settings"
	// KeyChartPrefs holds chart display preferences.
	KeyChartPrefs = "chartPrefs"
	// KeyPatternReviews matches all cached review pages, one entry per
	// company.
	KeyPatternReviews = "reviews_*"
	// ReviewItemsField is the list field inside a review cache entry.
	ReviewItemsField = "items"
)
