// SPDX-License-Identifier: Apache-2.0

package releases

import (
	"github.com/reviewdeck/reviewdeck/internal/history"
	"github.com/reviewdeck/reviewdeck/pkg/semver"
)

// CurrentVersion is the version of this build. Overridden at release time via
// ldflags.
var CurrentVersion = "2.1.0"

// History returns the complete release history of the application. Every
// version that ever shipped is listed here, in release order, whether or not
// it changed the data layout. The catalogue is compiled in, so a malformed
// entry is a programming error and panics at startup.
func History() *history.Registry {
	return history.MustNewRegistry([]history.Record{
		{
			Version: semver.MustParse("1.0.0"),
			Notes:   "initial release",
		},
		{
			Version:           semver.MustParse("1.1.0"),
			RequiresMigration: true,
			AffectedKeys:      []string{KeyCompanies},
			Changes:           []string{"companies gained an industry field"},
		},
		{
			Version:           semver.MustParse("1.2.0"),
			RequiresMigration: true,
			AffectedKeys:      []string{KeyCompanies},
			Changes: []string{
				"company url field renamed to website",
				"companies gained a favorite flag",
			},
		},
		{
			Version: semver.MustParse("1.3.0"),
			Notes:   "UI refresh, no data changes",
		},
		{
			Version:           semver.MustParse("2.0.0"),
			RequiresMigration: true,
			Breaking:          true,
			AffectedKeys:      []string{KeyPatternReviews, KeyChartPrefs},
			Changes: []string{
				"review ratings normalized to a 0-5 scale",
				"chart preferences reset for the new chart engine",
			},
		},
		{
			Version: semver.MustParse("2.1.0"),
			Notes:   "performance release, no data changes",
		},
	})
}
