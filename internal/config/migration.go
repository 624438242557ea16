// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/reviewdeck/reviewdeck/pkg/logx"
	"github.com/spf13/viper"
)

// deprecatedKeys maps configuration keys from earlier releases to their
// current names. Old keys keep working for now; a warning nudges users to
// update their config files.
var deprecatedKeys = map[string]string{
	"storage.dir":    "dataDir",
	"logging.level":  "log.level",
	"logging.stdout": "log.consoleLogging",
}

// migrateDeprecatedKeys copies values set under deprecated keys to their
// replacements. A replacement the config file sets explicitly wins over the
// deprecated key.
func migrateDeprecatedKeys(v *viper.Viper) {
	for oldKey, newKey := range deprecatedKeys {
		if !v.InConfig(oldKey) {
			continue
		}
		logx.As().Warn().
			Str("deprecated", oldKey).
			Str("replacement", newKey).
			Msg("config key is deprecated, please rename it")
		if !v.InConfig(newKey) {
			v.Set(newKey, v.Get(oldKey))
		}
	}
}
