// SPDX-License-Identifier: Apache-2.0

// Package logx configures the global zerolog logger for the application:
// console output by default, optional rolling file output via lumberjack.
package logx

import (
	"io"
	"os"
	"path"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// global logger instances
var logger zerolog.Logger
var nolog = zerolog.Nop()

var pid = os.Getpid()

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	// Level is the log level to use (e.g., "info", "debug").
	Level string `mapstructure:"level" yaml:"level" json:"level"`
	// ConsoleLogging enables logging to the console.
	ConsoleLogging bool `mapstructure:"consoleLogging" yaml:"consoleLogging" json:"consoleLogging"`
	// FileLogging enables logging to a rolling file.
	FileLogging bool `mapstructure:"fileLogging" yaml:"fileLogging" json:"fileLogging"`
	// Directory specifies the directory for log files (used if FileLogging is enabled).
	Directory string `mapstructure:"directory" yaml:"directory" json:"directory"`
	// Filename is the name of the log file.
	Filename string `mapstructure:"filename" yaml:"filename" json:"filename"`
	// MaxSize is the maximum size (in MB) of a log file before it is rolled.
	MaxSize int `mapstructure:"maxSize" yaml:"maxSize" json:"maxSize"`
	// MaxBackups is the maximum number of rolled log files to keep.
	MaxBackups int `mapstructure:"maxBackups" yaml:"maxBackups" json:"maxBackups"`
	// MaxAge is the maximum age (in days) to keep a log file.
	MaxAge int `mapstructure:"maxAge" yaml:"maxAge" json:"maxAge"`
	// Compress enables compression of rolled log files.
	Compress bool `mapstructure:"compress" yaml:"compress" json:"compress"`
}

// DefaultConfig returns the configuration used until Initialize is called with
// an explicit one.
func DefaultConfig() LoggingConfig {
	return LoggingConfig{
		Level:          "info",
		ConsoleLogging: true,
	}
}

func init() {
	if err := Initialize(DefaultConfig()); err != nil {
		// defaults are compiled in; failure here is a programmer error
		panic(err)
	}
}

// Initialize replaces the global logger according to cfg.
func Initialize(cfg LoggingConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	if cfg.ConsoleLogging {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
	if cfg.FileLogging {
		writers = append(writers, newRollingFile(cfg))
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Int("pid", pid).
		Logger()

	return nil
}

// As returns the global logger.
func As() *zerolog.Logger {
	return &logger
}

// Nop returns a no-op logger for tests and optional dependencies.
func Nop() *zerolog.Logger {
	return &nolog
}

func newRollingFile(cfg LoggingConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   path.Join(cfg.Directory, cfg.Filename),
		MaxBackups: cfg.MaxBackups, // files
		MaxSize:    cfg.MaxSize,    // megabytes
		MaxAge:     cfg.MaxAge,     // days
		Compress:   cfg.Compress,
	}
}
