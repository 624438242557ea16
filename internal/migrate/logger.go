// SPDX-License-Identifier: Apache-2.0

package migrate

import "github.com/rs/zerolog"

// StepLogger is the logging facade handed to migration procedures. Every
// message carries the step's target version so operators can trace exactly
// which step emitted it.
type StepLogger struct {
	logger *zerolog.Logger
	scope  string
}

// NewStepLogger scopes logger with the given step identifier. A nil logger
// yields a no-op StepLogger.
func NewStepLogger(logger *zerolog.Logger, scope string) *StepLogger {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &StepLogger{logger: logger, scope: scope}
}

func (s *StepLogger) Info(msg string) {
	s.logger.Info().Str("step", s.scope).Msg(msg)
}

func (s *StepLogger) Warn(msg string) {
	s.logger.Warn().Str("step", s.scope).Msg(msg)
}

func (s *StepLogger) Error(msg string, err error) {
	s.logger.Error().Str("step", s.scope).Err(err).Msg(msg)
}

func (s *StepLogger) Success(msg string) {
	s.logger.Info().Str("step", s.scope).Str("status", "success").Msg(msg)
}
