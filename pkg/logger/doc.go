// Package logger builds configured slog.Logger instances and provides typed
// attribute helpers so log keys stay consistent across services.
//
// Construction is option-based, with environment presets:
//
//	log := logger.New(logger.WithEnvironment(cfg.AppEnv, "authd"))
//	log.Info("user resolved", logger.UserID(user.ID), logger.Component("oauth"))
package logger
