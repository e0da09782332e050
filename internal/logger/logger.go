// Package logger provides the process-wide structured logger built on Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init configures the global logger for the given environment.
// "production" gets the JSON encoder; anything else gets the
// human-readable console encoder.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		if env == "production" {
			base, err = zap.NewProduction()
		} else {
			base, err = zap.NewDevelopment()
		}

		if err != nil {
			base = zap.NewNop()
		}

		sugar = base.Sugar()
	})
}

// Get returns the global sugared logger, initializing a development
// logger if Init was never called.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes buffered entries. Call before process exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
