package infrastructure

import (
	"go.uber.org/zap"
)

var (
	Logger *zap.Logger
)

// Init builds the process-wide logger. Failing to construct a logger leaves
// nothing to report the failure with, so it aborts startup.
func Init() {
	Logger = zap.Must(zap.NewProduction())
	Logger.Info("infrastructure initialized")
}
