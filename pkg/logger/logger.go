package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger
	once sync.Once
)

// Init builds the process-wide logger. Production config emits JSON;
// development gets colored console output.
func Init(env string) {
	once.Do(func() {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		if env == "development" {
			config = zap.NewDevelopmentConfig()
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		var err error
		log, err = config.Build()
		if err != nil {
			panic(err)
		}
	})
}

// L returns the process logger, initializing a production one if Init was
// never called (keeps tests and one-off tools working).
func L() *zap.Logger {
	if log == nil {
		Init("production")
	}
	return log
}

// Sync flushes buffered entries. Call on shutdown.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
