// Package audit records who changed what in the catalog. Entries are written as
// JSON lines to a dedicated sink, separate from the application log.
package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ActionCreateProduct          = "CREATE_PRODUCT"
	ActionSignificantPriceChange = "SIGNIFICANT_PRICE_CHANGE"
	ActionUpdatePrice            = "UPDATE_PRICE"
	ActionUpdateAvailability     = "UPDATE_AVAILABILITY"
	ActionDeleteProduct          = "DELETE_PRODUCT"
	ActionAddCategory            = "ADD_CATEGORY"
	ActionAddUnit                = "ADD_UNIT"
)

// Recorder accepts audit entries
type Recorder interface {
	Log(ctx context.Context, userID, action, resource string, details map[string]interface{})
}

// Logger is a Recorder backed by a zap JSON logger
type Logger struct {
	logger *zap.Logger
}

// NewLogger opens path for appending, creating its directory when needed.
// With echo set, entries are mirrored to stdout.
func NewLogger(path string, echo bool) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}

	outputs := []string{path}
	if echo {
		outputs = append(outputs, "stdout")
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding:    "json",
		OutputPaths: outputs,
		// internal zap errors go to the application log's stream
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			MessageKey:     "event",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log %s: %w", path, err)
	}
	return &Logger{logger: logger}, nil
}

// NewFromZap wraps an existing zap logger
func NewFromZap(logger *zap.Logger) *Logger {
	return &Logger{logger: logger}
}

func (a *Logger) Log(_ context.Context, userID, action, resource string, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	a.logger.Info("audit",
		zap.String("user_id", userID),
		zap.String("action", action),
		zap.String("resource", resource),
		zap.Any("details", details),
	)
}

// Sync flushes buffered entries
func (a *Logger) Sync() error {
	return a.logger.Sync()
}
