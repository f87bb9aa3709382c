package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger that writes JSON lines to a timestamped file inside
// logsDir. The returned closer should be closed when logging is no longer
// needed.
func New(logsDir, command string, verbose bool) (*zap.Logger, io.Closer, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	if command != "" {
		filename = time.Now().Format("20060102-150405") + "-" + command + ".log"
	}
	filePath := filepath.Join(logsDir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	return NewWithWriter(file, verbose).With(zap.String("command", command)), file, nil
}

// NewWithWriter builds a JSON logger on top of an arbitrary writer.
func NewWithWriter(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

// Printf adapts a zap logger to the Printf-style logger the cache and fetch
// layers accept.
func Printf(l *zap.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard, "", 0)
	}
	return zap.NewStdLog(l)
}
