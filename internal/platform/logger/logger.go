// Package logger builds the process-wide zap logger.
//
// Every record goes to stdout. When a file is configured the same records are
// also appended to it in a line format starting with "[YYYY-MM-DD HH:MM:SS]"
// (UTC); that prefix is what the log retention job parses.
package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"coin_backend/internal/platform/config"
)

// FileTimeLayout is the timestamp layout written at the start of each file line.
const FileTimeLayout = "2006-01-02 15:04:05"

// FileSink is the system log file. It implements zapcore.WriteSyncer and
// sync.Locker: holders of the lock get exclusive access to the file, so the
// retention job can rewrite it without interleaving log writes.
type FileSink struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// OpenFileSink opens (or creates) path in append mode.
func OpenFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &FileSink{path: path, f: f}, nil
}

// Path returns the file path.
func (s *FileSink) Path() string { return s.path }

// Lock blocks log writes until Unlock is called.
func (s *FileSink) Lock() { s.mu.Lock() }

// Unlock releases the lock taken by Lock.
func (s *FileSink) Unlock() { s.mu.Unlock() }

// Write appends p to the file.
func (s *FileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Write(p)
}

// Sync flushes the file.
func (s *FileSink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Sync()
}

// Close closes the file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}

// New builds a logger from cfg. The returned sink is nil when cfg.File is
// empty. cleanup flushes the logger and closes the file; call it on shutdown.
func New(cfg config.LoggingConfig) (*zap.Logger, *FileSink, func(), error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	stdoutEnc := zap.NewProductionEncoderConfig()
	stdoutEnc.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if cfg.Format == "console" {
		enc = zapcore.NewConsoleEncoder(stdoutEnc)
	} else {
		enc = zapcore.NewJSONEncoder(stdoutEnc)
	}
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level)}

	var sink *FileSink
	if cfg.File != "" {
		sink, err = OpenFileSink(cfg.File)
		if err != nil {
			return nil, nil, nil, err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(FileEncoderConfig()), sink, level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	cleanup := func() {
		_ = logger.Sync()
		if sink != nil {
			_ = sink.Close()
		}
	}
	return logger, sink, cleanup, nil
}

// FileEncoderConfig returns the encoder config for the system log file:
// "[2006-01-02 15:04:05]\tINFO\tmessage\t{fields}".
func FileEncoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + t.UTC().Format(FileTimeLayout) + "]")
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	ec.CallerKey = zapcore.OmitKey
	return ec
}
