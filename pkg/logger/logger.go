package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"

	"github.com/oakwood-commons/dyntable/pkg/settings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	RootCommandKey = "root_command"
	SubCommandKey  = "sub_command"
	CommitKey      = "commit"
	VersionKey     = "version"
	BuildTimeKey   = "build_time"
	GoVersionKey   = "go_version"
	TimeStampKey   = "timestamp"
	MessageKey     = "message"
	InputKey       = "input"
)

// Encoding names accepted by Options.Encoding.
const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

// Options controls how a logger is built.
type Options struct {
	// Level is the minimum zap level. Negative values enable logr V-levels
	// (-1 shows V(1), -2 shows V(2)).
	Level int8
	// Output receives log entries. Defaults to stderr. The interactive table
	// owns the terminal, so callers point this at a file while it runs.
	Output io.Writer
	// Encoding is "json" (default) or "console".
	Encoding string
	// File, when set, is opened for appending and replaces Output.
	File string
}

var (
	once sync.Once

	// globalZapLogger is kept for Sync.
	globalZapLogger *zap.Logger

	globalLogrLogger *logr.Logger

	// logFile is the file opened for Options.File, closed by Sync.
	logFile *os.File

	defaultNoopLogger logr.Logger = logr.Discard()
)

// New builds a zap-backed logr.Logger without touching the global logger.
func New(opts Options) (logr.Logger, *zap.Logger) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	var encoder zapcore.Encoder
	switch strings.ToLower(opts.Encoding) {
	case EncodingConsole:
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	goVersion := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
	}
	core := zapcore.NewCore(
		encoder,
		zapcore.Lock(zapcore.AddSync(out)),
		zap.NewAtomicLevelAt(zapcore.Level(opts.Level)),
	).With(
		[]zapcore.Field{
			zap.String(CommitKey, settings.VersionInformation.Commit),
			zap.String(VersionKey, settings.VersionInformation.BuildVersion),
			zap.String(BuildTimeKey, settings.VersionInformation.BuildTime),
			zap.String(GoVersionKey, goVersion),
		},
	)

	zl := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.WithFatalHook(zapcore.WriteThenPanic),
	)
	return zapr.NewLogger(zl), zl
}

// Init initializes the global logger and reports a failure to open
// opts.File. Only the first call has any effect: later calls neither open
// their file nor change the logger.
func Init(opts Options) (*logr.Logger, error) {
	var err error
	once.Do(func() {
		if opts.File != "" {
			f, openErr := OpenFile(opts.File)
			if openErr != nil {
				err = openErr
				return
			}
			logFile = f
			opts.Output = f
		}
		lgr, zl := New(opts)
		globalZapLogger = zl
		globalLogrLogger = &lgr
	})
	if globalLogrLogger == nil {
		return &defaultNoopLogger, err
	}
	return globalLogrLogger, err
}

// Setup initializes the global logger like Init, ignoring a file error.
func Setup(opts Options) *logr.Logger {
	lgr, _ := Init(opts)
	return lgr
}

// Get initializes the global logger writing JSON to stderr at logLevel.
func Get(logLevel int8) *logr.Logger {
	return Setup(Options{Level: logLevel})
}

// OpenFile opens (appending) a log file for Options.Output.
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// WithLogger returns a context carrying log. Packages that only depend on
// logr can read it back with logr.FromContextOrDiscard.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if log == nil {
		return ctx
	}
	if cur, err := logr.FromContext(ctx); err == nil && cur == *log {
		return ctx
	}
	return logr.NewContext(ctx, *log)
}

// FromContext returns the logger in ctx, then the global logger, then a
// no-op logger.
func FromContext(ctx context.Context) *logr.Logger {
	if ctx != nil {
		if log, err := logr.FromContext(ctx); err == nil {
			return &log
		}
	}
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

// Sync flushes any buffered log entries and closes the log file opened by
// Init.
func Sync() {
	if globalZapLogger != nil {
		if err := globalZapLogger.Sync(); err != nil && !isIgnorableSyncError(err) {
			fmt.Fprintf(os.Stderr, "WARNING: failed to sync zap logger: %v\n", err)
		}
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// isIgnorableSyncError returns true for common Sync errors on pipes/TTYs.
// Windows consoles can return ERROR_INVALID_HANDLE wrapped in *os.PathError,
// which does not compare equal to syscall.EINVAL, so we also string-match.
func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EIO) || errors.Is(err, syscall.EBADF) {
		return true
	}
	if strings.Contains(err.Error(), "The handle is invalid") {
		return true
	}
	return false
}

// GetGlobalLogger returns the global logger, or a no-op logger before Setup.
func GetGlobalLogger() *logr.Logger {
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

func GetNoopLogger() *logr.Logger {
	return &defaultNoopLogger
}

// WithValues returns a copy of lgr with extra key/value pairs.
func WithValues(lgr *logr.Logger, keysAndValues ...any) *logr.Logger {
	nlgr := lgr.WithValues(keysAndValues...)
	return &nlgr
}
