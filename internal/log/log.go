// Package log mirrors the module-scoped, key-value structured logging
// idiom used throughout this codebase's services (logger.Info(msg, "k",
// v, ...)), backed by zap.SugaredLogger rather than a hand-rolled
// formatter.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Module names the owning package for a logger, keyed by a constant
// per service so every log line carries its origin without a caller
// passing a free-form string.
type Module string

const (
	ModulePipeline      Module = "pipeline"
	ModuleParserState   Module = "parserstate"
	ModuleScheduler     Module = "scheduler"
	ModuleConsumer      Module = "consumer"
	ModuleNotify        Module = "notify"
	ModuleCache         Module = "cache"
	ModuleChainProvider Module = "chainprovider"
	ModuleRepository    Module = "repository"
	ModuleBroker        Module = "broker"
	ModuleDiscovery     Module = "discovery"
	ModuleCmd           Module = "cmd"
)

var (
	baseMu    sync.RWMutex
	baseLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base      = newCore(baseLevel)
)

func newCore(level zapcore.LevelEnabler) *zap.SugaredLogger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stdout), level)
	return zap.New(core).Sugar()
}

func baseLogger() *zap.SugaredLogger {
	baseMu.RLock()
	defer baseMu.RUnlock()
	return base
}

// Logger is the per-module handle returned by NewModuleLogger.
type Logger struct {
	module string
	sugar  *zap.SugaredLogger
}

// NewModuleLogger returns a logger tagged with module, the call-site
// shape used by every service in this codebase.
func NewModuleLogger(module Module) *Logger {
	return &Logger{module: string(module), sugar: baseLogger().With("module", string(module))}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }

// Crit logs at error level and then exits the process with status 1,
// matching this codebase's logger.Crit semantics for unrecoverable
// startup conditions that should abort the process.
func (l *Logger) Crit(msg string, kv ...interface{}) {
	l.sugar.Errorw(msg, kv...)
	os.Exit(1)
}

// SetLevel adjusts the shared minimum level of every Logger, including
// ones created before the call; used by cmd/ingestor to honor a
// --verbose flag.
func SetLevel(debug bool) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	baseLevel.SetLevel(level)
}
