// Package logging provides config-driven categorized logging for imaginarium.
// Every category is a named child of one zap logger. Logging is controlled by
// debug_mode in the config file: when false, every logger is a no-op.
package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Boot/initialization
	CategorySession   Category = "session"   // Command dispatch, definition loading
	CategoryParser    Category = "parser"    // Rule matching, grammar errors
	CategoryOntology  Category = "ontology"  // Store mutations
	CategoryGenerator Category = "generator" // Problem compilation
	CategorySolver    Category = "solver"    // SAT search
	CategoryInvention Category = "invention" // Decoding, rendering
	CategoryKernel    Category = "kernel"    // Mangle fact engine
	CategoryWatcher   Category = "watcher"   // Definition file watcher
	CategoryAudit     Category = "audit"     // Mangle-queryable audit trail
)

// Config mirrors config.LoggingConfig to avoid an import cycle.
type Config struct {
	DebugMode  bool
	Level      string
	Format     string // "json" or "console"
	OutputPath string // empty means stderr
	Categories map[string]bool
}

// Logger is a category logger. The zero Logger discards everything.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	base    *zap.Logger
	config  Config
	loggers = make(map[Category]*Logger)
)

// Initialize builds the root zap logger from cfg. With debug mode off no
// logger is built and every category is silent.
func Initialize(cfg Config) error {
	if !cfg.DebugMode {
		install(nil, cfg)
		return nil
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(defaultString(cfg.Level, "info"))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{defaultString(cfg.OutputPath, "stderr")}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	l, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	install(l, cfg)
	Get(CategoryBoot).Info("logging initialized: level=%s format=%s", level, defaultString(cfg.Format, "json"))
	return nil
}

// InitializeWithLogger installs an existing zap logger, enabling debug mode.
// Tests use it with zaptest/observer.
func InitializeWithLogger(l *zap.Logger, categories map[string]bool) {
	install(l, Config{DebugMode: true, Categories: categories})
}

func install(l *zap.Logger, cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
	base = l
	config = cfg
	loggers = make(map[Category]*Logger)
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Sync flushes buffered entries (call at shutdown).
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabled(category)
}

func categoryEnabled(category Category) bool {
	if !config.DebugMode || base == nil {
		return false
	}
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := &Logger{category: category}
	if categoryEnabled(category) {
		l.sugar = base.Named(string(category)).Sugar()
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar != nil {
		l.sugar.Debugf(format, args...)
	}
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar != nil {
		l.sugar.Infof(format, args...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar != nil {
		l.sugar.Warnf(format, args...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar != nil {
		l.sugar.Errorf(format, args...)
	}
}

// With returns a logger that attaches key-value pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	if l.sugar == nil {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }

// BootError logs an error to the boot category
func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

// Session logs to the session category
func Session(format string, args ...interface{}) { Get(CategorySession).Info(format, args...) }

// SessionDebug logs debug to the session category
func SessionDebug(format string, args ...interface{}) { Get(CategorySession).Debug(format, args...) }

// SessionWarn logs a warning to the session category
func SessionWarn(format string, args ...interface{}) { Get(CategorySession).Warn(format, args...) }

// Parser logs to the parser category
func Parser(format string, args ...interface{}) { Get(CategoryParser).Info(format, args...) }

// ParserDebug logs debug to the parser category
func ParserDebug(format string, args ...interface{}) { Get(CategoryParser).Debug(format, args...) }

// Ontology logs to the ontology category
func Ontology(format string, args ...interface{}) { Get(CategoryOntology).Info(format, args...) }

// OntologyDebug logs debug to the ontology category
func OntologyDebug(format string, args ...interface{}) { Get(CategoryOntology).Debug(format, args...) }

// Generator logs to the generator category
func Generator(format string, args ...interface{}) { Get(CategoryGenerator).Info(format, args...) }

// GeneratorDebug logs debug to the generator category
func GeneratorDebug(format string, args ...interface{}) {
	Get(CategoryGenerator).Debug(format, args...)
}

// Solver logs to the solver category
func Solver(format string, args ...interface{}) { Get(CategorySolver).Info(format, args...) }

// SolverDebug logs debug to the solver category
func SolverDebug(format string, args ...interface{}) { Get(CategorySolver).Debug(format, args...) }

// SolverWarn logs a warning to the solver category
func SolverWarn(format string, args ...interface{}) { Get(CategorySolver).Warn(format, args...) }

// Invention logs to the invention category
func Invention(format string, args ...interface{}) { Get(CategoryInvention).Info(format, args...) }

// InventionDebug logs debug to the invention category
func InventionDebug(format string, args ...interface{}) {
	Get(CategoryInvention).Debug(format, args...)
}

// Kernel logs to the kernel category
func Kernel(format string, args ...interface{}) { Get(CategoryKernel).Info(format, args...) }

// KernelDebug logs debug to the kernel category
func KernelDebug(format string, args ...interface{}) { Get(CategoryKernel).Debug(format, args...) }

// Watcher logs to the watcher category
func Watcher(format string, args ...interface{}) { Get(CategoryWatcher).Info(format, args...) }

// WatcherDebug logs debug to the watcher category
func WatcherDebug(format string, args ...interface{}) { Get(CategoryWatcher).Debug(format, args...) }

// WatcherError logs an error to the watcher category
func WatcherError(format string, args ...interface{}) { Get(CategoryWatcher).Error(format, args...) }

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
