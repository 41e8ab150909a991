// Package logging owns the process logger shared by the arena, kernel and
// proxy packages. It is disabled until Configure is called or one of the
// environment overrides is set.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "PROTOARENA_LOG_LEVEL"
	EnvLogNoColor = "PROTOARENA_LOG_NOCOLOR"
)

// Config selects how the process logger writes.
type Config struct {
	Level   string
	Console bool
	NoColor bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// state is one Configure generation: the root logger and the component
// loggers derived from it.
type state struct {
	root       zerolog.Logger
	components sync.Map // string -> zerolog.Logger
}

var current atomic.Pointer[state]

func init() {
	Configure(Config{Level: "disabled", Console: true})
}

// Configure replaces the process logger. Environment overrides win over cfg.
func Configure(cfg Config) {
	applyEnvOverrides(&cfg)
	lvl, ok := parseLevel(cfg.Level)
	if !ok {
		lvl = zerolog.InfoLevel
	}
	if lvl == zerolog.Disabled {
		current.Store(&state{root: zerolog.Nop()})
		return
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Console {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		}
	}
	logger := zerolog.New(out).Level(lvl).With().Timestamp().Str("app", "protoarena").Logger()
	current.Store(&state{root: logger})
}

// L returns the process logger.
func L() *zerolog.Logger {
	return &current.Load().root
}

// For returns a child logger tagged with component. Children are built once
// per Configure; while logging is disabled the no-op root is returned as is.
func For(component string) zerolog.Logger {
	s := current.Load()
	if s.root.GetLevel() == zerolog.Disabled {
		return s.root
	}
	if l, ok := s.components.Load(component); ok {
		return l.(zerolog.Logger)
	}
	l, _ := s.components.LoadOrStore(component, s.root.With().Str("component", component).Logger())
	return l.(zerolog.Logger)
}

// ParseLevel reports whether raw names a known level.
func ParseLevel(raw string) (zerolog.Level, bool) {
	return parseLevel(raw)
}

func applyEnvOverrides(cfg *Config) {
	if raw := os.Getenv(EnvLogLevel); raw != "" {
		if _, ok := parseLevel(raw); ok {
			cfg.Level = raw
		}
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
