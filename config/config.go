// Package config loads the runtime options of the arena, the wire decoder
// and the logger from TOML, and installs them process-wide.
//
// A file only needs the keys it changes:
//
//	[arena]
//	chunk_size = 4096
//
//	[decode]
//	max_depth = 64
//	max_message_bytes = 1048576
//	discard_unknown = false
//
//	[log]
//	level = "debug"
//	console = true
//	no_color = true
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pavanmanishd/protoarena/arena"
	"github.com/pavanmanishd/protoarena/internal/logging"
	"github.com/pavanmanishd/protoarena/proto"
	"github.com/pavanmanishd/protoarena/upb"
)

// EnvConfigPath names a TOML file read by FromEnv.
const EnvConfigPath = "PROTOARENA_CONFIG"

const (
	DefaultMaxDepth        = upb.DefaultMaxDepth
	DefaultMaxMessageBytes = 64 << 20
)

var ErrInvalid = errors.New("config: invalid options")

type Arena struct {
	ChunkSize int
}

type Decode struct {
	MaxDepth        int
	MaxMessageBytes int
	DiscardUnknown  bool
}

type Log struct {
	Level   string
	Console bool
	NoColor bool
	// Output defaults to os.Stderr. Files cannot set it.
	Output io.Writer
}

// Options is the full set of runtime knobs.
type Options struct {
	Arena  Arena
	Decode Decode
	Log    Log
}

// Default returns the options in effect when nothing is configured.
func Default() Options {
	return Options{
		Arena: Arena{ChunkSize: arena.DefaultChunkSize},
		Decode: Decode{
			MaxDepth:        DefaultMaxDepth,
			MaxMessageBytes: DefaultMaxMessageBytes,
		},
		Log: Log{Level: "disabled", Console: true},
	}
}

type fileConfig struct {
	Arena struct {
		ChunkSize int `toml:"chunk_size"`
	} `toml:"arena"`
	Decode struct {
		MaxDepth        int  `toml:"max_depth"`
		MaxMessageBytes int  `toml:"max_message_bytes"`
		DiscardUnknown  bool `toml:"discard_unknown"`
	} `toml:"decode"`
	Log struct {
		Level   string `toml:"level"`
		Console bool   `toml:"console"`
		NoColor bool   `toml:"no_color"`
	} `toml:"log"`
}

// Load reads path over the defaults.
func Load(path string) (Options, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Options{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return merge(raw, meta)
}

// Parse reads TOML text over the defaults.
func Parse(data []byte) (Options, error) {
	var raw fileConfig
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Options{}, fmt.Errorf("parse config: %w", err)
	}
	return merge(raw, meta)
}

// FromEnv loads the file named by PROTOARENA_CONFIG, or returns the defaults
// when it is unset.
func FromEnv() (Options, error) {
	path := strings.TrimSpace(os.Getenv(EnvConfigPath))
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func merge(raw fileConfig, meta toml.MetaData) (Options, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Options{}, fmt.Errorf("%w: unknown key %s", ErrInvalid, undecoded[0])
	}

	opts := Default()
	if meta.IsDefined("arena", "chunk_size") {
		opts.Arena.ChunkSize = raw.Arena.ChunkSize
	}
	if meta.IsDefined("decode", "max_depth") {
		opts.Decode.MaxDepth = raw.Decode.MaxDepth
	}
	if meta.IsDefined("decode", "max_message_bytes") {
		opts.Decode.MaxMessageBytes = raw.Decode.MaxMessageBytes
	}
	if meta.IsDefined("decode", "discard_unknown") {
		opts.Decode.DiscardUnknown = raw.Decode.DiscardUnknown
	}
	if meta.IsDefined("log", "level") {
		opts.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "console") {
		opts.Log.Console = raw.Log.Console
	}
	if meta.IsDefined("log", "no_color") {
		opts.Log.NoColor = raw.Log.NoColor
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate rejects options Apply could not install.
func (o Options) Validate() error {
	if o.Arena.ChunkSize <= 0 {
		return fmt.Errorf("%w: arena.chunk_size must be positive, got %d", ErrInvalid, o.Arena.ChunkSize)
	}
	if o.Decode.MaxDepth <= 0 {
		return fmt.Errorf("%w: decode.max_depth must be positive, got %d", ErrInvalid, o.Decode.MaxDepth)
	}
	if o.Decode.MaxMessageBytes < 0 {
		return fmt.Errorf("%w: decode.max_message_bytes must not be negative, got %d", ErrInvalid, o.Decode.MaxMessageBytes)
	}
	if _, ok := logging.ParseLevel(o.Log.Level); !ok {
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalid, o.Log.Level)
	}
	return nil
}

// DecodeOptions converts the decode section for upb.Decode.
func (o Options) DecodeOptions() upb.DecodeOptions {
	return upb.DecodeOptions{
		MaxDepth:        o.Decode.MaxDepth,
		MaxMessageBytes: o.Decode.MaxMessageBytes,
		DiscardUnknown:  o.Decode.DiscardUnknown,
	}
}

// Apply validates opts and installs them. Arenas and messages created
// earlier keep their chunk size.
func Apply(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	logging.Configure(logging.Config{
		Level:   opts.Log.Level,
		Console: opts.Log.Console,
		NoColor: opts.Log.NoColor,
		Output:  opts.Log.Output,
	})
	arena.SetDefaultChunkSize(opts.Arena.ChunkSize)
	proto.SetDecodeOptions(opts.DecodeOptions())

	l := logging.For("config")
	l.Debug().
		Int("chunk_size", opts.Arena.ChunkSize).
		Int("max_depth", opts.Decode.MaxDepth).
		Int("max_message_bytes", opts.Decode.MaxMessageBytes).
		Bool("discard_unknown", opts.Decode.DiscardUnknown).
		Msg("options applied")
	return nil
}
