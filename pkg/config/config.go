// Package config loads the user's typed ~/.scriptkit/config.ts, plus
// theme tokens. The .ts file is handed to the same child-discovery/spawn
// path scripts use — a one-shot transpile to JSON on stdout — then the
// JSON is relaxed-parsed with github.com/yosuke-furukawa/json5 so
// trailing commas and comments from hand edits survive.
package config

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
)

// Config is the typed subset of config.ts this core consumes. Fields the
// UI toolkit alone cares about (window chrome, design variants) are out
// of scope and not modeled here.
type Config struct {
	MaxTextContentLen int    `json:"maxTextContentLen"`
	RetentionDays     int    `json:"retentionDays"`
	FrecencyHalfLife  float64 `json:"frecencyHalfLifeDays"`
	PollIntervalMs    int    `json:"clipboardPollIntervalMs"`
	Theme             Theme  `json:"theme"`
}

// Theme carries color-scheme and opacity/vibrancy tokens as pure data —
// no rendering logic lives here; the out-of-scope UI toolkit is the only
// consumer.
type Theme struct {
	Scheme     string  `json:"scheme"` // "light" | "dark" | "auto"
	Opacity    float64 `json:"opacity"`
	Vibrancy   bool    `json:"vibrancy"`
	AccentHex  string  `json:"accentHex"`
}

// DefaultConfig is used when config.ts is absent or fails to parse
// (: "A corrupt config file falls back to the default config
// with an explanatory toast").
func DefaultConfig() Config {
	return Config{
		MaxTextContentLen: 100_000,
		RetentionDays:     30,
		FrecencyHalfLife:  7,
		PollIntervalMs:    500,
		Theme: Theme{
			Scheme:   "auto",
			Opacity:  1.0,
			Vibrancy: true,
		},
	}
}

// Transpiler runs a .ts config file through a child process and returns
// the JSON it printed on stdout. In production this is bun/node running
// a one-shot transpile-and-print script; tests supply a fake.
type Transpiler func(ctx context.Context, tsPath string) ([]byte, error)

// ExecTranspiler shells out to execPath (resolved via
// pkg/session.Discoverer) to transpile tsPath and print its default
// export as JSON on stdout.
func ExecTranspiler(execPath string) Transpiler {
	return func(ctx context.Context, tsPath string) ([]byte, error) {
		cmd := exec.CommandContext(ctx, execPath, "run", "--print", tsPath)
		var out bytes.Buffer
		cmd.Stdout = &out
		if err := cmd.Run(); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	}
}

// Load transpiles tsPath, relaxed-parses the JSON it prints, and
// decodes it into Config. On any failure it logs a Warn and returns
// DefaultConfig(), so a malformed config file never crashes startup.
func Load(ctx context.Context, tsPath string, transpile Transpiler, log zerolog.Logger) (Config, error) {
	raw, err := transpile(ctx, tsPath)
	if err != nil {
		log.Warn().Err(err).Str("path", tsPath).Msg("config: transpile failed, using defaults")
		return DefaultConfig(), err
	}

	var cfg Config
	if err := json5.Unmarshal(raw, &cfg); err != nil {
		log.Warn().Err(err).Str("path", tsPath).Msg("config: malformed config JSON, using defaults")
		return DefaultConfig(), err
	}
	cfg = fillDefaults(cfg)
	return cfg, nil
}

func fillDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.MaxTextContentLen <= 0 {
		cfg.MaxTextContentLen = def.MaxTextContentLen
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = def.RetentionDays
	}
	if cfg.FrecencyHalfLife <= 0 {
		cfg.FrecencyHalfLife = def.FrecencyHalfLife
	}
	if cfg.PollIntervalMs <= 0 {
		cfg.PollIntervalMs = def.PollIntervalMs
	}
	if cfg.Theme.Scheme == "" {
		cfg.Theme.Scheme = def.Theme.Scheme
	}
	if cfg.Theme.Opacity <= 0 {
		cfg.Theme.Opacity = def.Theme.Opacity
	}
	return cfg
}

// LoadWithTimeout wraps Load with a bounded deadline so a hung
// transpiler child can never block startup indefinitely.
func LoadWithTimeout(tsPath string, transpile Transpiler, log zerolog.Logger, timeout time.Duration) (Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return Load(ctx, tsPath, transpile, log)
}
