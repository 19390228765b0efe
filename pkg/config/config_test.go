package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadParsesJSON5(t *testing.T) {
	transpile := func(ctx context.Context, path string) ([]byte, error) {
		return []byte(`{
			maxTextContentLen: 50000,
			retentionDays: 14,
			theme: { scheme: "dark", opacity: 0.9, },
		}`), nil
	}
	cfg, err := Load(context.Background(), "config.ts", transpile, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxTextContentLen != 50000 || cfg.RetentionDays != 14 || cfg.Theme.Scheme != "dark" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.FrecencyHalfLife != DefaultConfig().FrecencyHalfLife {
		t.Errorf("unset field should fall back to default: %+v", cfg)
	}
}

func TestLoadFallsBackOnTranspileFailure(t *testing.T) {
	transpile := func(ctx context.Context, path string) ([]byte, error) {
		return nil, errors.New("transpiler not found")
	}
	cfg, err := Load(context.Background(), "config.ts", transpile, zerolog.Nop())
	if err == nil {
		t.Errorf("expected a non-nil reason")
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want DefaultConfig()", cfg)
	}
}

func TestLoadFallsBackOnMalformedJSON(t *testing.T) {
	transpile := func(ctx context.Context, path string) ([]byte, error) {
		return []byte("not json at all {{{"), nil
	}
	cfg, err := Load(context.Background(), "config.ts", transpile, zerolog.Nop())
	if err == nil {
		t.Errorf("expected a non-nil reason")
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want DefaultConfig()", cfg)
	}
}

func TestLoadWithTimeoutRespectsDeadline(t *testing.T) {
	transpile := func(ctx context.Context, path string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	cfg, err := LoadWithTimeout("config.ts", transpile, zerolog.Nop(), 10*time.Millisecond)
	if err == nil {
		t.Errorf("expected timeout error")
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v", cfg)
	}
}
