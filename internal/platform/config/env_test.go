package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Repeats int `env:"HFPSA_TEST_REPEATS" envDefault:"500"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Repeats != 500 {
		t.Fatalf("expected default repeats 500, got %d", cfg.Repeats)
	}
}

func TestParseEnvOverride(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("HFPSA_TEST_REPEATS", "10000")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Repeats != 10000 {
		t.Fatalf("expected repeats 10000, got %d", cfg.Repeats)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("HFPSA_TEST_REPEATS", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
