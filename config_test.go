package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"DEBUG", "SERVER_PORT", "STORE_BACKEND", "DATA_FILE", "WRITE_RATE", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := loadConfig(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Debug || cfg.ServerPort != ":8080" || cfg.StoreBackend != storeFile {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.DataFile != "/var/www/data/sensor.json" {
		t.Fatalf("unexpected data file %q", cfg.DataFile)
	}
	if cfg.WriteRate != 0 || cfg.ShutdownTimeout != 10*time.Second || cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	t.Setenv("DEBUG", "1")
	t.Setenv("DATA_FILE", "/tmp/env.json")
	t.Setenv("WRITE_RATE", "0.5")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := loadConfig([]string{"--data-file", "/tmp/flag.json", "-l", "127.0.0.1:5000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Debug {
		t.Fatal("expected debug from env")
	}
	if cfg.DataFile != "/tmp/flag.json" {
		t.Fatalf("expected flag to win over env, got %q", cfg.DataFile)
	}
	if cfg.ServerPort != "127.0.0.1:5000" {
		t.Fatalf("unexpected listen address %q", cfg.ServerPort)
	}
	if cfg.WriteRate != 0.5 || cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected env values %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := map[string][]string{
		"unknown backend":   {"--store", "sqlite"},
		"empty data file":   {"--data-file", ""},
		"empty redis key":   {"--store", "redis", "--redis-key", ""},
		"non-positive body": {"--max-body", "0"},
		"unknown flag":      {"--nope"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := loadConfig(args); err == nil {
				t.Fatalf("expected error for %v", args)
			}
		})
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	newLoggerTo(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be suppressed, got %s", buf.String())
	}
	newLoggerTo(&buf, true).Debug("shown")
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Fatalf("expected debug entry, got %s", buf.String())
	}
}
