package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 || cfg.PingPeriod != 54*time.Second {
		t.Errorf("server defaults = %+v", cfg)
	}
	if cfg.Office.Thresholds.Connect != 120 || cfg.Office.Thresholds.Disconnect != 150 {
		t.Errorf("thresholds = %+v", cfg.Office.Thresholds)
	}
	if cfg.Office.World.W != 2000 || cfg.Office.Spawn.X != 1400 {
		t.Errorf("office = %+v", cfg.Office)
	}
	if len(cfg.Office.Rooms) != 2 || len(cfg.Office.Zones) != 2 {
		t.Errorf("layout tables = %d rooms, %d zones", len(cfg.Office.Rooms), len(cfg.Office.Zones))
	}
	if cfg.Client.ReconcilePeriod != 1500*time.Millisecond || cfg.Client.GainPeriod != 200*time.Millisecond {
		t.Errorf("client periods = %+v", cfg.Client)
	}
}

func TestLoadFile(t *testing.T) {
	dir := inTempDir(t)
	t.Setenv("CONFIG_ENV", "test")
	yaml := `
port: 9090
office:
  thresholds:
    connect: 80
    disconnect: 100
  rooms:
    - id: M
      name: Meeting
      capacity: 2
      bounds: {x: 0, y: 0, w: 100, h: 100}
  zones:
    - label: quiet
      kind: quiet
      bounds: {x: 500, y: 0, w: 100, h: 100}
    - label: everywhere
      kind: open
      catch_all: true
`
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9090 || cfg.Office.Thresholds.Connect != 80 {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Office.Rooms) != 1 || cfg.Office.Rooms[0].Capacity != 2 || cfg.Office.Rooms[0].Bounds.W != 100 {
		t.Errorf("rooms = %+v", cfg.Office.Rooms)
	}
	if len(cfg.Office.Zones) != 2 || !cfg.Office.Zones[1].CatchAll || cfg.Office.Zones[0].Kind != "quiet" {
		t.Errorf("zones = %+v", cfg.Office.Zones)
	}
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	inTempDir(t)
	t.Setenv("CONFIG_ENV", "missing")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Office.Thresholds.Disconnect = cfg.Office.Thresholds.Connect
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected threshold error")
	}
}
