package config

import (
	"os"
	"path/filepath"
	"testing"

	"paper-analytics/internal/appdirs"
)

func setupHomeTestEnv(t *testing.T, home string) {
	t.Helper()

	old := resolveConfigPath
	oldConf := Conf
	t.Cleanup(func() {
		resolveConfigPath = old
		Conf = oldConf
	})
	t.Setenv(appdirs.HomeEnv, home)
}

func TestSaveConfigCreatesParentDir(t *testing.T) {
	tmp := t.TempDir()
	setupHomeTestEnv(t, tmp)

	// SaveConfig writes whatever Conf currently contains.
	Conf = Config{}

	if err := SaveConfig(); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	p, err := ResolveConfigPath()
	if err != nil {
		t.Fatalf("ResolveConfigPath: %v", err)
	}
	if p != filepath.Join(tmp, "config", "config.toml") {
		t.Fatalf("ResolveConfigPath() = %q", p)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("expected config file at %s: %v", p, err)
	}
}

func TestSaveThenLoadRoundTripsServer(t *testing.T) {
	tmp := t.TempDir()
	setupHomeTestEnv(t, tmp)

	Conf = Config{
		Server: Server{
			Host: "0.0.0.0",
			Port: 9999,
		},
	}
	if err := SaveConfig(); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	Conf = Config{}

	created, err := LoadOrCreateConfig()
	if err != nil {
		t.Fatalf("LoadOrCreateConfig: %v", err)
	}
	if created {
		t.Fatal("expected created=false when config file exists")
	}
	if Conf.Server.Host != "0.0.0.0" {
		t.Errorf("expected loaded Server.Host=0.0.0.0, got %s", Conf.Server.Host)
	}
	if Conf.Server.Port != 9999 {
		t.Errorf("expected loaded Server.Port=9999, got %d", Conf.Server.Port)
	}
	// zero values written by SaveConfig fall back to defaults on load
	if Conf.Polling.DiscoveryIntervalSec != 2 {
		t.Errorf("expected default discovery interval, got %d", Conf.Polling.DiscoveryIntervalSec)
	}
}

func TestUseConfigFile(t *testing.T) {
	setupHomeTestEnv(t, t.TempDir())

	target := filepath.Join(t.TempDir(), "custom.toml")
	UseConfigFile(target)

	p, err := ResolveConfigPath()
	if err != nil {
		t.Fatalf("ResolveConfigPath: %v", err)
	}
	if p != target {
		t.Fatalf("ResolveConfigPath() = %q, want %q", p, target)
	}
}

func TestUseConfigFileEmptyRestoresDefault(t *testing.T) {
	home := t.TempDir()
	setupHomeTestEnv(t, home)

	UseConfigFile(filepath.Join(t.TempDir(), "custom.toml"))
	UseConfigFile("")

	p, err := ResolveConfigPath()
	if err != nil {
		t.Fatalf("ResolveConfigPath: %v", err)
	}
	if p != filepath.Join(home, "config", "config.toml") {
		t.Fatalf("ResolveConfigPath() = %q", p)
	}
}
