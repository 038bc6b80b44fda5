package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"paper-analytics/internal/appdirs"
	"paper-analytics/log"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Workflow points at the remote workflow engine. All three endpoints share the
// same bearer token.
type Workflow struct {
	DiscoveryUrl      string `toml:"discovery_url"`
	ExtractionUrl     string `toml:"extraction_url"`
	StatusUrl         string `toml:"status_url"`
	ApiToken          string `toml:"api_token"`
	UserId            string `toml:"user_id"`
	RequestTimeoutSec int    `toml:"request_timeout_sec"`
}

// Polling holds the tick period and the expected-duration window per phase.
type Polling struct {
	DiscoveryIntervalSec  int `toml:"discovery_interval_sec"`
	ExtractionIntervalSec int `toml:"extraction_interval_sec"`
	DiscoveryWindowSec    int `toml:"discovery_window_sec"`
	ExtractionWindowSec   int `toml:"extraction_window_sec"`
}

type Session struct {
	MaxSessions int `toml:"max_sessions"`
}

type Config struct {
	Server   Server   `toml:"server"`
	Workflow Workflow `toml:"workflow"`
	Polling  Polling  `toml:"polling"`
	Session  Session  `toml:"session"`
}

var Conf = defaultConfig()

var resolveConfigPath = appdirsConfigPath

func appdirsConfigPath() (string, error) {
	dirs, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return dirs.ConfigFile, nil
}

func defaultConfig() Config {
	return Config{
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Workflow: Workflow{
			RequestTimeoutSec: 30,
		},
		Polling: Polling{
			DiscoveryIntervalSec:  2,
			ExtractionIntervalSec: 10,
			DiscoveryWindowSec:    30,
			ExtractionWindowSec:   300,
		},
		Session: Session{
			MaxSessions: 64,
		},
	}
}

// applyDefaults fills zero values left by a partial config file.
func applyDefaults(c *Config) {
	def := defaultConfig()
	if strings.TrimSpace(c.Server.Host) == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port <= 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Workflow.RequestTimeoutSec <= 0 {
		c.Workflow.RequestTimeoutSec = def.Workflow.RequestTimeoutSec
	}
	if c.Polling.DiscoveryIntervalSec <= 0 {
		c.Polling.DiscoveryIntervalSec = def.Polling.DiscoveryIntervalSec
	}
	if c.Polling.ExtractionIntervalSec <= 0 {
		c.Polling.ExtractionIntervalSec = def.Polling.ExtractionIntervalSec
	}
	if c.Polling.DiscoveryWindowSec <= 0 {
		c.Polling.DiscoveryWindowSec = def.Polling.DiscoveryWindowSec
	}
	if c.Polling.ExtractionWindowSec <= 0 {
		c.Polling.ExtractionWindowSec = def.Polling.ExtractionWindowSec
	}
	if c.Session.MaxSessions <= 0 {
		c.Session.MaxSessions = def.Session.MaxSessions
	}
}

func ResolveConfigPath() (string, error) {
	return resolveConfigPath()
}

// UseConfigFile pins the config location, e.g. from a command line flag. An
// empty path restores the default location.
func UseConfigFile(path string) {
	if path == "" {
		resolveConfigPath = appdirsConfigPath
		return
	}
	resolveConfigPath = func() (string, error) {
		return filepath.Abs(path)
	}
}

// LoadOrCreateConfig loads the config file into Conf, writing a default file
// first when none exists. created reports whether the file was generated.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := ResolveConfigPath()
	if err != nil {
		return false, fmt.Errorf("resolve config path: %w", err)
	}

	if _, err = os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, err
		}
		return true, nil
	} else if err != nil {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	loaded := defaultConfig()
	if _, err = toml.DecodeFile(configPath, &loaded); err != nil {
		return false, fmt.Errorf("decode config file %s: %w", configPath, err)
	}
	applyDefaults(&loaded)
	Conf = loaded
	return false, nil
}

// LoadConfig is the entry point used by main. It reports false when the
// process should not continue.
func LoadConfig() bool {
	created, err := LoadOrCreateConfig()
	if err != nil {
		log.GetLogger().Error("failed to load config", zap.Error(err))
		return false
	}
	if created {
		configPath, _ := ResolveConfigPath()
		log.GetLogger().Info("default config written, fill in the workflow section and restart",
			zap.String("path", configPath))
		return false
	}
	return true
}

func SaveConfig() error {
	configPath, err := ResolveConfigPath()
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	if err = toml.NewEncoder(&buf).Encode(Conf); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err = os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func CheckConfig() error {
	w := Conf.Workflow
	if strings.TrimSpace(w.DiscoveryUrl) == "" {
		return errors.New("workflow.discovery_url is required")
	}
	if strings.TrimSpace(w.ExtractionUrl) == "" {
		return errors.New("workflow.extraction_url is required")
	}
	if strings.TrimSpace(w.StatusUrl) == "" {
		return errors.New("workflow.status_url is required")
	}
	if strings.TrimSpace(w.ApiToken) == "" {
		return errors.New("workflow.api_token is required")
	}
	p := Conf.Polling
	if p.DiscoveryIntervalSec <= 0 || p.ExtractionIntervalSec <= 0 {
		return errors.New("polling intervals must be positive")
	}
	if p.DiscoveryWindowSec <= 0 || p.ExtractionWindowSec <= 0 {
		return errors.New("polling windows must be positive")
	}
	return nil
}

func (p Polling) DiscoveryInterval() time.Duration {
	return time.Duration(p.DiscoveryIntervalSec) * time.Second
}

func (p Polling) ExtractionInterval() time.Duration {
	return time.Duration(p.ExtractionIntervalSec) * time.Second
}

func (p Polling) DiscoveryWindow() time.Duration {
	return time.Duration(p.DiscoveryWindowSec) * time.Second
}

func (p Polling) ExtractionWindow() time.Duration {
	return time.Duration(p.ExtractionWindowSec) * time.Second
}

func (w Workflow) RequestTimeout() time.Duration {
	return time.Duration(w.RequestTimeoutSec) * time.Second
}
