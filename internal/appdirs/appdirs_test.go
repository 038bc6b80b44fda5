package appdirs

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestResolveLayouts(t *testing.T) {
	exePath := filepath.Join("/", "apps", "paper-analytics", "paper-analytics")
	portableDataDir := filepath.Join(filepath.Dir(exePath), "data")
	configRoot := filepath.Join("/", "home", "alice", ".config")

	testCases := []struct {
		name string
		goos string
		env  map[string]string
		want Paths
	}{
		{
			name: "home env wins over everything",
			goos: "windows",
			env:  map[string]string{HomeEnv: "/srv/pa", PortableEnv: "true"},
			want: Paths{
				ConfigDir:  filepath.Join("/srv/pa", "config"),
				ConfigFile: filepath.Join("/srv/pa", "config", "config.toml"),
				LogDir:     filepath.Join("/srv/pa", "logs"),
			},
		},
		{
			name: "portable layout next to executable",
			goos: "linux",
			env:  map[string]string{PortableEnv: "1"},
			want: Paths{
				Portable:   true,
				ConfigDir:  filepath.Join(portableDataDir, "config"),
				ConfigFile: filepath.Join(portableDataDir, "config", "config.toml"),
				LogDir:     filepath.Join(portableDataDir, "logs"),
			},
		},
		{
			name: "windows uses user config dir",
			goos: "windows",
			want: Paths{
				ConfigDir:  filepath.Join(configRoot, appName, "config"),
				ConfigFile: filepath.Join(configRoot, appName, "config", "config.toml"),
				LogDir:     filepath.Join(configRoot, appName, "logs"),
			},
		},
		{
			name: "non windows uses working directory",
			goos: "darwin",
			want: Paths{
				ConfigDir:  "config",
				ConfigFile: filepath.Join("config", "config.toml"),
				LogDir:     ".",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolve(resolveDeps{
				goos:          tc.goos,
				getenv:        func(k string) string { return tc.env[k] },
				executable:    func() (string, error) { return exePath, nil },
				userConfigDir: func() (string, error) { return configRoot, nil },
			})
			if err != nil {
				t.Fatalf("resolve() returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("resolve() = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	t.Run("executable lookup fails", func(t *testing.T) {
		_, err := resolve(resolveDeps{
			goos:       "linux",
			getenv:     func(k string) string { return map[string]string{PortableEnv: "true"}[k] },
			executable: func() (string, error) { return "", errors.New("no exe") },
		})
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("empty user config dir", func(t *testing.T) {
		_, err := resolve(resolveDeps{
			goos:          "windows",
			getenv:        func(string) string { return "" },
			userConfigDir: func() (string, error) { return "  ", nil },
		})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}
