package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := Config{Name: "app"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Container.GracefulTimeout != 30*time.Second {
			t.Errorf("expected 30s graceful timeout, got %v", cfg.Container.GracefulTimeout)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := Config{Name: "app", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})

	t.Run("observability defaults only when enabled", func(t *testing.T) {
		cfg := Config{Name: "app"}
		cfg.ApplyDefaults()
		if cfg.Observability.Endpoint != "" {
			t.Error("expected no endpoint default while disabled")
		}

		cfg = Config{Name: "app", Observability: ObservabilityConfig{Enabled: true}}
		cfg.ApplyDefaults()
		if cfg.Observability.Endpoint != "localhost:4318" {
			t.Errorf("unexpected endpoint %q", cfg.Observability.Endpoint)
		}
		if cfg.Observability.SampleRate != 1.0 {
			t.Errorf("unexpected sample rate %v", cfg.Observability.SampleRate)
		}
		if cfg.Observability.Interval != 15*time.Second {
			t.Errorf("unexpected interval %v", cfg.Observability.Interval)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{Name: "app", Environment: "staging"}
		cfg.ApplyDefaults()
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		cfg := valid()
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		cfg := valid()
		cfg.Name = ""
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "name: is required") {
			t.Errorf("expected name failure, got %v", err)
		}
	})

	t.Run("invalid environment", func(t *testing.T) {
		cfg := valid()
		cfg.Environment = "qa"
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "environment") {
			t.Errorf("expected environment failure, got %v", err)
		}
	})

	t.Run("observability enabled without endpoint", func(t *testing.T) {
		cfg := valid()
		cfg.Observability.Enabled = true
		cfg.Observability.Interval = time.Second
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "observability.endpoint") {
			t.Errorf("expected endpoint failure, got %v", err)
		}
	})

	t.Run("non-positive graceful timeout", func(t *testing.T) {
		cfg := valid()
		cfg.Container.GracefulTimeout = 0
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "graceful_timeout") {
			t.Errorf("expected graceful_timeout failure, got %v", err)
		}
	})
}

type appConfig struct {
	Config `yaml:",inline" mapstructure:",squash"`
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
name: test-app
environment: staging
version: "1.2.0"
logging:
  level: debug
  format: json
container:
  strict: true
  graceful_timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var cfg appConfig
	if err := Load("test-app", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "test-app" || cfg.Environment != "staging" || cfg.Version != "1.2.0" {
		t.Errorf("unexpected base config: %+v", cfg.Config)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
	if !cfg.Container.Strict || cfg.Container.GracefulTimeout != 5*time.Second {
		t.Errorf("unexpected container config: %+v", cfg.Container)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DIKIT_LOGGING_LEVEL", "warn")
	t.Setenv("DIKIT_CONTAINER_STRICT", "true")

	var cfg appConfig
	if err := Load("env-app", &cfg, WithConfigFile("/nonexistent"), WithEnvFile("/nonexistent")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "env-app" {
		t.Errorf("expected the app name fallback, got %q", cfg.Name)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected env override for logging level, got %q", cfg.Logging.Level)
	}
	if !cfg.Container.Strict {
		t.Error("expected env override for container.strict")
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("DIKIT_LOGGING_FORMAT=json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var cfg appConfig
	if err := Load("dotenv-app", &cfg, WithConfigFile("/nonexistent"), WithEnvFile(envPath)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected the .env value, got %q", cfg.Logging.Format)
	}
	t.Cleanup(func() { os.Unsetenv("DIKIT_LOGGING_FORMAT") })
}

func TestLoadValidationFailure(t *testing.T) {
	t.Setenv("DIKIT_ENVIRONMENT", "qa")
	var cfg appConfig
	err := Load("bad-app", &cfg, WithConfigFile("/nonexistent"), WithEnvFile("/nonexistent"))
	if err == nil {
		t.Fatal("expected a validation failure")
	}
	if !strings.Contains(err.Error(), "environment") {
		t.Errorf("expected an environment failure, got %v", err)
	}
}

type fakeFS struct {
	files map[string]bool
}

func (f fakeFS) Exists(path string) bool { return f.files[path] }
func (f fakeFS) LoadEnv(string) error    { return nil }

func TestFindConfigFileSearchOrder(t *testing.T) {
	fs := fakeFS{files: map[string]bool{
		"./config.yml":           true,
		"./cmd/myapp/config.yml": true,
	}}
	if got := findConfigFile(fs, "myapp"); got != "./cmd/myapp/config.yml" {
		t.Errorf("expected the cmd path to win, got %q", got)
	}

	fs = fakeFS{files: map[string]bool{"./config.yml": true}}
	if got := findConfigFile(fs, "myapp"); got != "./config.yml" {
		t.Errorf("expected the root fallback, got %q", got)
	}

	if got := findConfigFile(fakeFS{}, "myapp"); got != "" {
		t.Errorf("expected empty for no files, got %q", got)
	}
}

func TestFindEnvFilePrefersAppSpecific(t *testing.T) {
	fs := fakeFS{files: map[string]bool{
		"./.env":       true,
		"./.env.myapp": true,
	}}
	if got := findEnvFile(fs, "myapp"); got != "./.env.myapp" {
		t.Errorf("expected the app-specific env file, got %q", got)
	}
}
