package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is the prefix of environment variables the loader binds, e.g.
// DIKIT_LOGGING_LEVEL maps to the logging.level key.
const envPrefix = "DIKIT"

// FileSystem abstracts the file operations the loader performs, so tests
// can run against a fake tree.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem with actual file operations.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Settings is satisfied by any struct embedding Config.
type Settings interface {
	GetConfig() *Config
	ApplyDefaults()
	Validate() error
}

// LoaderOptions holds dependencies and optional file overrides.
type LoaderOptions struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderOptions)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(o *LoaderOptions) { o.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path, skipping the search.
func WithConfigFile(path string) LoaderOption {
	return func(o *LoaderOptions) { o.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path, skipping the search.
func WithEnvFile(path string) LoaderOption {
	return func(o *LoaderOptions) { o.EnvFile = path }
}

// Load populates cfg for the named application. Values come from, in
// increasing precedence: the config file, a .env file, and DIKIT_-prefixed
// environment variables. After unmarshalling it applies defaults and
// validates the result.
func Load(appName string, cfg Settings, opts ...LoaderOption) error {
	var o LoaderOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.FileSystem == nil {
		o.FileSystem = RealFileSystem{}
	}
	if o.ConfigFile == "" {
		o.ConfigFile = findConfigFile(o.FileSystem, appName)
	}
	if o.EnvFile == "" {
		o.EnvFile = findEnvFile(o.FileSystem, appName)
	}

	v := viper.New()
	if o.ConfigFile != "" && o.FileSystem.Exists(o.ConfigFile) {
		v.SetConfigFile(o.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", o.ConfigFile, err)
		}
	}

	if o.EnvFile != "" && o.FileSystem.Exists(o.EnvFile) {
		if err := o.FileSystem.LoadEnv(o.EnvFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", o.EnvFile, err)
		}
	}
	bindEnv(v)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshalling config for %s: %w", appName, err)
	}
	if base := cfg.GetConfig(); base.Name == "" {
		base.Name = appName
	}

	cfg.ApplyDefaults()
	return cfg.Validate()
}

// findConfigFile searches standard locations for config.yml.
func findConfigFile(fs FileSystem, appName string) string {
	searchPaths := []string{
		fmt.Sprintf("./cmd/%s/config.yml", appName),
		fmt.Sprintf("../cmd/%s/config.yml", appName),
		"./config/config.yml",
		"../config/config.yml",
		"./config.yml",
	}
	for _, path := range searchPaths {
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

// findEnvFile searches standard locations for a .env file.
func findEnvFile(fs FileSystem, appName string) string {
	for _, name := range []string{fmt.Sprintf(".env.%s", appName), ".env"} {
		for _, dir := range []string{".", "..", "./config"} {
			path := dir + "/" + name
			if fs.Exists(path) {
				return path
			}
		}
	}
	return ""
}

// bindEnv injects DIKIT_-prefixed environment variables into viper. Viper's
// AutomaticEnv does not surface env-only keys through Unmarshal, so the
// loader sets them explicitly. An underscore in the variable name can mean
// either a nesting boundary or part of a key, so every split variant is
// set; the deepest matching struct field wins during unmarshalling.
func bindEnv(v *viper.Viper) {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], envPrefix+"_") {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(pair[0], envPrefix+"_"))
		for _, variant := range keyVariants(key) {
			v.Set(variant, pair[1])
		}
	}
}

// keyVariants expands an underscore-separated key into the candidate viper
// keys it may address, e.g. logging_no_color yields logging_no_color,
// logging.no.color and logging.no_color.
func keyVariants(key string) []string {
	parts := strings.Split(key, "_")
	if len(parts) == 1 {
		return []string{key}
	}
	variants := []string{key, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants,
			strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return variants
}
