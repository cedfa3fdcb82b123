// Package config provides configuration loading and validation for dikit
// applications.
//
// It uses Viper to load configuration from files and environment variables
// and godotenv to source .env files. Applications embed [Config] in their
// own struct and call [Load]:
//
//	type AppConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	}
//
//	var cfg AppConfig
//	err := config.Load("my-app", &cfg)
//
// Environment variables override file values using the DIKIT_ prefix with
// underscore-separated paths (e.g. DIKIT_LOGGING_LEVEL).
package config
