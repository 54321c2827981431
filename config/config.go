package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// EnvPrefix is prepended to environment overrides, e.g. FORECAST_SERVER_PORT
const EnvPrefix = "FORECAST"

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		Port            int           `mapstructure:"port"`
		ReadTimeout     time.Duration `mapstructure:"readTimeout"`
		WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
		ImageDir        string        `mapstructure:"imageDir"`
	} `mapstructure:"server"`
	Catalog struct {
		Source string `mapstructure:"source"`
	} `mapstructure:"catalog"`
	Forecast struct {
		BaseURL string        `mapstructure:"baseURL"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"forecast"`
	Render struct {
		Locale      string `mapstructure:"locale"`
		DateLayout  string `mapstructure:"dateLayout"`
		ImagePrefix string `mapstructure:"imagePrefix"`
	} `mapstructure:"render"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Load reads the embedded defaults, then merges the file at path (or a
// config.yml found in . or ./config when path is empty), then applies
// FORECAST_* environment variables.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
		return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("config")
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid server port %d", config.Server.Port)
	}
	return config, nil
}
