package config

import (
	"errors"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config defines the app configuration.
type Config struct {
	Server struct {
		Port int    `yaml:"port" env:"PORT" env-default:"4000"`
		Env  string `yaml:"env" env:"ENV" env-default:"development"`
	} `yaml:"server"`
	Database struct {
		DSN          string `yaml:"dsn" env:"DSN"`
		MaxOpenConns int    `yaml:"max_open_conns" env:"MAXOPENCONNS" env-default:"25"`
		MaxIdleConns int    `yaml:"max_idle_conns" env:"MAXIDLECONNS" env-default:"25"`
		MaxIdleTime  string `yaml:"max_idle_time" env:"MAXIDLETIME" env-default:"15m"`
	} `yaml:"database"`
	Limiter struct {
		RPS     float64 `yaml:"rps" env:"LIMITERRPS" env-default:"4"`
		Burst   int     `yaml:"burst" env:"LIMITERBURST" env-default:"8"`
		Enabled bool    `yaml:"enabled" env:"LIMITERENABLED" env-default:"true"`
	} `yaml:"limiter"`
	Cors struct {
		TrustedOrigins []string `yaml:"trusted_origins" env:"TRUSTEDORIGINS"`
	} `yaml:"cors"`
	Metrics struct {
		Enabled bool `yaml:"enabled" env:"METRICSENABLED"`
	} `yaml:"metrics"`
	BasicAuth struct {
		Username string `yaml:"username" env:"BASIC_AUTH_USERNAME"`
		Password string `yaml:"password" env:"BASIC_AUTH_PASSWORD"`
	} `yaml:"basic_auth"`
}

// Load reads configuration from a YAML file, falling back to environment
// variables for anything the file does not set. A missing file is not an
// error: the environment alone is enough to run the server.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		err := cleanenv.ReadEnv(&cfg)
		return cfg, err
	}
	err := cleanenv.ReadConfig(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		err = cleanenv.ReadEnv(&cfg)
	}
	return cfg, err
}
