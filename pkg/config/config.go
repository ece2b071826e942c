// Package config loads krampus settings from a TOML file.
//
// The file is optional. Values it sets are defaults that command-line flags
// override. The SMTP password may also come from the KRAMPUS_SMTP_PASSWORD
// environment variable, which wins over the file.
//
//	[mail]
//	sender  = "santa@example.com"
//	subject = "Pige de Noël"
//
//	[smtp]
//	host     = "smtp.example.com"
//	port     = 587
//	username = "santa@example.com"
//
//	[draw]
//	max_attempts           = 5000
//	themes_per_participant = 2
//	template               = "fr"
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/krampus/pkg/errors"
)

// PasswordEnv is the environment variable holding the SMTP password.
const PasswordEnv = "KRAMPUS_SMTP_PASSWORD"

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Config holds all file-configurable settings.
type Config struct {
	Mail Mail `toml:"mail"`
	SMTP SMTP `toml:"smtp"`
	Draw Draw `toml:"draw"`
}

// Mail configures message headers.
type Mail struct {
	Sender  string `toml:"sender"`
	Subject string `toml:"subject"`
}

// SMTP configures the submission server.
type SMTP struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	HelloName string `toml:"hello_name"`
	Timeout   string `toml:"timeout"` // Go duration, e.g. "30s"
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (s SMTP) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "smtp timeout")
	}
	return d, nil
}

// Redacted returns a copy of cfg with the SMTP password masked.
func (c Config) Redacted() Config {
	if c.SMTP.Password != "" {
		c.SMTP.Password = "********"
	}
	return c
}

// Draw configures the draw itself.
type Draw struct {
	MaxAttempts          int    `toml:"max_attempts"`
	ThemesPerParticipant int    `toml:"themes_per_participant"`
	Template             string `toml:"template"`
}

// Dir returns the config directory using the XDG standard
// (~/.config/krampus/).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "krampus"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "krampus"), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the config file at path.
//
// If path is empty the default path is used and a missing file yields an
// empty Config. An explicitly given path must exist. Unknown keys are
// rejected so that typos do not pass silently.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return withEnv(&Config{}), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return withEnv(&Config{}), nil
	}
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return withEnv(cfg), nil
}

// Parse decodes TOML config data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	if cfg.Draw.MaxAttempts < 0 || cfg.Draw.ThemesPerParticipant < 0 || cfg.SMTP.Port < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "numeric settings must not be negative")
	}
	if _, err := cfg.SMTP.TimeoutDuration(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func withEnv(cfg *Config) *Config {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		cfg.SMTP.Password = pw
	}
	return cfg
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Template is the commented starter file written by "krampus config init".
const Template = `# krampus configuration. Command-line flags override these values.

[mail]
# Address the notifications are sent from.
sender = ""
subject = "Your secret santa draw"

[smtp]
host = ""
port = 587
username = ""
# Prefer the ` + PasswordEnv + ` environment variable.
password = ""
hello_name = "localhost"
timeout = "30s"

[draw]
# Derangements drawn before the exclusions are declared unsatisfiable.
max_attempts = 5000
# 0 gives every participant as many themes as the list allows.
themes_per_participant = 0
# Built-in "en" or "fr", or a path to a text/template file.
template = "en"
`

// WriteTemplate writes Template to path, creating parent directories. It
// refuses to overwrite an existing file.
func WriteTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "create config dir")
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if os.IsExist(err) {
		return errors.New(errors.ErrCodeInvalidConfig, "%s already exists", path)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "create %s", path)
	}
	defer f.Close()
	if _, err := f.WriteString(Template); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "write %s", path)
	}
	return nil
}
