package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/krampus/pkg/errors"
)

func TestParse(t *testing.T) {
	data := `
[mail]
sender = "santa@example.com"
subject = "Pige de Noël"

[smtp]
host = "smtp.example.com"
port = 465
username = "santa"
timeout = "10s"

[draw]
max_attempts = 100
themes_per_participant = 3
template = "fr"
`
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.Mail.Sender != "santa@example.com" || cfg.Mail.Subject != "Pige de Noël" {
		t.Errorf("Mail = %+v", cfg.Mail)
	}
	if cfg.SMTP.Host != "smtp.example.com" || cfg.SMTP.Port != 465 || cfg.SMTP.Username != "santa" {
		t.Errorf("SMTP = %+v", cfg.SMTP)
	}
	if d, _ := cfg.SMTP.TimeoutDuration(); d != 10*time.Second {
		t.Errorf("TimeoutDuration() = %v, want 10s", d)
	}
	if cfg.Draw.MaxAttempts != 100 || cfg.Draw.ThemesPerParticipant != 3 || cfg.Draw.Template != "fr" {
		t.Errorf("Draw = %+v", cfg.Draw)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[mail\nsender = 1"},
		{"unknown key", "[mail]\nsendr = \"x\""},
		{"unknown table", "[smpt]\nhost = \"x\""},
		{"negative attempts", "[draw]\nmax_attempts = -1"},
		{"bad timeout", "[smtp]\ntimeout = \"soon\""},
		{"wrong type", "[smtp]\nport = \"587\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Parse() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestTemplateParses(t *testing.T) {
	cfg, err := Parse([]byte(Template))
	if err != nil {
		t.Fatalf("Parse(Template) error: %v", err)
	}
	if cfg.Draw.MaxAttempts != 5000 || cfg.SMTP.Port != 587 || cfg.Draw.Template != "en" {
		t.Errorf("Template decoded to %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(PasswordEnv, "")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[smtp]\nhost = \"mx\"\npassword = \"file\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.SMTP.Host != "mx" || cfg.SMTP.Password != "file" {
		t.Errorf("SMTP = %+v", cfg.SMTP)
	}

	t.Setenv(PasswordEnv, "env")
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SMTP.Password != "env" {
		t.Errorf("Password = %q, want the environment value", cfg.SMTP.Password)
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(PasswordEnv, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") without a default file error: %v", err)
	}
	if cfg.SMTP.Host != "" {
		t.Errorf("Load(\"\") = %+v, want empty config", cfg)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestLoadKeepsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("nope = 1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("Load() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q should mention the path", err)
	}
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	dir, err := Dir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/xdg", "krampus") {
		t.Errorf("Dir() = %q", dir)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	dir, err = Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if dir != filepath.Join(home, ".config", "krampus") {
		t.Errorf("Dir() = %q, want under %s/.config", dir, home)
	}
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	if err := WriteTemplate(path); err != nil {
		t.Fatalf("WriteTemplate() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != Template {
		t.Error("written file differs from Template")
	}

	if err := WriteTemplate(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("second WriteTemplate() error = %v, want refusal to overwrite", err)
	}
}

func TestRedactedAndEncode(t *testing.T) {
	cfg := Config{SMTP: SMTP{Host: "mx", Password: "secret"}}
	red := cfg.Redacted()
	if red.SMTP.Password == "secret" {
		t.Error("Redacted() should mask the password")
	}
	if cfg.SMTP.Password != "secret" {
		t.Error("Redacted() should not modify the original")
	}

	data, err := Encode(&red)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("encoded config leaks the password:\n%s", data)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Encode()) error: %v", err)
	}
	if back.SMTP.Host != "mx" {
		t.Errorf("Host = %q after Encode/Parse", back.SMTP.Host)
	}
}
