package repo

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config stores repository-local settings: the commit identity and the
// default branch used by init.
type Config struct {
	User UserConfig `toml:"user"`
	Init InitConfig `toml:"init"`
}

// UserConfig is the identity recorded in commits.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// InitConfig holds init-time defaults.
type InitConfig struct {
	DefaultBranch string `toml:"default_branch,omitempty"`
}

// Identifier renders the commit identity as "Name <email>", falling back to
// a placeholder identity when unconfigured.
func (c *Config) Identifier() string {
	name := c.User.Name
	if name == "" {
		name = "Grit User"
	}
	email := c.User.Email
	if email == "" {
		email = "grit@localhost"
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// ReadConfig reads .git/config.toml. A missing file yields defaults.
func (r *Repo) ReadConfig() (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("read config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// WriteConfig atomically writes .git/config.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}

	tmp, err := os.CreateTemp(r.GitDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}
