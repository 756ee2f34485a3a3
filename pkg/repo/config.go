package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/klauspost/compress/zlib"
)

// ConfigFile is the name of the repository-local config under GitDir.
const ConfigFile = "config.toml"

// Config stores repository-local settings.
type Config struct {
	User UserConfig `toml:"user"`
	Core CoreConfig `toml:"core"`
}

// UserConfig is the commit identity used when the environment sets none.
type UserConfig struct {
	Name  string `toml:"name,omitempty"`
	Email string `toml:"email,omitempty"`
}

// CoreConfig holds object storage settings.
type CoreConfig struct {
	// Compression is the zlib level for new objects, -1 (default) to 9.
	Compression int `toml:"compression"`
}

// DefaultConfig returns the config used when config.toml is absent.
func DefaultConfig() *Config {
	return &Config{Core: CoreConfig{Compression: zlib.DefaultCompression}}
}

func (c *Config) validate() error {
	if c.Core.Compression < zlib.DefaultCompression || c.Core.Compression > zlib.BestCompression {
		return fmt.Errorf("core.compression %d out of range [%d, %d]",
			c.Core.Compression, zlib.DefaultCompression, zlib.BestCompression)
	}
	return nil
}

func configPath(gitDir string) string {
	return filepath.Join(gitDir, ConfigFile)
}

// ReadConfig reads <gitDir>/config.toml. A missing file yields
// DefaultConfig; keys the file leaves out keep their defaults.
func ReadConfig(gitDir string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(configPath(gitDir), cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("read config: unknown keys %s", strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// WriteConfig atomically writes <gitDir>/config.toml.
func WriteConfig(gitDir string, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := writeFileAtomic(gitDir, configPath(gitDir), buf.Bytes()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SetUser stores the commit identity in the repository config.
func (r *Repo) SetUser(name, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return fmt.Errorf("set user: name and email are required")
	}
	cfg := *r.Config
	cfg.User = UserConfig{Name: name, Email: email}
	if err := WriteConfig(r.GitDir, &cfg); err != nil {
		return err
	}
	r.Config.User = cfg.User
	return nil
}

// writeFileAtomic writes data to a temp file in dir, syncs it, and renames
// it over path.
func writeFileAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
