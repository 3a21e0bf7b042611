package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	cferrors "github.com/chazuruo/chaosflow/internal/errors"
)

const fileHeader = `# chaosflow configuration
# Written by 'chaosflow init'. CHAOSFLOW_<SECTION>_<FIELD> environment
# variables override any value below.
`

// section is one commented [table] of the config file.
type section struct {
	name    string
	comment string
	value   any
}

func sections(cfg *Config) []section {
	return []section{
		{"portal", "Chaos portal queried for registered hubs and their charts.", cfg.Portal},
		{"public_hub", "Built-in public chart catalog. An empty charts_source asks the portal.", cfg.PublicHub},
		{"draft", "Where the workflow draft is kept: file, memory or redis.", cfg.Draft},
		{"tui", "Terminal UI.", cfg.TUI},
		{"log", "Logging; file receives logs while the TUI is running.", cfg.Log},
	}
}

// Encode renders cfg as commented TOML.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)

	for _, s := range sections(cfg) {
		fmt.Fprintf(&buf, "\n# %s\n", s.comment)
		enc := toml.NewEncoder(&buf)
		enc.Indent = ""
		if err := enc.Encode(map[string]any{s.name: s.value}); err != nil {
			return nil, fmt.Errorf("failed to encode [%s]: %w", s.name, err)
		}
	}
	return buf.Bytes(), nil
}

// Write validates cfg and replaces the file at path with it.
func Write(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid config: %w", err)
	}

	data, err := Encode(cfg)
	if err != nil {
		return &cferrors.ConfigError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &cferrors.ConfigError{Path: path, Err: fmt.Errorf("%w: %v", cferrors.ErrIO, err)}
	}

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return &cferrors.ConfigError{Path: path, Err: fmt.Errorf("%w: %v", cferrors.ErrIO, err)}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &cferrors.ConfigError{Path: path, Err: fmt.Errorf("%w: %v", cferrors.ErrIO, err)}
	}
	if err := tmp.Close(); err != nil {
		return &cferrors.ConfigError{Path: path, Err: fmt.Errorf("%w: %v", cferrors.ErrIO, err)}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return &cferrors.ConfigError{Path: path, Err: fmt.Errorf("%w: %v", cferrors.ErrIO, err)}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &cferrors.ConfigError{Path: path, Err: fmt.Errorf("%w: %v", cferrors.ErrIO, err)}
	}
	return nil
}
