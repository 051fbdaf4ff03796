package compiler

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/goccy/go-yaml"

	"github.com/agentic-research/promptc/internal/transform"
)

// Config is the optional project file (promptc.yaml). Flags override it.
type Config struct {
	// Out collects compiled artifacts under one directory.
	Out string `yaml:"out"`
	// Mode is the interpolation emission mode: "normalize" or "preserve".
	Mode string `yaml:"mode"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// LoadConfig reads the project config at p. A missing file is not an
// error; it yields the zero config.
func LoadConfig(fsys billy.Filesystem, p string) (*Config, error) {
	data, err := util.ReadFile(fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", p, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", p, err)
	}
	return &cfg, nil
}

// InterpolationMode maps the config string to the transformer mode.
func (c *Config) InterpolationMode() (transform.InterpolationMode, error) {
	switch c.Mode {
	case "", "normalize":
		return transform.NormalizeInterpolation, nil
	case "preserve":
		return transform.PreserveInterpolation, nil
	default:
		return transform.NormalizeInterpolation, fmt.Errorf("unknown interpolation mode %q", c.Mode)
	}
}
