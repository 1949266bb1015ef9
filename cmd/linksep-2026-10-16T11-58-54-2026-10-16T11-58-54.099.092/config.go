package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/linksep"
	"github.com/fwojciec/linksep/crawl"
	linksephttp "github.com/fwojciec/linksep/http"
	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigPath is read when it exists and no other config file is named.
const DefaultConfigPath = "linksep.toml"

// Config is the optional TOML configuration file. Its values replace the
// built-in defaults; flags and environment variables still win.
type Config struct {
	Target string       `toml:"target"`
	Origin string       `toml:"origin"`
	Search SearchConfig `toml:"search"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

type SearchConfig struct {
	DepthLimit   int    `toml:"depth_limit"`
	BatchLimit   int    `toml:"batch_limit"`
	FetchTimeout string `toml:"fetch_timeout"`
	Retries      int    `toml:"retries"`
	Browser      bool   `toml:"browser"`
	SkipVisited  bool   `toml:"skip_visited"`
}

type ServerConfig struct {
	Host          string  `toml:"host"`
	Port          int     `toml:"port"`
	SearchTimeout string  `toml:"search_timeout"`
	RateLimit     float64 `toml:"rate_limit"`
	RateBurst     int     `toml:"rate_burst"`
}

type LogConfig struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Target: linksep.DefaultTarget,
		Origin: linksep.DefaultSiteOrigin,
		Search: SearchConfig{
			DepthLimit:   linksep.DefaultDepthLimit,
			BatchLimit:   linksep.DefaultBatchLimit,
			FetchTimeout: crawl.DefaultFetchTimeout.String(),
		},
		Server: ServerConfig{
			Host:          "localhost",
			Port:          1234,
			SearchTimeout: linksephttp.DefaultSearchTimeout.String(),
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// LoadConfig reads the TOML file at path over the built-in defaults.
// A missing file is not an error unless required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Vars exposes the configuration as kong interpolation variables, which
// the CLI uses as flag defaults.
func (c *Config) Vars() kong.Vars {
	return kong.Vars{
		"target":         c.Target,
		"origin":         c.Origin,
		"depth_limit":    strconv.Itoa(c.Search.DepthLimit),
		"batch_limit":    strconv.Itoa(c.Search.BatchLimit),
		"fetch_timeout":  c.Search.FetchTimeout,
		"retries":        strconv.Itoa(c.Search.Retries),
		"browser":        strconv.FormatBool(c.Search.Browser),
		"skip_visited":   strconv.FormatBool(c.Search.SkipVisited),
		"host":           c.Server.Host,
		"port":           strconv.Itoa(c.Server.Port),
		"search_timeout": c.Server.SearchTimeout,
		"rate_limit":     strconv.FormatFloat(c.Server.RateLimit, 'f', -1, 64),
		"rate_burst":     strconv.Itoa(c.Server.RateBurst),
		"log_format":     c.Log.Format,
		"log_level":      c.Log.Level,
		"log_file":       c.Log.File,
	}
}

// configPath finds the config file named on the command line or in
// LINKSEP_CONFIG. It runs before kong parses args because the file
// supplies the flag defaults. required reports whether the path was
// named explicitly.
func configPath(args []string) (path string, required bool) {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v, true
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1], true
		}
	}
	if v := os.Getenv("LINKSEP_CONFIG"); v != "" {
		return v, true
	}
	return DefaultConfigPath, false
}
