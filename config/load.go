package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/underthemoss/construction-taxonomy/errors"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "TAXONOMY"

// Paths lists the config files Load merges, lowest precedence first.
// Empty entries are skipped.
type Paths struct {
	System  string
	User    string
	Project string
}

// DefaultPaths returns the standard locations, searching for a project file
// from the working directory upward
func DefaultPaths() Paths {
	p := Paths{System: SystemPath}
	if home, err := os.UserHomeDir(); err == nil {
		p.User = filepath.Join(home, UserDir, "config.toml")
	}
	if wd, err := os.Getwd(); err == nil {
		p.Project = FindProjectConfig(wd)
	}
	return p
}

var (
	mu            sync.Mutex
	globalConfig  *Config
	globalViper   *viper.Viper
	globalSources map[string]SourceInfo
)

// Load reads the configuration from the default paths and the environment.
// The result is cached until Reset.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if globalConfig != nil {
		return globalConfig, nil
	}

	v, sources, err := NewViper(DefaultPaths())
	if err != nil {
		return nil, err
	}
	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	globalConfig, globalViper, globalSources = cfg, v, sources
	return cfg, nil
}

// Reset clears the cached configuration
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	globalConfig, globalViper, globalSources = nil, nil, nil
}

// NewViper builds a viper instance with defaults, the files in paths merged
// in order, and environment overrides. It also reports which file set each
// key. A file that exists but cannot be parsed is an error.
func NewViper(paths Paths) (*viper.Viper, map[string]SourceInfo, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindSensitiveEnvVars(v)
	SetDefaults(v)

	sources := make(map[string]SourceInfo)
	for _, f := range []struct {
		path   string
		source Source
	}{
		{paths.System, SourceSystem},
		{paths.User, SourceUser},
		{paths.Project, SourceProject},
	} {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); err != nil {
			continue
		}
		file := viper.New()
		file.SetConfigFile(f.path)
		file.SetConfigType("toml")
		if err := file.ReadInConfig(); err != nil {
			return nil, nil, errors.WithHint(
				errors.Wrapf(err, "read config %s", f.path),
				"check the TOML syntax of the file",
			)
		}
		settings := file.AllSettings()
		if err := v.MergeConfigMap(settings); err != nil {
			return nil, nil, errors.Wrapf(err, "merge config %s", f.path)
		}
		for _, key := range flattenKeys(settings, "") {
			sources[key] = SourceInfo{Source: f.source, Path: f.path}
		}
	}
	return v, sources, nil
}

// LoadWithViper decodes the configuration held by v
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}

// LoadFromFile reads one file over the defaults, ignoring other files and
// the environment
func LoadFromFile(path string) (*Config, error) {
	v := defaultViper()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return LoadWithViper(v)
}

// FindProjectConfig walks up from dir looking for taxonomy.toml and returns
// its path, or "" when there is none
func FindProjectConfig(dir string) string {
	for {
		path := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func envKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
