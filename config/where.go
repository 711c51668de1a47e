package config

import (
	"maps"
	"os"
	"slices"

	"github.com/spf13/viper"
)

// Source is where a setting's value came from
type Source string

const (
	SourceDefault     Source = "default"
	SourceSystem      Source = "system"      // /etc/taxonomy/config.toml
	SourceUser        Source = "user"        // ~/.taxonomy/config.toml
	SourceProject     Source = "project"     // taxonomy.toml
	SourceEnvironment Source = "environment" // TAXONOMY_* or a bound secret variable
)

// SourceInfo locates a setting's origin
type SourceInfo struct {
	Source Source
	Path   string // file path or environment variable name
}

// SettingInfo is one effective setting and its origin
type SettingInfo struct {
	Key        string `json:"key"`
	Value      any    `json:"value"`
	Source     Source `json:"source"`
	SourcePath string `json:"source_path,omitempty"`
}

// Where loads the configuration if needed and reports every effective
// setting with its origin
func Where() ([]SettingInfo, error) {
	if _, err := Load(); err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	return Introspect(globalViper, globalSources), nil
}

// Introspect reports the settings of v in key order. Secrets are masked.
func Introspect(v *viper.Viper, sources map[string]SourceInfo) []SettingInfo {
	var out []SettingInfo
	for _, key := range flattenKeys(v.AllSettings(), "") {
		info := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if si, ok := sources[key]; ok {
			info = si
		}
		for _, env := range envNames(key) {
			if os.Getenv(env) != "" {
				info = SourceInfo{Source: SourceEnvironment, Path: env}
				break
			}
		}

		value := v.Get(key)
		if _, secret := sensitiveEnv[key]; secret && value != "" {
			value = redactedValue
		}
		out = append(out, SettingInfo{Key: key, Value: value, Source: info.Source, SourcePath: info.Path})
	}
	return out
}

func envNames(key string) []string {
	names := []string{envKey(key)}
	if alt, ok := sensitiveEnv[key]; ok {
		names = append(names, alt)
	}
	return names
}

// flattenKeys returns the dotted leaf keys of a nested settings map, sorted
func flattenKeys(settings map[string]any, prefix string) []string {
	var keys []string
	for _, k := range slices.Sorted(maps.Keys(settings)) {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if nested, ok := settings[k].(map[string]any); ok {
			keys = append(keys, flattenKeys(nested, full)...)
			continue
		}
		keys = append(keys, full)
	}
	return keys
}
