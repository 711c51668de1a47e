package config

import (
	"github.com/spf13/viper"

	"github.com/underthemoss/construction-taxonomy/classify"
	"github.com/underthemoss/construction-taxonomy/extract"
	"github.com/underthemoss/construction-taxonomy/propose/openrouter"
	"github.com/underthemoss/construction-taxonomy/publish"
)

// SetDefaults configures default values for every setting
func SetDefaults(v *viper.Viper) {
	v.SetDefault("library.root", ".")

	v.SetDefault("extract.min_label_length", extract.DefaultMinLabelLength)
	v.SetDefault("classify.manufacturer_threshold", classify.DefaultManufacturerThreshold)
	v.SetDefault("examples.commonality_percent", extract.DefaultCommonalityPercent)

	v.SetDefault("sources.catalog_dir", "source_content")

	v.SetDefault("proposer.enabled", false)
	v.SetDefault("proposer.model", openrouter.DefaultModel)
	v.SetDefault("proposer.base_url", openrouter.DefaultBaseURL)
	v.SetDefault("proposer.requests_per_minute", openrouter.DefaultRequestsPerMinute)
	v.SetDefault("proposer.timeout_seconds", 120)

	v.SetDefault("publish.enabled", false)
	v.SetDefault("publish.branch_prefix", publish.DefaultBranchPrefix)
	v.SetDefault("publish.author_name", publish.DefaultAuthorName)
	v.SetDefault("publish.author_email", publish.DefaultAuthorEmail)
	v.SetDefault("publish.remote", publish.DefaultRemote)
	v.SetDefault("publish.push", false)

	v.SetDefault("hooks.timeout_seconds", 300)

	v.SetDefault("log.json", false)
}

// defaultViper returns a viper instance holding only the defaults
func defaultViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

// sensitiveEnv maps secret settings to the conventional variables that
// carry them, in addition to their TAXONOMY_* names.
var sensitiveEnv = map[string]string{
	"proposer.api_key": "OPENROUTER_API_KEY",
	"publish.token":    "GITHUB_TOKEN",
}

// BindSensitiveEnvVars binds secrets to their conventional environment
// variables
func BindSensitiveEnvVars(v *viper.Viper) {
	for key, env := range sensitiveEnv {
		_ = v.BindEnv(key, envKey(key), env)
	}
}
