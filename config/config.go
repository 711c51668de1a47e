// Package config loads the taxonomy engine configuration.
//
// Sources, lowest precedence first: built-in defaults, /etc/taxonomy/config.toml,
// ~/.taxonomy/config.toml, the nearest taxonomy.toml found walking up from the
// working directory, then TAXONOMY_* environment variables.
package config

// Config is the complete engine configuration
type Config struct {
	Library  LibraryConfig  `mapstructure:"library" toml:"library"`
	Lexicon  LexiconConfig  `mapstructure:"lexicon" toml:"lexicon"`
	Extract  ExtractConfig  `mapstructure:"extract" toml:"extract"`
	Classify ClassifyConfig `mapstructure:"classify" toml:"classify"`
	Examples ExamplesConfig `mapstructure:"examples" toml:"examples"`
	Sources  SourcesConfig  `mapstructure:"sources" toml:"sources"`
	Proposer ProposerConfig `mapstructure:"proposer" toml:"proposer"`
	Publish  PublishConfig  `mapstructure:"publish" toml:"publish"`
	Hooks    HooksConfig    `mapstructure:"hooks" toml:"hooks"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
}

// LibraryConfig locates the attribute library
type LibraryConfig struct {
	Root string `mapstructure:"root" toml:"root"` // repository root holding attributes/
}

// LexiconConfig points at an optional lexicon override file
type LexiconConfig struct {
	Path string `mapstructure:"path" toml:"path,omitempty"` // .yaml, .toml or .json; empty = built-in tables
}

// ExtractConfig tunes label/value extraction
type ExtractConfig struct {
	MinLabelLength int      `mapstructure:"min_label_length" toml:"min_label_length"`
	StopWords      []string `mapstructure:"stop_words" toml:"stop_words,omitempty"` // added to the lexicon's list
}

// ClassifyConfig tunes classification
type ClassifyConfig struct {
	ManufacturerThreshold int `mapstructure:"manufacturer_threshold" toml:"manufacturer_threshold"` // distinct makers that force physics
}

// ExamplesConfig tunes structured example analysis
type ExamplesConfig struct {
	CommonalityPercent float64 `mapstructure:"commonality_percent" toml:"commonality_percent"`
}

// SourcesConfig locates source documents
type SourcesConfig struct {
	CatalogDir string `mapstructure:"catalog_dir" toml:"catalog_dir"`
	Remote     string `mapstructure:"remote" toml:"remote,omitempty"` // go-getter address fetched into catalog_dir
}

// ProposerConfig configures the OpenRouter proposer
type ProposerConfig struct {
	Enabled           bool     `mapstructure:"enabled" toml:"enabled"`
	APIKey            string   `mapstructure:"api_key" toml:"api_key,omitempty"`
	Model             string   `mapstructure:"model" toml:"model"`
	BaseURL           string   `mapstructure:"base_url" toml:"base_url"`
	Temperature       *float64 `mapstructure:"temperature" toml:"temperature,omitempty"` // nil = 0.2
	MaxTokens         *int     `mapstructure:"max_tokens" toml:"max_tokens,omitempty"`   // nil = 1000
	RequestsPerMinute int      `mapstructure:"requests_per_minute" toml:"requests_per_minute"`
	TimeoutSeconds    int      `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
}

// PublishConfig configures the git hand-off
type PublishConfig struct {
	Enabled      bool   `mapstructure:"enabled" toml:"enabled"`
	BranchPrefix string `mapstructure:"branch_prefix" toml:"branch_prefix"`
	AuthorName   string `mapstructure:"author_name" toml:"author_name"`
	AuthorEmail  string `mapstructure:"author_email" toml:"author_email"`
	Remote       string `mapstructure:"remote" toml:"remote"`
	Push         bool   `mapstructure:"push" toml:"push"`
	Token        string `mapstructure:"token" toml:"token,omitempty"`
}

// HooksConfig configures the external validator run before a batch stands
type HooksConfig struct {
	ValidateCommand string `mapstructure:"validate_command" toml:"validate_command,omitempty"` // shell-quoted; run in the library root
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
}

// LogConfig configures logging
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json"`
}

// Redacted returns a copy with secrets masked, for display
func (c Config) Redacted() Config {
	if c.Proposer.APIKey != "" {
		c.Proposer.APIKey = redactedValue
	}
	if c.Publish.Token != "" {
		c.Publish.Token = redactedValue
	}
	return c
}

const redactedValue = "********"

// File names and permissions
const (
	ProjectFile            = "taxonomy.toml"
	UserDir                = ".taxonomy"
	SystemPath             = "/etc/taxonomy/config.toml"
	DefaultFilePermissions = 0o644
)
