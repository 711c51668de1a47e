package config

import "github.com/underthemoss/construction-taxonomy/errors"

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Library.Root == "" {
		return errors.NewInvalidf("library.root cannot be empty")
	}

	if c.Extract.MinLabelLength < 1 {
		return errors.NewInvalidf("extract.min_label_length must be >= 1, got %d", c.Extract.MinLabelLength)
	}

	if c.Classify.ManufacturerThreshold < 1 {
		return errors.NewInvalidf("classify.manufacturer_threshold must be >= 1, got %d", c.Classify.ManufacturerThreshold)
	}

	if c.Examples.CommonalityPercent < 0 || c.Examples.CommonalityPercent > 100 {
		return errors.NewInvalidf("examples.commonality_percent must be within 0..100, got %g", c.Examples.CommonalityPercent)
	}

	if c.Proposer.Enabled {
		if c.Proposer.APIKey == "" {
			return errors.WithHint(
				errors.NewInvalidf("proposer.api_key cannot be empty when the proposer is enabled"),
				"set OPENROUTER_API_KEY or proposer.api_key",
			)
		}
		if c.Proposer.Model == "" {
			return errors.NewInvalidf("proposer.model cannot be empty when enabled")
		}
		if c.Proposer.TimeoutSeconds <= 0 {
			return errors.NewInvalidf("proposer.timeout_seconds must be > 0, got %d", c.Proposer.TimeoutSeconds)
		}
	}
	if c.Proposer.Temperature != nil && (*c.Proposer.Temperature < 0 || *c.Proposer.Temperature > 2) {
		return errors.NewInvalidf("proposer.temperature must be within 0..2, got %g", *c.Proposer.Temperature)
	}
	if c.Proposer.MaxTokens != nil && *c.Proposer.MaxTokens <= 0 {
		return errors.NewInvalidf("proposer.max_tokens must be > 0, got %d (omit for default)", *c.Proposer.MaxTokens)
	}

	if c.Publish.Enabled {
		if c.Publish.BranchPrefix == "" {
			return errors.NewInvalidf("publish.branch_prefix cannot be empty when publishing is enabled")
		}
		if c.Publish.Push && c.Publish.Token == "" {
			return errors.WithHint(
				errors.NewInvalidf("publish.token cannot be empty when publish.push is set"),
				"set GITHUB_TOKEN or publish.token",
			)
		}
	}

	if c.Hooks.TimeoutSeconds < 0 {
		return errors.NewInvalidf("hooks.timeout_seconds must be >= 0, got %d", c.Hooks.TimeoutSeconds)
	}
	return nil
}
