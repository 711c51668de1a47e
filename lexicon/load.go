package lexicon

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/underthemoss/construction-taxonomy/errors"
)

// LoadFile builds a Lexicon from the built-in tables overlaid with the
// tables found in path (.yaml, .yml, .toml or .json). Each table present in
// the file replaces the built-in one wholesale; absent tables keep the
// built-in values.
func LoadFile(path string) (*Lexicon, error) {
	tables, err := LoadTables(path)
	if err != nil {
		return nil, err
	}
	lex, err := New(tables)
	if err != nil {
		return nil, errors.Wrapf(err, "lexicon %s", path)
	}
	return lex, nil
}

// LoadTables returns the built-in tables overlaid with the tables in path,
// without validating them.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, errors.Wrapf(err, "read lexicon %s", path)
	}

	var override Tables
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &override)
	case ".toml":
		_, err = toml.Decode(string(data), &override)
	case ".json":
		err = json.Unmarshal(data, &override)
	default:
		return Tables{}, errors.WithHint(
			errors.Newf("unsupported lexicon format %q", ext),
			"use a .yaml, .toml or .json file",
		)
	}
	if err != nil {
		return Tables{}, errors.Wrapf(err, "parse lexicon %s", path)
	}
	return Overlay(DefaultTables(), override), nil
}

// Overlay returns base with every non-empty table of override replacing
// the corresponding table of base.
func Overlay(base, override Tables) Tables {
	if len(override.Units) > 0 {
		base.Units = override.Units
	}
	if len(override.BrandKeywords) > 0 {
		base.BrandKeywords = override.BrandKeywords
	}
	if len(override.PhysicsTokens) > 0 {
		base.PhysicsTokens = override.PhysicsTokens
	}
	if len(override.Prefixes) > 0 {
		base.Prefixes = override.Prefixes
	}
	if len(override.Concepts) > 0 {
		base.Concepts = override.Concepts
	}
	if len(override.StopWords) > 0 {
		base.StopWords = override.StopWords
	}
	if len(override.Manufacturers) > 0 {
		base.Manufacturers = override.Manufacturers
	}
	if len(override.BrandSubcategories) > 0 {
		base.BrandSubcategories = override.BrandSubcategories
	}
	return base
}
