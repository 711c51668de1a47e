// Package commands implements the taxonomy CLI
package commands

import (
	"github.com/spf13/cobra"

	"github.com/underthemoss/construction-taxonomy/config"
	"github.com/underthemoss/construction-taxonomy/engine"
	"github.com/underthemoss/construction-taxonomy/logger"
)

// LoadConfig loads the configuration the global flags select. The result is
// a copy; --root is applied to it.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Root().PersistentFlags()

	var (
		cfg *config.Config
		err error
	)
	if path, _ := flags.GetString("config"); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	out := *cfg
	if root, _ := flags.GetString("root"); root != "" {
		out.Library.Root = root
	}
	return &out, nil
}

// newEngine builds the engine from the selected configuration
func newEngine(cmd *cobra.Command) (*engine.Engine, *config.Config, error) {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	e, err := engine.FromConfig(cfg, logger.Logger)
	if err != nil {
		return nil, nil, err
	}
	return e, cfg, nil
}
