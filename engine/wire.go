package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/underthemoss/construction-taxonomy/config"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/lexicon"
	"github.com/underthemoss/construction-taxonomy/logger"
	"github.com/underthemoss/construction-taxonomy/propose/openrouter"
	"github.com/underthemoss/construction-taxonomy/publish"
	"github.com/underthemoss/construction-taxonomy/store"
)

// FromConfig builds an Engine and its collaborators from cfg. The proposer
// and the publisher are only wired when enabled.
func FromConfig(cfg *config.Config, log *zap.SugaredLogger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = logger.OrNop(log)

	lex, err := Lexicon(cfg)
	if err != nil {
		return nil, err
	}

	storeOpts := []store.Option{store.WithLogger(log.Named("store"))}
	if cfg.Hooks.ValidateCommand != "" {
		hook, err := CommandHook(cfg.Library.Root, cfg.Hooks.ValidateCommand,
			time.Duration(cfg.Hooks.TimeoutSeconds)*time.Second, log.Named("hook"))
		if err != nil {
			return nil, err
		}
		storeOpts = append(storeOpts, store.WithVerifyHook(hook))
	}

	opts := []Option{
		WithLexicon(lex),
		WithMinLabelLength(cfg.Extract.MinLabelLength),
		WithManufacturerThreshold(cfg.Classify.ManufacturerThreshold),
		WithCommonalityPercent(cfg.Examples.CommonalityPercent),
		WithLogger(log),
	}
	if cfg.Proposer.Enabled {
		opts = append(opts, WithProposer(openrouter.NewClient(openrouter.Config{
			APIKey:            cfg.Proposer.APIKey,
			Model:             cfg.Proposer.Model,
			BaseURL:           cfg.Proposer.BaseURL,
			Temperature:       cfg.Proposer.Temperature,
			MaxTokens:         cfg.Proposer.MaxTokens,
			RequestsPerMinute: cfg.Proposer.RequestsPerMinute,
			Timeout:           time.Duration(cfg.Proposer.TimeoutSeconds) * time.Second,
			Logger:            log.Named("openrouter"),
		})))
	}
	if cfg.Publish.Enabled {
		opts = append(opts, WithPublisher(publish.New(cfg.Library.Root, publish.Config{
			BranchPrefix: cfg.Publish.BranchPrefix,
			AuthorName:   cfg.Publish.AuthorName,
			AuthorEmail:  cfg.Publish.AuthorEmail,
			Remote:       cfg.Publish.Remote,
			Push:         cfg.Publish.Push,
			Token:        cfg.Publish.Token,
		}, publish.WithLogger(log.Named("publish")))))
	}

	return New(store.New(cfg.Library.Root, storeOpts...), opts...), nil
}

// Lexicon builds the lexicon cfg describes: the built-in tables, overlaid
// with lexicon.path when set, plus the configured extra stop words
func Lexicon(cfg *config.Config) (*lexicon.Lexicon, error) {
	if cfg.Lexicon.Path == "" && len(cfg.Extract.StopWords) == 0 {
		return lexicon.Default(), nil
	}

	tables := lexicon.DefaultTables()
	if cfg.Lexicon.Path != "" {
		var err error
		if tables, err = lexicon.LoadTables(cfg.Lexicon.Path); err != nil {
			return nil, err
		}
	}
	tables.StopWords = append(tables.StopWords, cfg.Extract.StopWords...)

	lex, err := lexicon.New(tables)
	if err != nil {
		return nil, errors.Wrap(err, "build lexicon")
	}
	return lex, nil
}
