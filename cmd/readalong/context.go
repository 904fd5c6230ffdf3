package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"readalong/internal/config"
	"readalong/internal/logging"
	"readalong/internal/pipeline"
	"readalong/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logging.NewNop()
	}
	logger, err := logging.NewWithFile(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir, nil)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// withStore opens the database for the duration of fn.
func (c *commandContext) withStore(fn func(cfg *config.Config, st *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(cfg, st)
}

// withPipeline builds a fully wired pipeline for the duration of fn.
func (c *commandContext) withPipeline(fn func(cfg *config.Config, p *pipeline.Pipeline, st *store.Store) error) error {
	return c.withStore(func(cfg *config.Config, st *store.Store) error {
		return fn(cfg, pipeline.New(cfg, st, c.logger()), st)
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
