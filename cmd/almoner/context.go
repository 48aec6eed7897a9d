package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"almoner/internal/auth"
	"almoner/internal/config"
	"almoner/internal/donor"
	"almoner/internal/journal"
	"almoner/internal/logging"
)

type commandContext struct {
	configFlag  *string
	baseURLFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	clientOnce sync.Once
	client     *donor.Client
	clientErr  error

	sessionOnce sync.Once
	session     auth.Provider

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, baseURLFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		baseURLFlag: baseURLFlag,
	}
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
		if c.baseURLFlag != nil && strings.TrimSpace(*c.baseURLFlag) != "" {
			cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(*c.baseURLFlag), "/")
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) sessionProvider() auth.Provider {
	c.sessionOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil || cfg == nil {
			c.session = auth.NewStatic(config.Operator{})
			return
		}
		c.session = auth.NewStatic(cfg.Operator)
	})
	return c.session
}

func (c *commandContext) apiClient() (*donor.Client, error) {
	c.clientOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.clientErr = err
			return
		}
		c.client, c.clientErr = donor.NewClient(donor.ClientConfig{
			BaseURL: cfg.API.BaseURL,
			Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
			Auth:    c.sessionProvider(),
		})
	})
	return c.client, c.clientErr
}

func (c *commandContext) slogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, logErr := logging.NewFromConfig(cfg)
		if logErr != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// openJournal returns the review journal, or nil when journaling is
// disabled or unavailable. Journal trouble never blocks the workflow.
func (c *commandContext) openJournal() *journal.Store {
	cfg, err := c.ensureConfig()
	if err != nil || cfg == nil || !cfg.Journal.Enabled {
		return nil
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		c.slogger().Warn("review journal unavailable", "error", err)
		return nil
	}
	return store
}
