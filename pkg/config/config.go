// Package config loads the pipeline configuration from a YAML file,
// with environment overrides for anything secret (API keys, DSNs).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"edinet_analyzer/pkg/core/company"
	"edinet_analyzer/pkg/core/scrape"
)

// Config is the root of the YAML config file.
type Config struct {
	Edinet   EdinetConfig   `yaml:"edinet"`
	Target   TargetConfig   `yaml:"target"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Notify   NotifyConfig   `yaml:"notify"`
	Log      LogConfig      `yaml:"log"`
}

type EdinetConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type TargetConfig struct {
	DocTypeCodes       []string `yaml:"doc_type_codes"`
	ExcludedIndustries []string `yaml:"excluded_industries"`
}

type ScrapeConfig struct {
	Tables map[string]scrape.CellLayout `yaml:"tables"`
}

type PipelineConfig struct {
	Workers  int    `yaml:"workers"`
	CronSpec string `yaml:"cron_spec"`
}

type NotifyConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads the config file at path and applies environment overrides.
// A missing file is not an error: defaults still apply, so the pipeline
// can run from environment variables alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("EDINET_API_KEY"); v != "" {
		c.Edinet.APIKey = v
	}
	if v := os.Getenv("EDINET_BASE_URL"); v != "" {
		c.Edinet.BaseURL = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		c.Notify.SlackWebhookURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	rule := company.DefaultTargetRule()
	if len(c.Target.DocTypeCodes) == 0 {
		c.Target.DocTypeCodes = rule.TargetTypeCodes
	}
	if len(c.Target.ExcludedIndustries) == 0 {
		c.Target.ExcludedIndustries = rule.ExcludedIndustries
	}
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 4
	}
	if c.Pipeline.CronSpec == "" {
		// 14:30 UTC is 23:30 JST, after the day's filings have settled.
		c.Pipeline.CronSpec = "30 14 * * *"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = "edinet_analyzer.log"
	}
}

// TargetRule builds the filing selection rule from the config.
func (c *Config) TargetRule() company.TargetRule {
	return company.TargetRule{
		TargetTypeCodes:    c.Target.DocTypeCodes,
		ExcludedIndustries: c.Target.ExcludedIndustries,
	}
}

// TableConfig merges YAML table overrides on top of the default layout.
// Unknown statement names in the config are rejected so a typo does not
// silently fall back to the defaults.
func (c *Config) TableConfig() (scrape.TableConfig, error) {
	tc := scrape.DefaultTableConfig()
	for name, layout := range c.Scrape.Tables {
		kind, ok := statementKinds[name]
		if !ok {
			return nil, fmt.Errorf("unknown statement %q in scrape.tables", name)
		}
		tc[kind] = layout
	}
	return tc, nil
}

var statementKinds = map[string]scrape.StatementKind{
	"balance_sheet":       scrape.BalanceSheet,
	"income_statement":    scrape.IncomeStatement,
	"cash_flow_statement": scrape.CashFlowStatement,
}
