package commands

import (
	"time"

	"sitecrawl/lib/configutil"
	"sitecrawl/lib/serviceutil"
	"sitecrawl/lib/sites/globe"
	"sitecrawl/lib/sites/neptun"
)

type GlobeConfig struct {
	Categories []globe.Category `json:"categories"`
}

type NeptunConfig struct {
	EntryTimeoutSeconds int `json:"entry_timeout_seconds"`
	CountTimeoutSeconds int `json:"count_timeout_seconds"`
	PageTimeoutSeconds  int `json:"page_timeout_seconds"`
}

func (c NeptunConfig) timeouts() neptun.Timeouts {
	return neptun.Timeouts{
		Entry: time.Duration(c.EntryTimeoutSeconds) * time.Second,
		Count: time.Duration(c.CountTimeoutSeconds) * time.Second,
		Page:  time.Duration(c.PageTimeoutSeconds) * time.Second,
	}
}

type BrowserConfig struct {
	// ShowWindow runs chrome with a visible window.
	ShowWindow bool   `json:"show_window"`
	ExecPath   string `json:"exec_path"`
}

type Config struct {
	UserAgent             string        `json:"user_agent"`
	RequestTimeoutSeconds int           `json:"request_timeout_seconds"`
	CloudflareBypass      bool          `json:"cloudflare_bypass"`
	MaxPages              int           `json:"max_pages"`
	LedgerAuthToken       string        `json:"ledger_auth_token"`
	Globe                 GlobeConfig   `json:"globe"`
	Neptun                NeptunConfig  `json:"neptun"`
	Browser               BrowserConfig `json:"browser"`

	// Timezone is used to display run times.
	Timezone string `json:"timezone"`
}

func (c Config) requestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func defaultConfig() Config {
	return Config{
		Globe: GlobeConfig{Categories: globe.DefaultCategories},
		Neptun: NeptunConfig{
			EntryTimeoutSeconds: 10,
			CountTimeoutSeconds: 10,
			PageTimeoutSeconds:  20,
		},
	}
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfigWithDefaults(configPath, defaultConfig())
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}
