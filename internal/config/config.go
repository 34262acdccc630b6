package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	MissingPageSkip  = "skip"
	MissingPageAbort = "abort"

	BatchingAligned = "aligned"
	BatchingLegacy  = "legacy"
)

type Config struct {
	Output           string `yaml:"output"`
	Debug            bool   `yaml:"debug"`
	Headless         bool   `yaml:"headless"`
	KeepImages       bool   `yaml:"keep_images"`
	BrowserBin       string `yaml:"browser_bin"`
	OnMissingPage    string `yaml:"on_missing_page"`
	PDFBatching      string `yaml:"pdf_batching"`
	Transliterate    bool   `yaml:"transliterate"`
	RememberPassword bool   `yaml:"remember_password"`
	UserAgent        string `yaml:"user_agent"`

	PageLoadTimeout time.Duration `yaml:"page_load_timeout"`
	SlotTimeout     time.Duration `yaml:"slot_timeout"`
	SettleDelay     time.Duration `yaml:"settle_delay"`
}

type Options struct {
	IgnoreConfig  bool
	Debug         bool
	Output        string
	Headless      bool
	KeepImages    bool
	BrowserBin    string
	OnMissingPage string
	PDFBatching   string
	Transliterate bool
	UserAgent     string
}

func DefaultConfig() *Config {
	return &Config{
		Output:          "output",
		OnMissingPage:   MissingPageSkip,
		PDFBatching:     BatchingAligned,
		PageLoadTimeout: 60 * time.Second,
		SlotTimeout:     10 * time.Second,
		SettleDelay:     3 * time.Second,
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged reads the config file (if any) and applies CLI overrides on top.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		if err := normalize(cfg); err != nil {
			return nil, "", err
		}
		return cfg, "(ignored config)", nil
	}

	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		if err := normalize(cfg); err != nil {
			return nil, "", err
		}
		return cfg, "(default config in memory)\nRun `crunchymanga config init` to create an actual config\n", nil
	}

	cfg, err := loadYAML(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", path, err)
	}

	mergeConfig(cfg, opts)
	if err := normalize(cfg); err != nil {
		return nil, "", fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, path, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Debug {
		c.Debug = true
	}
	if o.Headless {
		c.Headless = true
	}
	if o.KeepImages {
		c.KeepImages = true
	}
	if o.BrowserBin != "" {
		c.BrowserBin = o.BrowserBin
	}
	if o.OnMissingPage != "" {
		c.OnMissingPage = o.OnMissingPage
	}
	if o.PDFBatching != "" {
		c.PDFBatching = o.PDFBatching
	}
	if o.Transliterate {
		c.Transliterate = true
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
}

func normalize(c *Config) error {
	def := DefaultConfig()

	if c.Output == "" {
		c.Output = def.Output
	}
	if c.PageLoadTimeout <= 0 {
		c.PageLoadTimeout = def.PageLoadTimeout
	}
	if c.SlotTimeout <= 0 {
		c.SlotTimeout = def.SlotTimeout
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = def.SettleDelay
	}

	switch c.OnMissingPage {
	case "":
		c.OnMissingPage = def.OnMissingPage
	case MissingPageSkip, MissingPageAbort:
	default:
		return fmt.Errorf("on_missing_page must be %q or %q, got %q", MissingPageSkip, MissingPageAbort, c.OnMissingPage)
	}

	switch c.PDFBatching {
	case "":
		c.PDFBatching = def.PDFBatching
	case BatchingAligned, BatchingLegacy:
	default:
		return fmt.Errorf("pdf_batching must be %q or %q, got %q", BatchingAligned, BatchingLegacy, c.PDFBatching)
	}

	return nil
}

func (c *Config) Print() {
	fmt.Printf(" -output: %s\n", c.Output)
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.Headless {
		fmt.Printf(" -headless: %t\n", c.Headless)
	}
	if c.KeepImages {
		fmt.Printf(" -keep_images: %t\n", c.KeepImages)
	}
	if c.BrowserBin != "" {
		fmt.Printf(" -browser_bin: %s\n", c.BrowserBin)
	}
	fmt.Printf(" -on_missing_page: %s\n", c.OnMissingPage)
	fmt.Printf(" -pdf_batching: %s\n", c.PDFBatching)
	if c.Transliterate {
		fmt.Printf(" -transliterate: %t\n", c.Transliterate)
	}
	if c.RememberPassword {
		fmt.Printf(" -remember_password: %t\n", c.RememberPassword)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	fmt.Printf(" -page_load_timeout: %s\n", c.PageLoadTimeout)
	fmt.Printf(" -slot_timeout: %s\n", c.SlotTimeout)
	fmt.Printf(" -settle_delay: %s\n", c.SettleDelay)
}
