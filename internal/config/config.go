// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/viper"

	"github.com/piebru/llmstxt-crawler/internal/crawler"
)

// Defaults mirrored by setDefaults; exported where commands print them.
const (
	DefaultIndexFile = "llms.txt"
	DefaultFullFile  = "llms-full.txt"
	DefaultLogFile   = "crawler.log"
	DefaultUserAgent = "DocsCrawler/1.0 (+https://llmstxt.org/crawler)"
)

// Config captures all crawl configuration knobs loaded via Viper.
type Config struct {
	BaseURL    string `mapstructure:"base_url"`
	URLPattern string `mapstructure:"url_pattern"`

	Output  OutputConfig  `mapstructure:"output"`
	Site    SiteConfig    `mapstructure:"site"`
	Logging LoggingConfig `mapstructure:"logging"`

	UserAgent           string   `mapstructure:"user_agent"`
	RequestDelaySeconds int      `mapstructure:"request_delay_seconds"`
	MaxPages            int      `mapstructure:"max_pages"`
	Retries             int      `mapstructure:"retries"`
	ExcludedURLs        []string `mapstructure:"excluded_urls"`
	Restart             bool     `mapstructure:"restart"`
	SkipRepetitivePaths bool     `mapstructure:"skip_repetitive_paths"`
	MetricsAddr         string   `mapstructure:"metrics_addr"`

	includeRe  *regexp.Regexp
	exclusions []glob.Glob
}

// OutputConfig sets artifact locations and envelope type.
type OutputConfig struct {
	Dir      string `mapstructure:"dir"`
	File     string `mapstructure:"file"`
	FileFull string `mapstructure:"file_full"`
	Type     string `mapstructure:"type"`
	LogFile  string `mapstructure:"log_file"`
}

// SiteConfig holds the text placed at the top of the generated artifacts.
type SiteConfig struct {
	Title   string `mapstructure:"title"`
	Summary string `mapstructure:"summary"`
	Details string `mapstructure:"details"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from the given Viper instance, which the CLI has
// already populated from flags, env, and an optional config file.
func Load(v *viper.Viper) (Config, error) {
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers default values on v. Exposed so the CLI can show
// them in --help output.
func SetDefaults(v *viper.Viper) { setDefaults(v) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.file", DefaultIndexFile)
	v.SetDefault("output.file_full", DefaultFullFile)
	v.SetDefault("output.type", "txt")
	v.SetDefault("output.log_file", DefaultLogFile)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("request_delay_seconds", 1)
	v.SetDefault("max_pages", 1000)
	v.SetDefault("retries", 3)
	v.SetDefault("site.summary", "Guidance for LLMs on how to best use this site's content.")
}

// validate enforces required values and compiles the URL patterns so that
// a bad inclusion regex or exclusion glob is fatal before the crawl
// begins.
func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must be set")
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil || base.Host == "" {
		return fmt.Errorf("base_url %q is not a valid absolute URL", c.BaseURL)
	}
	if c.URLPattern == "" {
		return fmt.Errorf("url_pattern must be set")
	}
	c.includeRe, err = regexp.Compile(c.URLPattern)
	if err != nil {
		return fmt.Errorf("compile url_pattern: %w", err)
	}
	c.exclusions, err = crawler.CompileExclusions(c.ExcludedURLs)
	if err != nil {
		return err
	}
	if c.Site.Title == "" {
		return fmt.Errorf("site.title must be set")
	}
	switch c.Output.Type {
	case "txt", "md":
	case "json", "xml":
		return fmt.Errorf("output.type %q is declared but content envelopes for it are not implemented; use txt or md", c.Output.Type)
	default:
		return fmt.Errorf("output.type must be one of txt, md, json, xml")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max_pages must be > 0")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must be >= 0")
	}
	if c.RequestDelaySeconds < 0 {
		return fmt.Errorf("request_delay_seconds must be >= 0")
	}
	return nil
}

// IncludePattern returns the compiled inclusion regex.
func (c Config) IncludePattern() *regexp.Regexp { return c.includeRe }

// Exclusions returns the compiled exclusion globs.
func (c Config) Exclusions() []glob.Glob { return c.exclusions }

// RequestDelay returns the politeness delay as a duration.
func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelaySeconds) * time.Second
}

// OutputDir resolves the artifact directory, defaulting to
// ./output/<host of base_url>.
func (c Config) OutputDir() string {
	if c.Output.Dir != "" {
		return c.Output.Dir
	}
	host := "unknown_site"
	if u, err := url.Parse(c.BaseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return filepath.Join("output", host)
}

// IndexPath resolves the index artifact path, swapping the default .txt
// extension when output.type is md and the name was not overridden.
func (c Config) IndexPath() string {
	return filepath.Join(c.OutputDir(), c.applyExtension(c.Output.File, DefaultIndexFile))
}

// FullPath resolves the full-content artifact path.
func (c Config) FullPath() string {
	return filepath.Join(c.OutputDir(), c.applyExtension(c.Output.FileFull, DefaultFullFile))
}

// LogPath resolves the crawl log location.
func (c Config) LogPath() string {
	return filepath.Join(c.OutputDir(), c.Output.LogFile)
}

func (c Config) applyExtension(name, defaultName string) string {
	if c.Output.Type == "txt" || name != defaultName {
		return name
	}
	return strings.TrimSuffix(name, ".txt") + "." + c.Output.Type
}
