package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"talktonic/internal/dialogue"
)

type Config struct {
	Server struct {
		Host           string   `json:"host" toml:"host"`
		Port           int      `json:"port" toml:"port"`
		Subpath        string   `json:"subpath" toml:"subpath"`
		JWTSecret      string   `json:"jwtSecret" toml:"jwtSecret"`
		AllowedOrigins []string `json:"allowedOrigins" toml:"allowedOrigins"`
	} `json:"server" toml:"server"`
	Database struct {
		Driver string `json:"driver" toml:"driver"` // "postgres" or "sqlite"; empty disables the archive
		DSN    string `json:"dsn" toml:"dsn"`
	} `json:"database" toml:"database"`
	Redis struct {
		Addr     string `json:"addr" toml:"addr"`
		Password string `json:"password" toml:"password"`
		DB       int    `json:"db" toml:"db"`
	} `json:"redis" toml:"redis"`
	Session struct {
		Store      string `json:"store" toml:"store"` // "memory" or "redis"
		TTLMinutes int    `json:"ttl_minutes" toml:"ttl_minutes"`
	} `json:"session" toml:"session"`
	LLM struct {
		URL                 string `json:"url" toml:"url"`
		Model               string `json:"model" toml:"model"`
		APIKey              string `json:"api_key" toml:"api_key"`
		TimeoutSeconds      int    `json:"timeout_seconds" toml:"timeout_seconds"`
		MaxConcurrent       int    `json:"max_concurrent" toml:"max_concurrent"`
		CriticalQueueSize   int    `json:"critical_queue_size" toml:"critical_queue_size"`
		BackgroundQueueSize int    `json:"background_queue_size" toml:"background_queue_size"`
	} `json:"llm" toml:"llm"`
	Search struct {
		Provider       string `json:"provider" toml:"provider"` // "google" or "searxng"
		GoogleURL      string `json:"google_url" toml:"google_url"`
		GoogleAPIKey   string `json:"google_api_key" toml:"google_api_key"`
		GoogleEngineID string `json:"google_engine_id" toml:"google_engine_id"`
		SearxNGURL     string `json:"searxng_url" toml:"searxng_url"`
		MaxResults     int    `json:"max_results" toml:"max_results"`
		TimeoutSeconds int    `json:"timeout_seconds" toml:"timeout_seconds"`
	} `json:"search" toml:"search"`
	WebPage struct {
		UserAgent      string `json:"user_agent" toml:"user_agent"`
		Extractor      string `json:"extractor" toml:"extractor"` // strip, dom or readability
		MaxChars       int    `json:"max_chars" toml:"max_chars"`
		MaxSizeMB      int    `json:"max_size_mb" toml:"max_size_mb"`
		TimeoutSeconds int    `json:"timeout_seconds" toml:"timeout_seconds"`
		PDFLicenseKey  string `json:"pdf_license_key" toml:"pdf_license_key"`
	} `json:"webpage" toml:"webpage"`
	Triggers  dialogue.Triggers `json:"triggers" toml:"triggers"`
	RateLimit struct {
		PerSecond float64 `json:"per_second" toml:"per_second"`
		Burst     int     `json:"burst" toml:"burst"`
	} `json:"rate_limit" toml:"rate_limit"`
}

// Environment variables that override file values when set.
const (
	EnvGroqAPIKey     = "GROQ_API_KEY"
	EnvGoogleAPIKey   = "GOOGLE_API_KEY"
	EnvSearchEngineID = "SEARCH_ENGINE_ID"
	EnvJWTSecret      = "TALKTONIC_JWT_SECRET"
	EnvPDFLicenseKey  = "UNIPDF_LICENSE_KEY"
)

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads path once per process and caches the result.
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		c, err := Load(path)
		if err != nil {
			cfgErr = err
			return
		}
		if c.Server.JWTSecret == "" {
			cfgErr = errors.New("jwtSecret must be set in config")
			return
		}
		cfg = c
	})
	return cfg, cfgErr
}

// Load reads a JSON or TOML config file (by extension), fills defaults and
// applies environment overrides. It does not touch the cached config.
func Load(path string) (*Config, error) {
	LoadDotEnv()

	c := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, c); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			return nil, fmt.Errorf("invalid config format: %w", err)
		}
	default:
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("invalid config format: %w", err)
		}
	}
	c.applyDefaults()
	c.applyEnv()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns a config built from defaults and the environment only.
func Default() *Config {
	LoadDotEnv()
	c := &Config{}
	c.applyDefaults()
	c.applyEnv()
	return c
}

// LoadDotEnv loads .env from the working directory if there is one.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[Config] warning: could not load .env: %v", err)
	}
}

func GetConfig() *Config {
	return cfg
}

func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Session.Store == "" {
		c.Session.Store = "memory"
	}
	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 24 * 60
	}
	if c.LLM.URL == "" {
		c.LLM.URL = "https://api.groq.com/openai/v1/chat/completions"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama3-8b-8192"
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 20
	}
	if c.LLM.MaxConcurrent == 0 {
		c.LLM.MaxConcurrent = 2
	}
	if c.LLM.CriticalQueueSize == 0 {
		c.LLM.CriticalQueueSize = 20
	}
	if c.LLM.BackgroundQueueSize == 0 {
		c.LLM.BackgroundQueueSize = 50
	}
	if c.Search.Provider == "" {
		c.Search.Provider = "google"
	}
	if c.Search.GoogleURL == "" {
		c.Search.GoogleURL = "https://www.googleapis.com/customsearch/v1"
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = 5
	}
	if c.Search.TimeoutSeconds == 0 {
		c.Search.TimeoutSeconds = 10
	}
	if c.WebPage.UserAgent == "" {
		c.WebPage.UserAgent = "Mozilla/5.0 (compatible; TalkTonic/1.0)"
	}
	if c.WebPage.Extractor == "" {
		c.WebPage.Extractor = "strip"
	}
	if c.WebPage.MaxChars == 0 {
		c.WebPage.MaxChars = 3500
	}
	if c.WebPage.MaxSizeMB == 0 {
		c.WebPage.MaxSizeMB = 5
	}
	if c.WebPage.TimeoutSeconds == 0 {
		c.WebPage.TimeoutSeconds = 10
	}
	def := dialogue.DefaultTriggers()
	if c.Triggers.Keywords == nil {
		c.Triggers.Keywords = def.Keywords
	}
	if c.Triggers.Uncertainty == nil {
		c.Triggers.Uncertainty = def.Uncertainty
	}
	if c.RateLimit.PerSecond == 0 {
		c.RateLimit.PerSecond = 2
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
}

func (c *Config) applyEnv() {
	setFromEnv(&c.LLM.APIKey, EnvGroqAPIKey)
	setFromEnv(&c.Search.GoogleAPIKey, EnvGoogleAPIKey)
	setFromEnv(&c.Search.GoogleEngineID, EnvSearchEngineID)
	setFromEnv(&c.Server.JWTSecret, EnvJWTSecret)
	setFromEnv(&c.WebPage.PDFLicenseKey, EnvPDFLicenseKey)
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	switch c.Search.Provider {
	case "google", "searxng":
	default:
		return fmt.Errorf("unknown search provider %q", c.Search.Provider)
	}
	if c.Search.Provider == "searxng" && c.Search.SearxNGURL == "" {
		return errors.New("search.searxng_url must be set for the searxng provider")
	}
	switch c.WebPage.Extractor {
	case "strip", "dom", "readability":
	default:
		return fmt.Errorf("unknown webpage extractor %q", c.WebPage.Extractor)
	}
	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	return nil
}
