package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
)

// DefaultFile is the optional layered config file read by Load.
const DefaultFile = "auctionrelay.json5"

type Config struct {
	Port     string `json:"port"`
	GinMode  string `json:"ginMode"`
	LogLevel string `json:"logLevel"`

	Browser  BrowserConfig  `json:"browser"`
	Scrape   ScrapeConfig   `json:"scrape"`
	Relay    RelayConfig    `json:"relay"`
	Imaging  ImagingConfig  `json:"imaging"`
	Security SecurityConfig `json:"security"`

	SessionDBPath string `json:"sessionDbPath"`
}

type BrowserConfig struct {
	Headless  bool   `json:"headless"`
	ChromeBin string `json:"chromeBin"`
	UserAgent string `json:"userAgent"`
}

type ScrapeConfig struct {
	SearchURL         string `json:"searchUrl"`
	DetailBaseURL     string `json:"detailBaseUrl"`
	CookiesPath       string `json:"cookiesPath"`
	NavigationTimeout string `json:"navigationTimeout"`
	SelectorTimeout   string `json:"selectorTimeout"`
	FollowPagination  bool   `json:"followPagination"`
	MaxPages          int    `json:"maxPages"`
}

type RelayConfig struct {
	WhatsAppBridgeURL string `json:"whatsappBridgeUrl"`
	TelegramBridgeURL string `json:"telegramBridgeUrl"`
}

type ImagingConfig struct {
	ImgBBAPIKey    string `json:"imgbbApiKey"`
	ImgBBUploadURL string `json:"imgbbUploadUrl"`
}

type SecurityConfig struct {
	AdminKeyHash       string `json:"adminKeyHash"`
	RateLimitPerMinute int    `json:"rateLimitPerMinute"`
	RateBurst          int    `json:"rateBurst"`
}

const (
	defaultNavigationTimeout = 60 * time.Second
	defaultSelectorTimeout   = 20 * time.Second
	maxPagesCap              = 5
)

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Port:     "8080",
		GinMode:  "debug",
		LogLevel: "info",
		Browser: BrowserConfig{
			Headless: true,
		},
		Scrape: ScrapeConfig{
			SearchURL:         "https://www.iaai.com/Search",
			DetailBaseURL:     "https://www.iaai.com/VehicleDetail/",
			CookiesPath:       "cookies.json",
			NavigationTimeout: defaultNavigationTimeout.String(),
			SelectorTimeout:   defaultSelectorTimeout.String(),
			MaxPages:          maxPagesCap,
		},
		Relay: RelayConfig{
			WhatsAppBridgeURL: "http://localhost:3000/messages",
			TelegramBridgeURL: "http://localhost:3000/telegram",
		},
		Imaging: ImagingConfig{
			ImgBBUploadURL: "https://api.imgbb.com/1/upload",
		},
		Security: SecurityConfig{
			RateLimitPerMinute: 10,
			RateBurst:          3,
		},
		SessionDBPath: filepath.Join("data", "sessions.db"),
	}
}

// Load reads .env, the layered config file and the environment, in that
// order of increasing priority. path may be empty to use DefaultFile.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Could not load .env file", "error", err)
	}
	if path == "" {
		path = DefaultFile
	}

	cfg := Default()
	file, err := ReadConfig[Config](path)
	switch {
	case err == nil:
		if err := mergo.Merge(&cfg, file, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.Scrape.MaxPages = clampPages(cfg.Scrape.MaxPages)
	return &cfg, nil
}

func (c *Config) applyEnv() {
	envString("PORT", &c.Port)
	envString("GIN_MODE", &c.GinMode)
	envString("LOG_LEVEL", &c.LogLevel)

	envBool("HEADLESS", &c.Browser.Headless)
	envString("CHROME_BIN", &c.Browser.ChromeBin)
	envString("USER_AGENT", &c.Browser.UserAgent)

	envString("IAAI_SEARCH_URL", &c.Scrape.SearchURL)
	envString("IAAI_DETAIL_BASE_URL", &c.Scrape.DetailBaseURL)
	envString("COOKIES_PATH", &c.Scrape.CookiesPath)
	envString("NAVIGATION_TIMEOUT", &c.Scrape.NavigationTimeout)
	envString("SELECTOR_TIMEOUT", &c.Scrape.SelectorTimeout)
	envBool("FOLLOW_PAGINATION", &c.Scrape.FollowPagination)
	envInt("MAX_PAGES", &c.Scrape.MaxPages)

	envString("WHATSAPP_BRIDGE_URL", &c.Relay.WhatsAppBridgeURL)
	envString("TELEGRAM_BRIDGE_URL", &c.Relay.TelegramBridgeURL)

	envString("IMGBB_API_KEY", &c.Imaging.ImgBBAPIKey)
	envString("IMGBB_UPLOAD_URL", &c.Imaging.ImgBBUploadURL)

	envString("ADMIN_KEY_HASH", &c.Security.AdminKeyHash)
	envInt("RATE_LIMIT_PER_MINUTE", &c.Security.RateLimitPerMinute)
	envInt("RATE_BURST", &c.Security.RateBurst)

	envString("SESSION_DB_PATH", &c.SessionDBPath)
}

// NavTimeout is the bound on a single page navigation.
func (s ScrapeConfig) NavTimeout() time.Duration {
	return parseDuration("navigationTimeout", s.NavigationTimeout, defaultNavigationTimeout)
}

// SelTimeout is the bound on waiting for the listing container.
func (s ScrapeConfig) SelTimeout() time.Duration {
	return parseDuration("selectorTimeout", s.SelectorTimeout, defaultSelectorTimeout)
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func parseDuration(name, raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration, using default", "key", name, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func clampPages(n int) int {
	if n <= 0 || n > maxPagesCap {
		return maxPagesCap
	}
	return n
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("Invalid boolean, keeping default", "key", key, "value", v)
		return
	}
	*dst = b
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Invalid integer, keeping default", "key", key, "value", v)
		return
	}
	*dst = n
}
