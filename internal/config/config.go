package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// Panel entry points. The login URL carries the redirect back to
	// the game index so a successful login lands on the right page.
	DefaultLoginURL = "https://secure.xserver.ne.jp/xapanel/login/xserver/?request_page=xmgame%2Findex"
	DefaultIndexURL = "https://secure.xserver.ne.jp/xapanel/xmgame/index"

	defaultRenewHours   = 72
	defaultMinInterval  = 24 * time.Hour
	defaultNavTimeout   = 15 * time.Second
	defaultActionTime   = 4 * time.Second
	defaultLogPath      = "renew_result.md"
	defaultTimezone     = "Asia/Tokyo"
	defaultShotDir      = "screenshots"
	defaultPageDir      = "pages"
)

// Config is built once at process start and passed explicitly; nothing
// downstream reads the environment.
type Config struct {
	LoginURL string
	IndexURL string

	Email     string
	Password  string
	RawCookie string

	TargetGame string
	RenewHours int

	MinInterval   time.Duration
	ForceRenew    bool
	StrictSuccess bool

	LogPath  string
	Timezone string

	Headless      bool
	NavTimeout    time.Duration
	ActionTimeout time.Duration

	ScreenshotDir string
	PagesDir      string
}

// Load reads the environment into a Config. Every key is optional;
// defaults match the panel's known URLs and the operational defaults.
func Load() Config {
	return Config{
		LoginURL:      stringEnv("XSERVER_LOGIN_URL", DefaultLoginURL),
		IndexURL:      stringEnv("XSERVER_INDEX_URL", DefaultIndexURL),
		Email:         strings.TrimSpace(os.Getenv("XSERVER_EMAIL")),
		Password:      strings.TrimSpace(os.Getenv("XSERVER_PASSWORD")),
		RawCookie:     strings.TrimSpace(os.Getenv("XSERVER_COOKIE")),
		TargetGame:    strings.TrimSpace(os.Getenv("TARGET_GAME")),
		RenewHours:    intEnv("RENEW_HOURS", defaultRenewHours),
		MinInterval:   time.Duration(intEnv("MIN_INTERVAL_HOURS", int(defaultMinInterval/time.Hour))) * time.Hour,
		ForceRenew:    boolEnv("FORCE_RENEW", false),
		StrictSuccess: boolEnv("STRICT_SUCCESS", false),
		LogPath:       stringEnv("RENEW_LOG_MD", defaultLogPath),
		Timezone:      stringEnv("LOG_TIMEZONE", defaultTimezone),
		Headless:      boolEnv("HEADLESS", true),
		NavTimeout:    msEnv("PLAYWRIGHT_TIMEOUT_MS", defaultNavTimeout),
		ActionTimeout: msEnv("ACTION_TIMEOUT_MS", defaultActionTime),
		ScreenshotDir: stringEnv("SCREENSHOT_DIR", defaultShotDir),
		PagesDir:      stringEnv("PAGES_DIR", defaultPageDir),
	}
}

// HasCookie reports whether cookie login can be attempted.
func (c Config) HasCookie() bool { return c.RawCookie != "" }

// HasCredentials reports whether credential login can be attempted.
func (c Config) HasCredentials() bool { return c.Email != "" && c.Password != "" }

func stringEnv(name, def string) string {
	val := strings.TrimSpace(os.Getenv(name))
	if val == "" {
		return def
	}
	return val
}

func intEnv(name string, def int) int {
	val := strings.TrimSpace(os.Getenv(name))
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func msEnv(name string, def time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(name))
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Millisecond
}

func boolEnv(name string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(name))
	if val == "" {
		return def
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
