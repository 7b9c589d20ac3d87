package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	SessionCookieName string `yaml:"session_cookie_name"`
	SessionTTLDays    int    `yaml:"session_ttl_days"`
	SecureCookies     bool   `yaml:"secure_cookies"`
	CookieDomain      string `yaml:"cookie_domain"`

	AllowedOrigins []string `yaml:"allowed_origins"`

	ConfirmationCodeLen        int `yaml:"confirmation_code_len"`
	ConfirmationCodeTTLMinutes int `yaml:"confirmation_code_ttl_minutes"`
	ResetCodeTTLMinutes        int `yaml:"reset_code_ttl_minutes"`

	BruteForce BruteForce `yaml:"brute_force"`

	// Disposable email rejection lists (exact domains and wildcard suffixes)
	DisposableEmailDomains   []string `yaml:"disposable_email_domains"`
	DisposableEmailWildcards []string `yaml:"disposable_email_wildcards"`
}

// BruteForce holds per-action attempt budgets over a shared window.
// Budgets are deliberately per endpoint (20 vs 50), not derived from a rule.
type BruteForce struct {
	WindowSeconds int            `yaml:"window_seconds"`
	Budgets       map[string]int `yaml:"budgets"`
}

type Private struct {
	Pg    Pg    `yaml:"pg"`
	Redis Redis `yaml:"redis"`
	Email Email `yaml:"email"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Email struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"sender_name"`
	Timeout    int    `yaml:"timeout"`
}

func (c *Config) SessionTTL() time.Duration {
	days := c.Public.SessionTTLDays
	if days == 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

func (c *Config) ConfirmationCodeTTL() time.Duration {
	minutes := c.Public.ConfirmationCodeTTLMinutes
	if minutes == 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

func (c *Config) ResetCodeTTL() time.Duration {
	minutes := c.Public.ResetCodeTTLMinutes
	if minutes == 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

func (b BruteForce) Window() time.Duration {
	if b.WindowSeconds == 0 {
		return time.Hour
	}
	return time.Duration(b.WindowSeconds) * time.Second
}

// Budget returns the attempt budget for a named action.
// Unknown actions get the most conservative observed budget.
func (b BruteForce) Budget(action string) int {
	if n, ok := b.Budgets[action]; ok && n > 0 {
		return n
	}
	return 20
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}
