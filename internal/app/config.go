package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete kiosk agent configuration, loadable from
// environment variables (KIOSK_ prefix), flags, or YAML config files.
type Config struct {
	Addr               string `default:"127.0.0.1:7070" usage:"local UI bridge listen address"`
	BackendURL         string `usage:"store backend base URL (KIOSK_BACKEND_URL or BACKEND_URL)" flag:"backend-url"`
	StoreID            string `default:"store-1" usage:"home store id for delivery windows and the journal" flag:"store-id"`
	JournalDatabaseURL string `usage:"optional PostgreSQL URL for the local order journal" flag:"journal-database-url"`
	Session            SessionConfig
	Graceful           GracefulConfig
}

// SessionConfig controls session timing.
type SessionConfig struct {
	IdleTimeout   time.Duration `default:"5m"     usage:"idle time before the session resets" flag:"idle-timeout"`
	PollInterval  time.Duration `default:"1200ms" usage:"payment status poll interval" flag:"poll-interval"`
	ReceiptReturn time.Duration `default:"20s"    usage:"auto-return delay from the receipt screen" flag:"receipt-return"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "KIOSK",
		Files:     []string{"config.yaml", "/etc/farmakiosk/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.BackendURL == "" {
		return nil, errors.New("backend URL is required: set KIOSK_BACKEND_URL or BACKEND_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps standard environment variable names onto the
// KIOSK_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.BackendURL == "" {
		if v := os.Getenv("BACKEND_URL"); v != "" {
			c.BackendURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "127.0.0.1:7070" {
		c.Addr = "127.0.0.1:" + port
	}
}
