package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tobias-fyi/xebec/internal/blockchain"
	"github.com/tobias-fyi/xebec/internal/events"
	"github.com/tobias-fyi/xebec/internal/logging"
)

type Config struct {
	APIPort    string
	NodeID     string
	RedisAddrs []string
	Channel    string
	Difficulty int
	GinMode    string
	Log        logging.Config
}

func Default() Config {
	return Config{
		APIPort:    "5000",
		NodeID:     NewNodeID(),
		Channel:    events.DefaultChannel,
		Difficulty: blockchain.DefaultDifficulty,
		GinMode:    "release",
		Log: logging.Config{
			Level:  "info",
			Format: "text",
		},
	}
}

// NewNodeID returns a random identifier in the dashless form used on the wire.
func NewNodeID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Load reads the node settings from the environment on top of Default.
func Load() (Config, error) {
	cfg := Default()

	cfg.APIPort = envOr("API_PORT", cfg.APIPort)
	cfg.NodeID = envOr("NODE_ID", cfg.NodeID)
	cfg.RedisAddrs = events.ParseAddrs(os.Getenv("REDIS_ADDRS"))
	cfg.Channel = envOr("REDIS_CHANNEL", cfg.Channel)
	cfg.GinMode = envOr("GIN_MODE", cfg.GinMode)
	cfg.Log.Level = envOr("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envOr("LOG_FORMAT", cfg.Log.Format)

	if v := strings.TrimSpace(os.Getenv("POW_DIFFICULTY")); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("POW_DIFFICULTY: %w", err)
		}
		cfg.Difficulty = d
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP API.
func (c Config) Addr() string {
	return ":" + c.APIPort
}

// EventsEnabled reports whether forged blocks should be published.
func (c Config) EventsEnabled() bool {
	return len(c.RedisAddrs) > 0
}

func validate(cfg Config) error {
	if _, err := strconv.ParseUint(cfg.APIPort, 10, 16); err != nil {
		return fmt.Errorf("invalid API_PORT: %q", cfg.APIPort)
	}
	if cfg.Difficulty < 1 || cfg.Difficulty > 64 {
		return fmt.Errorf("POW_DIFFICULTY out of range: %d", cfg.Difficulty)
	}
	if cfg.NodeID == "" {
		return errors.New("NODE_ID must not be empty")
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %q", cfg.Log.Level)
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %q", cfg.Log.Format)
	}

	switch cfg.GinMode {
	case "release", "debug", "test":
	default:
		return fmt.Errorf("invalid GIN_MODE: %q", cfg.GinMode)
	}
	return nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
