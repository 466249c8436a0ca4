package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides: MESSAGEBOARD_AUTH__SECRET sets auth.secret.
const EnvPrefix = "MESSAGEBOARD_"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Storage  StorageConfig  `koanf:"storage"`
	Auth     AuthConfig     `koanf:"auth"`
	Redis    RedisConfig    `koanf:"redis"`
	Queue    QueueConfig    `koanf:"queue"`
	Importer ImporterConfig `koanf:"importer"`
	Notifier NotifierConfig `koanf:"notifier"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Addr    string `koanf:"addr"`
	BaseURL string `koanf:"base_url"`
}

type StorageConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

type AuthConfig struct {
	Secret   string        `koanf:"secret"`
	Issuer   string        `koanf:"issuer"`
	Cookie   string        `koanf:"cookie"`
	LoginURL string        `koanf:"login_url"`
	TokenTTL time.Duration `koanf:"token_ttl"`
}

type RedisConfig struct {
	Addr      string        `koanf:"addr"`
	NoticeTTL time.Duration `koanf:"notice_ttl"`
}

type QueueConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
	GroupID string   `koanf:"group_id"`
}

type ImporterConfig struct {
	Channels []string      `koanf:"channels"`
	Interval time.Duration `koanf:"interval"`
	AuthorID int64         `koanf:"author_id"`
	Author   string        `koanf:"author"`
	FeedURL  string        `koanf:"feed_url"`
}

type NotifierConfig struct {
	TelegramToken   string   `koanf:"telegram_token"`
	TelegramChatIDs []string `koanf:"telegram_chat_ids"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load reads the YAML file at path, when it exists, and then applies
// environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost" + c.Server.Addr
	}
	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.DSN == "" && c.Storage.Driver == "sqlite" {
		c.Storage.DSN = "messageboard.db"
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "messageboard"
	}
	if c.Auth.Cookie == "" {
		c.Auth.Cookie = "board_session"
	}
	if c.Auth.LoginURL == "" {
		c.Auth.LoginURL = "/login"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Redis.NoticeTTL == 0 {
		c.Redis.NoticeTTL = 5 * time.Minute
	}
	if c.Queue.Topic == "" {
		c.Queue.Topic = "messageboard.messages"
	}
	if c.Queue.GroupID == "" {
		c.Queue.GroupID = "messageboard-notifier"
	}
	if c.Importer.Interval == 0 {
		c.Importer.Interval = 15 * time.Minute
	}
	if c.Importer.Author == "" {
		c.Importer.Author = "Feed importer"
	}
	if c.Importer.FeedURL == "" {
		c.Importer.FeedURL = "https://www.youtube.com/feeds/videos.xml"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("storage.driver must be postgres or sqlite, got %q", c.Storage.Driver)
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required")
	}
	if len(c.Auth.Secret) < 32 {
		return fmt.Errorf("auth.secret must be at least 32 bytes")
	}
	if len(c.Importer.Channels) > 0 && c.Importer.AuthorID <= 0 {
		return fmt.Errorf("importer.author_id is required when importer.channels is set")
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

func (l LogConfig) Logger() *slog.Logger {
	level, err := l.level()
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
