package config

import (
	"flag"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"bot/app/storage/database"
	"bot/pkg/log"
)

const (
	defaultConfigPath = "./configs/config.yaml"

	defaultRestAddr        = ":8000"
	defaultMigrationsTable = "bot_schema_migrations"

	defaultTelegramApiUrl = "https://api.telegram.org"
	defaultPollTimeout    = 50 * time.Second

	defaultSessionStore    = SessionStoreMemory
	defaultIdleTTL         = 30 * time.Minute
	defaultCleanupInterval = 5 * time.Minute
)

const (
	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
)

type Telegram struct {
	Token       string        `mapstructure:"token"`
	ApiUrl      string        `mapstructure:"apiUrl"`
	PollTimeout time.Duration `mapstructure:"pollTimeout"`
}

func (t *Telegram) Validate() error {
	if t.Token == "" {
		return errors.New("you must provide a telegram bot token in a config")
	}

	if t.ApiUrl == "" {
		return errors.New("you must provide a telegram api url in a config")
	}

	if t.PollTimeout <= 0 {
		return errors.New("you must provide a positive telegram poll timeout in a config")
	}

	return nil
}

type WalletBackend struct {
	BasePath string `mapstructure:"basePath"`
	ApiKey   string `mapstructure:"apiKey"`
}

func (w *WalletBackend) Validate() error {
	if w.BasePath == "" {
		return errors.New("you must provide base path for the wallet backend")
	}

	return nil
}

type Session struct {
	Store           string        `mapstructure:"store"`
	IdleTTL         time.Duration `mapstructure:"idleTtl"`
	CleanupInterval time.Duration `mapstructure:"cleanupInterval"`
}

func (s *Session) Validate() error {
	if s.Store != SessionStoreMemory && s.Store != SessionStorePostgres {
		return errors.Errorf("unknown session store: %s", s.Store)
	}

	if s.IdleTTL <= 0 {
		return errors.New("you must provide a positive session idle ttl in a config")
	}

	return nil
}

type Config struct {
	RestAddr      string          `mapstructure:"restAddr"`
	Telegram      Telegram        `mapstructure:"telegram"`
	WalletBackend WalletBackend   `mapstructure:"walletBackend"`
	Session       Session         `mapstructure:"session"`
	Database      database.Config `mapstructure:"database"`
	Logging       log.Config      `mapstructure:"log"`
}

func Parse() (*Config, error) {
	configPath := flag.String("config", defaultConfigPath, "configuration file path")
	flag.Parse()

	// set reasonable defaults
	viper.SetDefault("restAddr", defaultRestAddr)
	viper.SetDefault("telegram.apiUrl", defaultTelegramApiUrl)
	viper.SetDefault("telegram.pollTimeout", defaultPollTimeout)
	viper.SetDefault("session.store", defaultSessionStore)
	viper.SetDefault("session.idleTtl", defaultIdleTTL)
	viper.SetDefault("session.cleanupInterval", defaultCleanupInterval)
	viper.SetDefault("database.migrationsTable", defaultMigrationsTable)

	// read a config file
	viper.SetConfigFile(*configPath)
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed to read a file")
	}

	// unmarshal to a config struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal a config")
	}

	// ensure telegram credentials are provided
	if err := cfg.Telegram.Validate(); err != nil {
		return nil, err
	}

	// ensure the wallet backend is reachable by config
	if err := cfg.WalletBackend.Validate(); err != nil {
		return nil, err
	}

	// ensure the session store selection is valid
	if err := cfg.Session.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
