// Package config reads process settings from the environment (optionally a
// .env file) and store settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

type Config struct {
	HTTPPort        string
	LogLevel        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	SessionTTL      time.Duration

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	DB repository.Credentials

	KafkaBrokers []string

	PaystackPublicKey string
	PaystackSecretKey string
	PaystackBaseURL   string

	StoreConfigPath string
	Store           Store
}

// Store holds merchant settings that change without a deploy.
type Store struct {
	Currency       string               `yaml:"currency"`
	MinPhoneLength int                  `yaml:"min_phone_length"`
	WhatsAppNumber string               `yaml:"whatsapp_number"`
	SupportContact string               `yaml:"support_contact"`
	Bank           checkout.BankDetails `yaml:"bank"`
}

func DefaultStore() Store {
	return Store{
		Currency:       domain.DefaultCurrency,
		MinPhoneLength: checkout.DefaultMinPhoneLength,
	}
}

// Load reads envFile first when it exists; variables already set in the
// environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	requestTimeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RequestTimeout:  requestTimeout,
		ShutdownTimeout: 10 * time.Second,
		SessionTTL:      sessionTTL,
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		DB: repository.Credentials{
			Driver:            getEnv("DB_DRIVER", repository.DriverPostgres),
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              dbPort,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "storefront"),
			SQLitePath:        getEnv("SQLITE_PATH", "storefront.db"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", ""),
		},
		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "")),
		PaystackPublicKey: getEnv("PAYSTACK_PUBLIC_KEY", ""),
		PaystackSecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackBaseURL:   getEnv("PAYSTACK_BASE_URL", ""),
		StoreConfigPath:   getEnv("STORE_CONFIG", "store.yaml"),
	}
	if cfg.DB.MigrationsDirPath == "" {
		cfg.DB.MigrationsDirPath = "./internal/repository/migrations/" + cfg.DB.Driver
	}

	store, err := LoadStore(cfg.StoreConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.Store = store
	return cfg, nil
}

// LoadStore parses the store YAML. A missing file yields the defaults.
func LoadStore(path string) (Store, error) {
	store := DefaultStore()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return store, fmt.Errorf("failed to read store config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &store); err != nil {
		return store, fmt.Errorf("failed to parse store config %s: %w", path, err)
	}
	if store.Currency == "" {
		store.Currency = domain.DefaultCurrency
	}
	if store.MinPhoneLength <= 0 {
		store.MinPhoneLength = checkout.DefaultMinPhoneLength
	}
	return store, nil
}

// CheckoutSettings projects the config onto what the checkout flow needs.
func (c *Config) CheckoutSettings() checkout.Settings {
	return checkout.Settings{
		Currency:          c.Store.Currency,
		PaystackPublicKey: c.PaystackPublicKey,
		MinPhoneLength:    c.Store.MinPhoneLength,
		Bank:              c.Store.Bank,
		WhatsAppNumber:    c.Store.WhatsAppNumber,
		SupportContact:    c.Store.SupportContact,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
