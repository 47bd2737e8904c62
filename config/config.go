package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting of the service.
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	// Database
	DBDriver   string `mapstructure:"DB_DRIVER"` // mysql, postgres, sqlite
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBPath     string `mapstructure:"DB_PATH"`

	// Redis change feed, optional
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// Completion service (OpenAI compatible)
	AIAPIKey      string `mapstructure:"AI_API_KEY"`
	AIAPIEndpoint string `mapstructure:"AI_API_ENDPOINT"`
	AIModel       string `mapstructure:"AI_MODEL"`
	AIVisionModel string `mapstructure:"AI_VISION_MODEL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Attachment storage
	StorageRoot      string `mapstructure:"STORAGE_ROOT"`
	StoragePublicURL string `mapstructure:"STORAGE_PUBLIC_URL"`

	// Enrichment
	EnrichSettleDelayMS    int `mapstructure:"ENRICH_SETTLE_DELAY_MS"`
	EnrichMinContentLength int `mapstructure:"ENRICH_MIN_CONTENT_LENGTH"`
	EnrichSummaryBudget    int `mapstructure:"ENRICH_SUMMARY_BUDGET"`
}

var defaults = map[string]any{
	"ENVIRONMENT":               "development",
	"SERVER_PORT":               "8080",
	"DB_DRIVER":                 "sqlite",
	"DB_HOST":                   "localhost",
	"DB_PORT":                   "",
	"DB_USER":                   "",
	"DB_PASSWORD":               "",
	"DB_NAME":                   "tilenotes",
	"DB_PATH":                   "tilenotes.db",
	"REDIS_HOST":                "",
	"REDIS_PORT":                "6379",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"AI_API_KEY":                "",
	"AI_API_ENDPOINT":           "https://api.openai.com/v1",
	"AI_MODEL":                  "gpt-4o-mini",
	"AI_VISION_MODEL":           "gpt-4o-mini",
	"JWT_SECRET":                "",
	"STORAGE_ROOT":              "storage",
	"STORAGE_PUBLIC_URL":        "http://localhost:8080/files",
	"ENRICH_SETTLE_DELAY_MS":    2500,
	"ENRICH_MIN_CONTENT_LENGTH": 20,
	"ENRICH_SUMMARY_BUDGET":     150,
}

// LoadConfig reads .env from path and overlays the environment.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	// Keys must be known to viper for AutomaticEnv to reach Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		// The file is optional; the environment alone is enough.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}

// GetDBConnString returns the DSN for the configured driver.
func (c *Config) GetDBConnString() string {
	switch c.DBDriver {
	case "mysql":
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, port, c.DBName)
	case "postgres":
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.DBHost, port, c.DBUser, c.DBPassword, c.DBName)
	default:
		return c.DBPath
	}
}

// GetRedisConnString returns host:port, or "" when Redis is not configured.
func (c *Config) GetRedisConnString() string {
	if c.RedisHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// SettleDelay is the wait between the last edit and enrichment.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.EnrichSettleDelayMS) * time.Millisecond
}
