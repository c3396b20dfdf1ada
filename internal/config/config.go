package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is loaded from the environment (optionally seeded by configs/.env).
type Config struct {
	Port         string   `envconfig:"PORT" default:"8080"`
	SheetsAPIURL string   `envconfig:"SHEETS_API_URL" required:"true"`
	SnapshotPath string   `envconfig:"SNAPSHOT_PATH" default:"data/snapshot.db"`
	CORSOrigins  []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"25s"`
	LongTimeout    time.Duration `envconfig:"LONG_TIMEOUT" default:"30s"`
	Retries        int           `envconfig:"RETRIES" default:"3"`
	RetryBackoff   time.Duration `envconfig:"RETRY_BACKOFF" default:"500ms"`

	SyncInterval     time.Duration `envconfig:"SYNC_INTERVAL" default:"5m"`
	IPLookupEndpoint string        `envconfig:"IP_LOOKUP_ENDPOINT" default:"https://api.ipify.org?format=json"`
}

// Load reads configs/.env if present, then parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
