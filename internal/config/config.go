package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	MediaS3     = "s3"
	MediaGridFS = "gridfs"
)

// Config holds every runtime setting of the service. Values come from an optional
// YAML file first and are then overridden by environment variables.
type Config struct {
	Port string `yaml:"port"`

	StoreDriver   string `yaml:"store_driver"`
	MongoURL      string `yaml:"mongodb_url"`
	MongoDatabase string `yaml:"mongodb_database"`
	DatabaseURL   string `yaml:"database_url"`

	JWTSecret string        `yaml:"jwt_private_key"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`

	CORSOrigins      []string `yaml:"cors_origins"`
	EnforceOwnership bool     `yaml:"enforce_ownership"`

	MediaBackend   string `yaml:"media_backend"`
	S3Bucket       string `yaml:"s3_bucket"`
	S3Region       string `yaml:"s3_region"`
	S3AccessKey    string `yaml:"s3_access_key"`
	S3SecretKey    string `yaml:"s3_secret_access_key"`
	S3Endpoint     string `yaml:"s3_endpoint"`
	PublicBaseURL  string `yaml:"public_base_url"`
	UploadMaxFiles int    `yaml:"upload_max_files"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the settings the service runs with when nothing is configured.
func Default() *Config {
	return &Config{
		Port:             "4000",
		StoreDriver:      DriverMongo,
		MongoDatabase:    "car-rentals",
		CORSOrigins:      []string{"http://localhost:5173"},
		EnforceOwnership: true,
		MediaBackend:     MediaS3,
		S3Bucket:         "pmish-car-rentals",
		S3Region:         "us-east-1",
		PublicBaseURL:    "http://localhost:4000",
		UploadMaxFiles:   100,
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

// Load builds the configuration. filename may be empty; a missing file is not an error.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", filename, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("config: read %s: %w", filename, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("PORT", &c.Port)
	str("STORE_DRIVER", &c.StoreDriver)
	str("MONGODB_URL", &c.MongoURL)
	str("MONGODB_DATABASE", &c.MongoDatabase)
	str("DATABASE_URL", &c.DatabaseURL)
	str("JWT_PRIVATE_KEY", &c.JWTSecret)
	str("MEDIA_BACKEND", &c.MediaBackend)
	str("S3_BUCKET", &c.S3Bucket)
	str("S3_DEFAULT_REGION", &c.S3Region)
	str("S3_ACCESS_KEY", &c.S3AccessKey)
	str("S3_SECRET_ACCESS_KEY", &c.S3SecretKey)
	str("S3_ENDPOINT", &c.S3Endpoint)
	str("PUBLIC_BASE_URL", &c.PublicBaseURL)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	if v, ok := lookup("CORS_ORIGIN"); ok && v != "" {
		c.CORSOrigins = splitOrigins(v)
	}
	if v, ok := lookup("JWT_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: JWT_TTL: %w", err)
		}
		c.JWTTTL = d
	}
	if v, ok := lookup("ENFORCE_OWNERSHIP"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: ENFORCE_OWNERSHIP: %w", err)
		}
		c.EnforceOwnership = b
	}
	if v, ok := lookup("UPLOAD_MAX_FILES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: UPLOAD_MAX_FILES: %w", err)
		}
		c.UploadMaxFiles = n
	}
	return nil
}

// Validate reports settings that would make the service fail at runtime.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_PRIVATE_KEY is required")
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURL == "" {
			return errors.New("config: MONGODB_URL is required for the mongo store")
		}
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the %s store", c.StoreDriver)
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.MediaBackend {
	case MediaS3:
		if c.S3Bucket == "" {
			return errors.New("config: S3_BUCKET is required for the s3 media backend")
		}
	case MediaGridFS:
		if c.MongoURL == "" {
			return errors.New("config: MONGODB_URL is required for the gridfs media backend")
		}
	default:
		return fmt.Errorf("config: unknown MEDIA_BACKEND %q", c.MediaBackend)
	}
	if c.JWTTTL < 0 {
		return errors.New("config: JWT_TTL must not be negative")
	}
	if c.UploadMaxFiles <= 0 {
		return errors.New("config: UPLOAD_MAX_FILES must be positive")
	}
	return nil
}

// NeedsMongo reports whether a Mongo client has to be opened at startup.
func (c *Config) NeedsMongo() bool {
	return c.StoreDriver == DriverMongo || c.MediaBackend == MediaGridFS
}

func splitOrigins(v string) []string {
	var origins []string
	for _, p := range strings.Split(v, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
