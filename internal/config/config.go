package config

import (
	"log"
	"os"
	"strconv"
)

type PostgresConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout int
	Timeout     int
	Prefix      string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
	URLTTLMinutes   int
}

type StorageConfig struct {
	// Driver is "local" or "s3".
	Driver            string
	Dir               string
	PublicPrefix      string
	ExternalURL       string
	CleanupAfterHours int
}

type CollectConfig struct {
	CompanyID     int64
	Separator     string
	EOL           string
	ReturnCharset string
	StatusTTL     int
}

type AppConfig struct {
	Port     string
	Postgres PostgresConfig
	Redis    RedisConfig
	S3       S3Config
	Storage  StorageConfig
	Collect  CollectConfig
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int value %q: %v", s, err)
	}
	return i
}

func mustInt64(s string) int64 {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Fatalf("invalid int value %q: %v", s, err)
	}
	return i
}

func mustBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool value %q: %v", s, err)
	}
	return b
}

// unescape turns the literal "\r\n" style sequences used in .env files into control characters.
func unescape(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}

func Load() AppConfig {
	return AppConfig{
		Port: getenv("APP_PORT", "8010"),
		Postgres: PostgresConfig{
			Host:         getenv("PG_HOST", "127.0.0.1"),
			Port:         mustAtoi(getenv("PG_PORT", "5432")),
			User:         getenv("PG_USER", "root"),
			Password:     getenv("PG_PASSWORD", "hello-world"),
			DBName:       getenv("PG_DB", "collect"),
			SSLMode:      getenv("PG_SSLMODE", "disable"),
			MaxOpenConns: mustAtoi(getenv("PG_MAX_OPEN_CONNS", "10")),
		},
		Redis: RedisConfig{
			Addr:        getenv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    getenv("REDIS_PASSWORD", ""),
			DB:          mustAtoi(getenv("REDIS_DB", "0")),
			MaxRetries:  mustAtoi(getenv("REDIS_MAX_RETRIES", "5")),
			DialTimeout: mustAtoi(getenv("REDIS_DIAL_TIMEOUT", "10")),
			Timeout:     mustAtoi(getenv("REDIS_TIMEOUT", "5")),
			Prefix:      getenv("REDIS_PREFIX", "payment_collect_"),
		},
		S3: S3Config{
			Endpoint:        getenv("S3_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getenv("S3_ACCESS_KEY", "minio"),
			SecretAccessKey: getenv("S3_SECRET_KEY", "minio123"),
			Bucket:          getenv("S3_BUCKET", "collects"),
			Region:          getenv("S3_REGION", "us-east-1"),
			UseSSL:          mustBool(getenv("S3_USE_SSL", "false")),
			Prefix:          getenv("S3_PREFIX", "visa/"),
			URLTTLMinutes:   mustAtoi(getenv("S3_URL_TTL_MINUTES", "60")),
		},
		Storage: StorageConfig{
			Driver:            getenv("STORAGE_DRIVER", "local"),
			Dir:               getenv("STORAGE_DIR", "./collects"),
			PublicPrefix:      getenv("FILES_PUBLIC_PREFIX", "/files"),
			ExternalURL:       getenv("EXTERNAL_URL", ""),
			CleanupAfterHours: mustAtoi(getenv("STORAGE_CLEANUP_AFTER_HOURS", "0")),
		},
		Collect: CollectConfig{
			CompanyID:     mustInt64(getenv("COLLECT_COMPANY_ID", "1")),
			Separator:     getenv("COLLECT_CSV_SEPARATOR", ";"),
			EOL:           unescape(getenv("COLLECT_EOL", `\r\n`)),
			ReturnCharset: getenv("COLLECT_RETURN_CHARSET", "utf-8"),
			StatusTTL:     mustAtoi(getenv("COLLECT_STATUS_TTL_MINUTES", "1440")),
		},
	}
}
