package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppPort string
	Env     string

	DBDriver       string
	DBPath         string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPass         string
	DBName         string
	DBMaxConns     int
	DBReadReplicas []string
	AutoMigrate    bool

	RedisAddr string
	CacheTTL  time.Duration

	KafkaBrokers     string
	KafkaTopicPrefix string

	OTELEndpoint    string
	OTELServiceName string
	OTELSampleRatio float64

	LogLevel  string
	LogFormat string
}

func LoadConfig() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", ":8080"),
		Env:     getEnv("ENV", "dev"),

		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DBPath:         getEnv("DB_PATH", "./app.db"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPass:         getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "userpost_db"),
		DBMaxConns:     atoiDef(os.Getenv("DB_MAX_CONNS"), 40),
		DBReadReplicas: splitList(os.Getenv("DB_READ_REPLICAS")),
		AutoMigrate:    getEnv("AUTO_MIGRATE", "true") == "true",

		RedisAddr: os.Getenv("REDIS_ADDR"),
		CacheTTL:  durationDef(os.Getenv("CACHE_TTL"), 10*time.Minute),

		KafkaBrokers:     os.Getenv("KAFKA_BOOTSTRAP_SERVERS"),
		KafkaTopicPrefix: os.Getenv("KAFKA_TOPIC_PREFIX"),

		OTELEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTELServiceName: getEnv("OTEL_SERVICE_NAME", "userpost-service"),
		OTELSampleRatio: ratioDef(os.Getenv("OTEL_TRACES_SAMPLER_ARG"), 1.0),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// DSN is the Postgres key/value connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName,
	)
}

// SQLiteDSN enables foreign keys, which sqlite leaves off per connection.
func (c *Config) SQLiteDSN() string {
	sep := "?"
	if strings.Contains(c.DBPath, "?") {
		sep = "&"
	}
	return c.DBPath + sep + "_foreign_keys=on"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func atoiDef(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func durationDef(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func ratioDef(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 1 {
		return def
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
