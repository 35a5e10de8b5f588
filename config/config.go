package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	Domains      []string
	CertCacheDir string
	HTTPPort     string
	HTTPSPort    string
	LogDir       string
	SessionTTL   time.Duration

	SnowflakeAccount   string
	SnowflakeUser      string
	SnowflakePassword  string
	SnowflakeDatabase  string
	SnowflakeSchema    string
	SnowflakeWarehouse string
	SnowflakeRole      string
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		Domains:      []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir: getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
		HTTPPort:     getEnv("HTTP_PORT", "8086"),
		HTTPSPort:    getEnv("HTTPS_PORT", "443"),
		LogDir:       getEnv("LOG_DIR", "logs"),
		SessionTTL:   time.Duration(getEnvAsInt("SESSION_TTL_SECONDS", 3600)) * time.Second,

		SnowflakeAccount:   getEnv("SNOWFLAKE_ACCOUNT", ""),
		SnowflakeUser:      getEnv("SNOWFLAKE_USER", ""),
		SnowflakePassword:  getEnv("SNOWFLAKE_PASSWORD", ""),
		SnowflakeDatabase:  getEnv("SNOWFLAKE_DATABASE", "FROSTLOGIC"),
		SnowflakeSchema:    getEnv("SNOWFLAKE_SCHEMA", "PUBLIC"),
		SnowflakeWarehouse: getEnv("SNOWFLAKE_WAREHOUSE", "COMPUTE_WH"),
		SnowflakeRole:      getEnv("SNOWFLAKE_ROLE", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
