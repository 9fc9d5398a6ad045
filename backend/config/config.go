package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strings"

	"github.com/apex/log"
)

type Config struct {
	// Server
	Port           string
	TrustedProxies []string

	// Security
	JWTSecret string

	// Storage
	StoreBackend string // "memory" or "mysql"
	DBUser       string
	DBPassword   string
	DBHost       string
	DBPort       string
	DBName       string

	// Uploads
	UploadDir string

	// Messaging; publishing is off when AMQPURL is empty.
	AMQPURL      string
	AMQPExchange string
	AMQPRouting  string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		StoreBackend: getEnv("STORE_BACKEND", "memory"),
		DBUser:       getEnv("DB_USER", "server"),
		DBPassword:   getEnv("DB_PASSWORD", "secret"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "3306"),
		DBName:       getEnv("DB_NAME", "citywatch"),
		UploadDir:    getEnv("UPLOAD_DIR", "public/uploads"),
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "citywatch"),
		AMQPRouting:  getEnv("AMQP_ROUTING_KEY", "problems.new"),
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		// Sessions won't survive a restart with a generated secret.
		key := make([]byte, 32)
		rand.Read(key)
		jwtSecret = hex.EncodeToString(key)
		log.Warn("Generated temporary JWT secret. Set JWT_SECRET for production.")
	}
	cfg.JWTSecret = jwtSecret

	trustedProxies := os.Getenv("TRUSTED_PROXIES")
	if trustedProxies != "" {
		cfg.TrustedProxies = strings.Split(trustedProxies, ",")
		for i, proxy := range cfg.TrustedProxies {
			cfg.TrustedProxies[i] = strings.TrimSpace(proxy)
		}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
