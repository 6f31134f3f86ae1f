package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds the process configuration, loaded once at startup from the
// environment (optionally seeded from a .env file).
type Config struct {
	Port     string
	MongoURI string
	MongoDB  string

	JWTSecret string
	JWTExpiry time.Duration

	// TaxRate is the fraction applied to the taxable subtotal, e.g. 0.07.
	TaxRate float64

	MQTTBrokerURL  string
	MQTTAlertTopic string

	VINDecoderURL string
	DocumentDir   string
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win over file values.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment variables")
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "fleet_maintenance"),

		JWTSecret: getEnv("JWT_SECRET", "default-secret-key-change-in-production"),
		JWTExpiry: getDuration("JWT_EXPIRY", 24*time.Hour),

		TaxRate: getFloat("TAX_RATE", 0.07),

		MQTTBrokerURL:  getEnv("MQTT_BROKER_URL", ""),
		MQTTAlertTopic: getEnv("MQTT_ALERT_TOPIC", "fleet/alerts"),

		VINDecoderURL: getEnv("VIN_DECODER_URL", "https://vpic.nhtsa.dot.gov/api/vehicles"),
		DocumentDir:   getEnv("DOCUMENT_DIR", "./documents"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.WithField("key", key).WithError(err).Warn("invalid duration, using default")
		return fallback
	}
	return d
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.WithField("key", key).WithError(err).Warn("invalid number, using default")
		return fallback
	}
	return f
}
