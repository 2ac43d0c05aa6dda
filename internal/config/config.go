package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/kaiteddy/garage-comms/pkg/logger"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every env-backed setting. Only this struct must be used to
// hold configuration values, no direct access to env or any other config
// source should be made.
type Config struct {
	AppEnv              string `env:"APP_ENV" default:"dev"`
	AppName             string `env:"APP_NAME" default:"garage_comms"`
	AppDebug            bool   `env:"APP_DEBUG" default:"1"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI"`

	HttpListenAddr         string `env:"HTTP_LISTEN_ADDR" validation:"mustExists"`
	HttpServerReadTimeout  int    `env:"HTTP_SERVER_READ_TIMEOUT"`
	HttpServerWriteTimeout int    `env:"HTTP_SERVER_WRITE_TIMEOUT"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE"`

	LogLevel []string `env:"LOG_LEVEL"`

	// WhatsApp sending integration; empty URL means not configured.
	WhatsAppAPIURL  string        `env:"WHATSAPP_API_URL"`
	WhatsAppAPIKey  string        `env:"WHATSAPP_API_KEY"`
	WhatsAppTimeout time.Duration `env:"WHATSAPP_TIMEOUT" default:"10s"`

	// SMS sending integration; empty URL means not configured.
	SMSAPIURL  string        `env:"SMS_API_URL"`
	SMSAPIKey  string        `env:"SMS_API_KEY"`
	SMSSender  string        `env:"SMS_SENDER" default:"GarageComms"`
	SMSTimeout time.Duration `env:"SMS_TIMEOUT" default:"10s"`

	// Email sending integration; empty host means not configured.
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" default:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	EmailFrom    string `env:"EMAIL_FROM"`

	// Business identity used in rendered messages.
	BusinessName  string `env:"BUSINESS_NAME" default:"ELI MOTORS"`
	BusinessPhone string `env:"BUSINESS_PHONE"`
	BusinessEmail string `env:"BUSINESS_EMAIL"`

	// Cooldown window suppressing duplicate reminders of the same category.
	DispatchCooldown time.Duration `env:"DISPATCH_COOLDOWN" default:"24h"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
