package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/bargir/dispatch-gateway/pkg/logger"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every env-driven setting of the dispatch gateway. Only this
// struct must be used to read configuration, no direct access to env or any
// other config source should be made elsewhere.
type Config struct {
	AppEnv              string `env:"APP_ENV" default:"dev"`
	AppName             string `env:"APP_NAME" default:"dispatch_gateway"`
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

	AuthJWTSecret  string        `env:"AUTH_JWT_SECRET" validation:"mustExists"`
	AuthIssuer     string        `env:"AUTH_ISSUER" default:"dispatch-gateway"`
	AuthTokenTTL   time.Duration `env:"AUTH_TOKEN_TTL" default:"12h"`
	AuthSessionTTL time.Duration `env:"AUTH_SESSION_TTL" default:"24h"`

	// StrictTransitions turns on shipment state-machine validation. The
	// default mirrors the permissive behavior of the system this gateway
	// replaces.
	StrictTransitions bool `env:"STRICT_TRANSITIONS" default:"0"`

	EventStreamName     string `env:"EVENT_STREAM_NAME" default:"shipment:events"`
	EventConsumerGroup  string `env:"EVENT_CONSUMER_GROUP" default:"tracker"`
	EventConsumerName   string `env:"EVENT_CONSUMER_NAME" default:"tracker-1"`
	EventStreamMaxLen   int64  `env:"EVENT_STREAM_MAX_LEN" default:"100000"`
	EventBatchSize      int64  `env:"EVENT_BATCH_SIZE" default:"64"`
	EventPollIntervalMs int    `env:"EVENT_POLL_INTERVAL_MS" default:"250"`
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
