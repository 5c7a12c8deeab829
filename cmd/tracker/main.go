package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bargir/dispatch-gateway/internal/config"
	"github.com/bargir/dispatch-gateway/internal/events"
	"github.com/bargir/dispatch-gateway/internal/tracker"
	"github.com/bargir/dispatch-gateway/pkg/logger"
	"github.com/bargir/dispatch-gateway/pkg/prom"
	"github.com/bargir/dispatch-gateway/pkg/redis"
)

const workerCount = 20

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	if addr := config.Get().AppDebugMetricsAddr; addr != "" {
		host, _ := os.Hostname()
		if err := prom.Create(host, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Warn("failed to register metrics", "error", err)
		}
		prom.ListenAndServer(addr, config.Get().AppDebugMetricsURI)
	}

	t, err := tracker.New(redisAdap, events.StreamConfig{
		Name:          config.Get().EventStreamName,
		ConsumerGroup: config.Get().EventConsumerGroup,
		ConsumerName:  config.Get().EventConsumerName,
		MaxLen:        config.Get().EventStreamMaxLen,
		BatchSize:     config.Get().EventBatchSize,
		PollInterval:  time.Duration(config.Get().EventPollIntervalMs) * time.Millisecond,
	}, workerCount)
	if err != nil {
		logger.Error("failed creating tracker", "error", err)
		return
	}

	if err := t.Start(); err != nil {
		logger.Error("failed starting tracker", "error", err)
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	t.Stop()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
