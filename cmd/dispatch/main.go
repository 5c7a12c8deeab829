// The legacy minimal surface: auth plus the shipment command set. It wires
// the same services as the panel so the two route sets cannot drift.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bargir/dispatch-gateway/internal/auth"
	"github.com/bargir/dispatch-gateway/internal/config"
	"github.com/bargir/dispatch-gateway/internal/events"
	"github.com/bargir/dispatch-gateway/internal/handlers"
	"github.com/bargir/dispatch-gateway/internal/model"
	"github.com/bargir/dispatch-gateway/internal/repository"
	"github.com/bargir/dispatch-gateway/internal/services"
	xhttp "github.com/bargir/dispatch-gateway/pkg/http"
	"github.com/bargir/dispatch-gateway/pkg/logger"
	"github.com/bargir/dispatch-gateway/pkg/pg"
	"github.com/bargir/dispatch-gateway/pkg/redis"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.CORSMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, config.Get().AppEnv == "dev")
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
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

	stream, err := events.NewStream(redisAdap, events.StreamConfig{
		Name:   config.Get().EventStreamName,
		MaxLen: config.Get().EventStreamMaxLen,
	})
	if err != nil {
		logger.Error("failed creating event stream", "error", err)
		return
	}

	userRepo := repository.NewUserRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)

	tokens, err := auth.NewTokenManager(config.Get().AuthJWTSecret, config.Get().AuthIssuer, config.Get().AuthTokenTTL)
	if err != nil {
		logger.Error("failed creating token manager", "error", err)
		return
	}
	sessions := auth.NewSessionStore(redisAdap, config.Get().AuthSessionTTL)
	provider := auth.NewProvider(tokens, sessions, userRepo)

	authService := services.NewAuthService(userRepo, provider)
	shipmentService := services.NewShipmentService(shipmentRepo, driverRepo, stream, config.Get().StrictTransitions)
	healthService := services.NewHealthService()

	authHandler := handlers.NewAuthHandler(authService, model.RoleDispatcher)
	shipmentHandler := handlers.NewShipmentHandler(shipmentService)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/dispatch")
	handlers.RegisterDispatchRoutes(g, authHandler, shipmentHandler)
	handlers.RegisterHealthRoutes(s.Router.Group("/api/v1"), healthHandler)

	logger.Info("starting dispatch surface", "addr", config.Get().HttpListenAddr)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(config.Get().HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
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
